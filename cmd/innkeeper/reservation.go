package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"innkeeper/pkg/domain"
)

func newReservationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "reservation", Short: "Manage reservations"}
	cmd.AddCommand(
		newReservationCreateCommand(a),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print one reservation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, ok, err := a.regs.Reservations.FindReservation(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return domain.NewRecordError(domain.EntityReservation, args[0], domain.ErrNotFound)
				}
				return a.print(map[string]domain.Reservation{res.ID: res})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every reservation",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := a.regs.Reservations.ListReservations(cmd.Context())
				if err != nil {
					return err
				}
				out := make(map[string]domain.Reservation, len(list))
				for _, r := range list {
					out[r.ID] = r
				}
				return a.print(out)
			},
		},
		&cobra.Command{
			Use:   "cancel <id>",
			Short: "Cancel a reservation and return its room",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.regs.Reservations.CancelReservation(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newReservationCreateCommand(a *app) *cobra.Command {
	var res domain.Reservation
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Reserve a room at a hotel for a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if res.ID == "" {
				res.ID = uuid.NewString()
			}
			created, err := a.regs.Reservations.CreateReservation(cmd.Context(), res)
			if err != nil {
				return err
			}
			return a.print(map[string]domain.Reservation{created.ID: created})
		},
	}
	cmd.Flags().StringVar(&res.ID, "id", "", "reservation id (random UUID when omitted)")
	cmd.Flags().StringVar(&res.CustomerID, "customer", "", "customer id (required)")
	cmd.Flags().StringVar(&res.HotelID, "hotel", "", "hotel id (required)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("hotel")
	return cmd
}
