package main

import (
	"github.com/spf13/cobra"

	"innkeeper/pkg/domain"
)

func newHotelCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "hotel", Short: "Manage hotels"}
	cmd.AddCommand(
		newHotelCreateCommand(a),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print one hotel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hotel, ok, err := a.regs.Hotels.FindHotel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return domain.NewRecordError(domain.EntityHotel, args[0], domain.ErrNotFound)
				}
				return a.print(map[string]domain.Hotel{hotel.ID: hotel})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every hotel",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				hotels, err := a.regs.Hotels.ListHotels(cmd.Context())
				if err != nil {
					return err
				}
				out := make(map[string]domain.Hotel, len(hotels))
				for _, h := range hotels {
					out[h.ID] = h
				}
				return a.print(out)
			},
		},
		newHotelModifyCommand(a),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a hotel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.regs.Hotels.DeleteHotel(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "reserve-room <id>",
			Short: "Take one room out of inventory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.regs.Hotels.ReserveRoom(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "release-room <id>",
			Short: "Return one room to inventory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.regs.Hotels.ReleaseRoom(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newHotelCreateCommand(a *app) *cobra.Command {
	var hotel domain.Hotel
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a hotel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.regs.Hotels.CreateHotel(cmd.Context(), hotel)
			if err != nil {
				return err
			}
			return a.print(map[string]domain.Hotel{created.ID: created})
		},
	}
	cmd.Flags().StringVar(&hotel.ID, "id", "", "hotel id (required)")
	cmd.Flags().StringVar(&hotel.Name, "name", "", "hotel name")
	cmd.Flags().StringVar(&hotel.Location, "location", "", "hotel location")
	cmd.Flags().IntVar(&hotel.Rooms, "rooms", 0, "available rooms")
	cmd.Flags().IntVar(&hotel.Capacity, "capacity", 0, "maximum rooms (defaults to --rooms)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newHotelModifyCommand(a *app) *cobra.Command {
	var (
		name, location string
		rooms          int
	)
	cmd := &cobra.Command{
		Use:   "modify <id>",
		Short: "Change hotel fields; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.HotelPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("rooms") {
				patch.Rooms = &rooms
			}
			updated, err := a.regs.Hotels.ModifyHotel(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.print(map[string]domain.Hotel{updated.ID: updated})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().IntVar(&rooms, "rooms", 0, "new room count")
	return cmd
}
