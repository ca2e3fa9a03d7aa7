package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"innkeeper/pkg/domain"
)

type snapshot struct {
	Hotels       map[string]domain.Hotel       `json:"hotels"`
	Customers    map[string]domain.Customer    `json:"customers"`
	Reservations map[string]domain.Reservation `json:"reservations"`
}

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print all three documents as one JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out snapshot
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				hotels, err := a.regs.Hotels.ListHotels(ctx)
				if err != nil {
					return err
				}
				out.Hotels = make(map[string]domain.Hotel, len(hotels))
				for _, h := range hotels {
					out.Hotels[h.ID] = h
				}
				return nil
			})
			g.Go(func() error {
				customers, err := a.regs.Customers.ListCustomers(ctx)
				if err != nil {
					return err
				}
				out.Customers = make(map[string]domain.Customer, len(customers))
				for _, c := range customers {
					out.Customers[c.ID] = c
				}
				return nil
			})
			g.Go(func() error {
				reservations, err := a.regs.Reservations.ListReservations(ctx)
				if err != nil {
					return err
				}
				out.Reservations = make(map[string]domain.Reservation, len(reservations))
				for _, r := range reservations {
					out.Reservations[r.ID] = r
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}
			return a.print(out)
		},
	}
}
