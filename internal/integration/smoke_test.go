package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"innkeeper/internal/core"
	"innkeeper/internal/document"
	"innkeeper/internal/infra/persistence/fs"
	"innkeeper/internal/infra/persistence/memory"
	"innkeeper/internal/infra/persistence/s3"
	"innkeeper/internal/infra/persistence/sqlite"
	"innkeeper/internal/platform/config"
	"innkeeper/pkg/domain"
)

// TestIntegrationSmoke runs the booking flow against every in-process backend.
// Postgres and Redis are covered by the integration build tag.
func TestIntegrationSmoke(t *testing.T) {
	variants := []struct {
		name string
		open func(t *testing.T) document.Backend
	}{
		{
			name: "memory",
			open: func(_ *testing.T) document.Backend { return memory.New() },
		},
		{
			name: "filesystem",
			open: func(t *testing.T) document.Backend {
				store, err := fs.New(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem backend: %v", err)
				}
				return store
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) document.Backend {
				store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "innkeeper.db"))
				if err != nil {
					t.Fatalf("new sqlite backend: %v", err)
				}
				t.Cleanup(func() { _ = store.Close() })
				return store
			},
		},
		{
			name: "mock-s3",
			open: func(_ *testing.T) document.Backend { return s3.NewMockForTests("smoke") },
		},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			ctx := context.Background()
			regs := core.NewRegistries(v.open(t), config.Config{ValidateCustomers: true})

			if _, err := regs.Hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Name: "FiestaInn", Location: "Mexico", Rooms: 1}); err != nil {
				t.Fatalf("create hotel: %v", err)
			}
			if _, err := regs.Customers.CreateCustomer(ctx, domain.Customer{ID: "CT_1", Name: "Carlos", Email: "carlos@gmail.com"}); err != nil {
				t.Fatalf("create customer: %v", err)
			}
			if _, err := regs.Reservations.CreateReservation(ctx, domain.Reservation{ID: "Res_1", CustomerID: "CT_1", HotelID: "HO_1"}); err != nil {
				t.Fatalf("create reservation: %v", err)
			}
			_, err := regs.Reservations.CreateReservation(ctx, domain.Reservation{ID: "Res_2", CustomerID: "CT_1", HotelID: "HO_1"})
			if !errors.Is(err, domain.ErrNoRoomsAvailable) {
				t.Fatalf("expected no rooms available, got %v", err)
			}
			if _, found, err := regs.Reservations.FindReservation(ctx, "Res_2"); err != nil || found {
				t.Fatalf("rejected reservation must not be stored: found=%v err=%v", found, err)
			}

			if err := regs.Reservations.CancelReservation(ctx, "Res_1"); err != nil {
				t.Fatalf("cancel reservation: %v", err)
			}
			hotel, found, err := regs.Hotels.FindHotel(ctx, "HO_1")
			if err != nil || !found {
				t.Fatalf("find hotel: found=%v err=%v", found, err)
			}
			if hotel.Rooms != 1 {
				t.Fatalf("expected room released, got %d", hotel.Rooms)
			}
			reservations, err := regs.Reservations.ListReservations(ctx)
			if err != nil {
				t.Fatalf("list reservations: %v", err)
			}
			if len(reservations) != 0 {
				t.Fatalf("expected empty ledger, got %+v", reservations)
			}
		})
	}
}
