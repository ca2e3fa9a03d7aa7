package core

import (
	"context"
	"errors"
	"sort"

	"innkeeper/internal/document"
	"innkeeper/pkg/domain"
)

// ReservationLedger manages the reservations document and keeps hotel room
// counts in step with it.
type ReservationLedger struct {
	store     *document.Store[domain.Reservation]
	hotels    *HotelRegistry
	customers *CustomerRegistry
	instrumentation
}

// NewReservationLedger binds a ledger to the reservations document on backend.
// When customers is non-nil, reservations must name an existing customer.
func NewReservationLedger(backend document.Backend, hotels *HotelRegistry, customers *CustomerRegistry, opts ...Option) *ReservationLedger {
	cfg := buildOptions(ReservationsDocument, opts)
	return &ReservationLedger{
		store:           document.New[domain.Reservation](cfg.documentName, backend, cfg.documentOpts...),
		hotels:          hotels,
		customers:       customers,
		instrumentation: newInstrumentation(cfg),
	}
}

// Store exposes the underlying document store.
func (l *ReservationLedger) Store() *document.Store[domain.Reservation] { return l.store }

func (l *ReservationLedger) participants() []document.Participant {
	out := []document.Participant{l.store, l.hotels.store}
	if l.customers != nil {
		out = append(out, l.customers.store)
	}
	return out
}

// CreateReservation takes a room at the reservation's hotel and records the
// reservation. Either both documents change or neither does.
func (l *ReservationLedger) CreateReservation(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	if err := requireID(domain.EntityReservation, reservation.ID); err != nil {
		return domain.Reservation{}, err
	}
	err := l.run(ctx, "create_reservation", func(ctx context.Context) error {
		return document.Run(ctx, func(tx *document.Tx) error {
			existing, err := document.Read(tx, l.store)
			if err != nil {
				return err
			}
			if _, ok := existing[reservation.ID]; ok {
				return domain.NewRecordError(domain.EntityReservation, reservation.ID, domain.ErrAlreadyExists)
			}
			if l.customers != nil {
				if err := l.customers.requireCustomerTx(tx, reservation.CustomerID); err != nil {
					return err
				}
			}
			if err := l.hotels.reserveRoomTx(tx, reservation.HotelID); err != nil {
				return err
			}
			return document.Stage(tx, l.store, func(records document.Records[domain.Reservation]) error {
				if err := l.evaluate(tx.Context(), domain.Change{Entity: domain.EntityReservation, Action: domain.ActionCreate, After: reservation}); err != nil {
					return err
				}
				records[reservation.ID] = reservation
				return nil
			})
		}, l.participants()...)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return reservation, nil
}

// FindReservation returns the reservation stored under id and whether it exists.
func (l *ReservationLedger) FindReservation(ctx context.Context, id string) (domain.Reservation, bool, error) {
	var (
		reservation domain.Reservation
		found       bool
	)
	err := l.run(ctx, "find_reservation", func(ctx context.Context) error {
		var err error
		reservation, found, err = l.store.Get(ctx, id)
		return err
	})
	if err != nil || !found {
		return domain.Reservation{}, false, err
	}
	reservation.ID = id
	return reservation, true, nil
}

// CancelReservation returns the room to the hotel and removes the
// reservation. If the hotel is gone the reservation stays. A hotel already at
// capacity keeps its count and the reservation is still removed.
func (l *ReservationLedger) CancelReservation(ctx context.Context, id string) error {
	return l.run(ctx, "cancel_reservation", func(ctx context.Context) error {
		return document.Run(ctx, func(tx *document.Tx) error {
			existing, err := document.Read(tx, l.store)
			if err != nil {
				return err
			}
			reservation, ok := existing[id]
			if !ok {
				return domain.NewRecordError(domain.EntityReservation, id, domain.ErrNotFound)
			}
			reservation.ID = id
			if err := l.hotels.releaseRoomTx(tx, reservation.HotelID); err != nil {
				if !errors.Is(err, domain.ErrRoomsAtCapacity) {
					return err
				}
				// Restocked hotels already count this room.
				l.logger.Warn("reservation cancelled without releasing a room",
					"reservation", id, "hotel", reservation.HotelID, "error", err)
			}
			return document.Stage(tx, l.store, func(records document.Records[domain.Reservation]) error {
				if err := l.evaluate(tx.Context(), domain.Change{Entity: domain.EntityReservation, Action: domain.ActionDelete, Before: reservation}); err != nil {
					return err
				}
				delete(records, id)
				return nil
			})
		}, l.participants()...)
	})
}

// ListReservations returns every reservation ordered by id.
func (l *ReservationLedger) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	var records document.Records[domain.Reservation]
	err := l.run(ctx, "list_reservations", func(ctx context.Context) error {
		var err error
		records, err = l.store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(records))
	for id, reservation := range records {
		reservation.ID = id
		out = append(out, reservation)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
