package core

import (
	"context"
	"sort"

	"innkeeper/internal/document"
	"innkeeper/pkg/domain"
)

// HotelRegistry manages the hotels document.
type HotelRegistry struct {
	store *document.Store[domain.Hotel]
	instrumentation
}

// NewHotelRegistry binds a registry to the hotels document on backend.
func NewHotelRegistry(backend document.Backend, opts ...Option) *HotelRegistry {
	cfg := buildOptions(HotelsDocument, opts)
	return &HotelRegistry{
		store:           document.New[domain.Hotel](cfg.documentName, backend, cfg.documentOpts...),
		instrumentation: newInstrumentation(cfg),
	}
}

// Store exposes the underlying document store.
func (r *HotelRegistry) Store() *document.Store[domain.Hotel] { return r.store }

// CreateHotel inserts a new hotel. The capacity defaults to the initial room
// count.
func (r *HotelRegistry) CreateHotel(ctx context.Context, hotel domain.Hotel) (domain.Hotel, error) {
	if err := requireID(domain.EntityHotel, hotel.ID); err != nil {
		return domain.Hotel{}, err
	}
	if hotel.Capacity == 0 {
		hotel.Capacity = hotel.Rooms
	}
	err := r.run(ctx, "create_hotel", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Hotel]) error {
			if _, exists := records[hotel.ID]; exists {
				return domain.NewRecordError(domain.EntityHotel, hotel.ID, domain.ErrAlreadyExists)
			}
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityHotel, Action: domain.ActionCreate, After: hotel}); err != nil {
				return err
			}
			records[hotel.ID] = hotel
			return nil
		})
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return hotel, nil
}

// DeleteHotel removes a hotel. Reservations referring to it are left alone.
func (r *HotelRegistry) DeleteHotel(ctx context.Context, id string) error {
	return r.run(ctx, "delete_hotel", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Hotel]) error {
			current, ok := records[id]
			if !ok {
				return domain.NewRecordError(domain.EntityHotel, id, domain.ErrNotFound)
			}
			current.ID = id
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityHotel, Action: domain.ActionDelete, Before: current}); err != nil {
				return err
			}
			delete(records, id)
			return nil
		})
	})
}

// FindHotel returns the hotel stored under id and whether it exists.
func (r *HotelRegistry) FindHotel(ctx context.Context, id string) (domain.Hotel, bool, error) {
	var (
		hotel domain.Hotel
		found bool
	)
	err := r.run(ctx, "find_hotel", func(ctx context.Context) error {
		var err error
		hotel, found, err = r.store.Get(ctx, id)
		return err
	})
	if err != nil || !found {
		return domain.Hotel{}, false, err
	}
	hotel.ID = id
	return hotel, true, nil
}

// ListHotels returns every hotel ordered by id.
func (r *HotelRegistry) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var records document.Records[domain.Hotel]
	err := r.run(ctx, "list_hotels", func(ctx context.Context) error {
		var err error
		records, err = r.store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(records))
	for id, hotel := range records {
		hotel.ID = id
		out = append(out, hotel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ModifyHotel applies patch to an existing hotel.
func (r *HotelRegistry) ModifyHotel(ctx context.Context, id string, patch domain.HotelPatch) (domain.Hotel, error) {
	var updated domain.Hotel
	err := r.run(ctx, "modify_hotel", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Hotel]) error {
			before, ok := records[id]
			if !ok {
				return domain.NewRecordError(domain.EntityHotel, id, domain.ErrNotFound)
			}
			before.ID = id
			after := before
			patch.Apply(&after)
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityHotel, Action: domain.ActionUpdate, Before: before, After: after}); err != nil {
				return err
			}
			records[id] = after
			updated = after
			return nil
		})
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return updated, nil
}

// ReserveRoom takes one room out of the hotel's inventory.
func (r *HotelRegistry) ReserveRoom(ctx context.Context, id string) error {
	return r.run(ctx, "reserve_room", func(ctx context.Context) error {
		return document.Run(ctx, func(tx *document.Tx) error {
			return r.reserveRoomTx(tx, id)
		}, r.store)
	})
}

// ReleaseRoom returns one room to the hotel's inventory.
func (r *HotelRegistry) ReleaseRoom(ctx context.Context, id string) error {
	return r.run(ctx, "release_room", func(ctx context.Context) error {
		return document.Run(ctx, func(tx *document.Tx) error {
			return r.releaseRoomTx(tx, id)
		}, r.store)
	})
}

func (r *HotelRegistry) reserveRoomTx(tx *document.Tx, id string) error {
	return document.Stage(tx, r.store, func(records document.Records[domain.Hotel]) error {
		return r.adjustRooms(tx.Context(), records, id, -1)
	})
}

func (r *HotelRegistry) releaseRoomTx(tx *document.Tx, id string) error {
	return document.Stage(tx, r.store, func(records document.Records[domain.Hotel]) error {
		return r.adjustRooms(tx.Context(), records, id, +1)
	})
}

func (r *HotelRegistry) adjustRooms(ctx context.Context, records document.Records[domain.Hotel], id string, delta int) error {
	before, ok := records[id]
	if !ok {
		return domain.NewRecordError(domain.EntityHotel, id, domain.ErrNotFound)
	}
	before.ID = id
	if delta < 0 && before.Rooms <= 0 {
		return domain.NewRecordError(domain.EntityHotel, id, domain.ErrNoRoomsAvailable)
	}
	if delta > 0 && before.HasCapacityBound() && before.Rooms >= before.Capacity {
		return domain.NewRecordError(domain.EntityHotel, id, domain.ErrRoomsAtCapacity)
	}
	after := before
	after.Rooms += delta
	if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityHotel, Action: domain.ActionUpdate, Before: before, After: after}); err != nil {
		return err
	}
	records[id] = after
	return nil
}
