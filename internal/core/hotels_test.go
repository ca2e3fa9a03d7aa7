package core_test

import (
	"context"
	"errors"
	"testing"

	"innkeeper/internal/core"
	"innkeeper/internal/infra/persistence/memory"
	"innkeeper/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func newHotels(t *testing.T, opts ...core.Option) *core.HotelRegistry {
	t.Helper()
	return core.NewHotelRegistry(memory.New(), opts...)
}

func TestHotelCreateFindDelete(t *testing.T) {
	ctx := context.Background()
	hotels := newHotels(t)

	created, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Name: "Homestay", Location: "QRO", Rooms: 10})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	if created.Capacity != 10 {
		t.Fatalf("expected capacity to default to rooms, got %d", created.Capacity)
	}
	got, ok, err := hotels.FindHotel(ctx, "HO_1")
	if err != nil || !ok {
		t.Fatalf("find hotel: ok=%v err=%v", ok, err)
	}
	if got != created {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
	if _, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Name: "Other"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := hotels.DeleteHotel(ctx, "HO_1"); err != nil {
		t.Fatalf("delete hotel: %v", err)
	}
	if _, ok, err := hotels.FindHotel(ctx, "HO_1"); ok || err != nil {
		t.Fatalf("expected not found after delete, ok=%v err=%v", ok, err)
	}
	err = hotels.DeleteHotel(ctx, "HO_1")
	var recErr *domain.RecordError
	if !errors.As(err, &recErr) || recErr.Entity != domain.EntityHotel || recErr.ID != "HO_1" || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected hotel not found record error, got %v", err)
	}
}

func TestHotelCreateRejectsEmptyID(t *testing.T) {
	if _, err := newHotels(t).CreateHotel(context.Background(), domain.Hotel{Name: "Nameless"}); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestHotelCreateRejectsNegativeRooms(t *testing.T) {
	_, err := newHotels(t).CreateHotel(context.Background(), domain.Hotel{ID: "HO_9", Rooms: -1})
	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if ruleErr.Result.Blocking()[0].Rule != "room_inventory" {
		t.Fatalf("unexpected violations %+v", ruleErr.Result.Violations)
	}
}

func TestHotelModifyPreservesUnsetFields(t *testing.T) {
	ctx := context.Background()
	hotels := newHotels(t)
	if _, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Name: "Homestay", Location: "QRO", Rooms: 10}); err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	updated, err := hotels.ModifyHotel(ctx, "HO_1", domain.HotelPatch{Name: ptr("FiestaInn")})
	if err != nil {
		t.Fatalf("modify hotel: %v", err)
	}
	want := domain.Hotel{ID: "HO_1", Name: "FiestaInn", Location: "QRO", Rooms: 10, Capacity: 10}
	if updated != want {
		t.Fatalf("expected %+v, got %+v", want, updated)
	}
	if _, err := hotels.ModifyHotel(ctx, "HO_404", domain.HotelPatch{Name: ptr("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := hotels.ModifyHotel(ctx, "HO_1", domain.HotelPatch{Rooms: ptr(-2)}); err == nil {
		t.Fatalf("expected negative rooms to be rejected")
	}
	got, _, _ := hotels.FindHotel(ctx, "HO_1")
	if got.Rooms != 10 {
		t.Fatalf("rejected modify must not persist, got %+v", got)
	}
}

func TestHotelReserveAndReleaseRooms(t *testing.T) {
	ctx := context.Background()
	hotels := newHotels(t)
	if _, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Name: "Homestay", Rooms: 1}); err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	if err := hotels.ReleaseRoom(ctx, "HO_1"); !errors.Is(err, domain.ErrRoomsAtCapacity) {
		t.Fatalf("expected ErrRoomsAtCapacity, got %v", err)
	}
	if err := hotels.ReserveRoom(ctx, "HO_1"); err != nil {
		t.Fatalf("reserve room: %v", err)
	}
	if err := hotels.ReserveRoom(ctx, "HO_1"); !errors.Is(err, domain.ErrNoRoomsAvailable) {
		t.Fatalf("expected ErrNoRoomsAvailable, got %v", err)
	}
	if got, _, _ := hotels.FindHotel(ctx, "HO_1"); got.Rooms != 0 {
		t.Fatalf("expected 0 rooms, got %d", got.Rooms)
	}
	if err := hotels.ReleaseRoom(ctx, "HO_1"); err != nil {
		t.Fatalf("release room: %v", err)
	}
	if got, _, _ := hotels.FindHotel(ctx, "HO_1"); got.Rooms != 1 {
		t.Fatalf("expected 1 room, got %d", got.Rooms)
	}
	if err := hotels.ReserveRoom(ctx, "HO_404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := hotels.ReleaseRoom(ctx, "HO_404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLegacyHotelReleaseIsUnbounded(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	if err := backend.Write(ctx, core.HotelsDocument, []byte(`{"HO_7": {"name": "Continental", "location": "CDMX", "rooms": 1}}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	hotels := core.NewHotelRegistry(backend)
	for i := 0; i < 3; i++ {
		if err := hotels.ReleaseRoom(ctx, "HO_7"); err != nil {
			t.Fatalf("release %d: %v", i, err)
		}
	}
	got, _, _ := hotels.FindHotel(ctx, "HO_7")
	if got.Rooms != 4 || got.HasCapacityBound() {
		t.Fatalf("expected unbounded hotel with 4 rooms, got %+v", got)
	}
}

func TestRestockedZeroRoomHotelIsBounded(t *testing.T) {
	ctx := context.Background()
	hotels := newHotels(t)
	created, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_0", Name: "Posada", Rooms: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.HasCapacityBound() {
		t.Fatalf("zero-room hotel starts unbounded, got %+v", created)
	}
	rooms := 5
	modified, err := hotels.ModifyHotel(ctx, "HO_0", domain.HotelPatch{Rooms: &rooms})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if modified.Capacity != 5 {
		t.Fatalf("expected capacity 5 after restock, got %+v", modified)
	}
	if err := hotels.ReleaseRoom(ctx, "HO_0"); !errors.Is(err, domain.ErrRoomsAtCapacity) {
		t.Fatalf("expected ErrRoomsAtCapacity, got %v", err)
	}
	got, _, err := hotels.FindHotel(ctx, "HO_0")
	if err != nil || got.Rooms != 5 || got.Capacity != 5 {
		t.Fatalf("expected 5/5 rooms, got %+v (%v)", got, err)
	}
}

func TestListHotelsSortedByID(t *testing.T) {
	ctx := context.Background()
	hotels := newHotels(t)
	for _, id := range []string{"HO_3", "HO_1", "HO_2"} {
		if _, err := hotels.CreateHotel(ctx, domain.Hotel{ID: id, Rooms: 1}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	list, err := hotels.ListHotels(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "HO_1" || list[1].ID != "HO_2" || list[2].ID != "HO_3" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestHotelDocumentNameOverride(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	hotels := core.NewHotelRegistry(backend, core.WithDocumentName("test/hotels.json"))
	if _, err := hotels.CreateHotel(ctx, domain.Hotel{ID: "HO_1", Rooms: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if names := backend.Names(); len(names) != 1 || names[0] != "test/hotels.json" {
		t.Fatalf("unexpected documents %v", names)
	}
	if hotels.Store().Name() != "test/hotels.json" {
		t.Fatalf("unexpected store name %s", hotels.Store().Name())
	}
}
