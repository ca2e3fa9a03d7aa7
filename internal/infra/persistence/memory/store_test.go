package memory

import (
	"context"
	"errors"
	"testing"

	"innkeeper/internal/document"
)

func TestStore_MissingRead(t *testing.T) {
	store := New()
	if _, err := store.Read(context.Background(), "missing.json"); !errors.Is(err, document.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestStore_WriteReadDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	payload := []byte(`{"HO_1":{"name":"Homestay"}}`)
	if err := store.Write(ctx, "hotels.json", payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload[0] = 'x'
	got, err := store.Read(ctx, "hotels.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"HO_1":{"name":"Homestay"}}` {
		t.Fatalf("stored bytes aliased caller slice: %s", got)
	}
	got[0] = 'y'
	again, _ := store.Read(ctx, "hotels.json")
	if again[0] != '{' {
		t.Fatalf("read returned aliased slice")
	}
	if names := store.Names(); len(names) != 1 || names[0] != "hotels.json" {
		t.Fatalf("unexpected names %v", names)
	}
	if err := store.Delete(ctx, "hotels.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "hotels.json"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Read(ctx, "hotels.json"); !errors.Is(err, document.ErrNotExist) {
		t.Fatalf("expected ErrNotExist after delete, got %v", err)
	}
	if store.Driver() != document.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
}
