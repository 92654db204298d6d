package users

import (
	"context"
	"testing"

	"github.com/askdocs/askdocs/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestGetLocationUnknownUser(t *testing.T) {
	store := newTestStore(t)

	loc, err := store.GetLocation(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if loc.Country != "" || loc.State != "" {
		t.Errorf("expected empty location, got %+v", loc)
	}
}

func TestSetLocationCreatesProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetLocation(ctx, "user-1", Location{Country: "Germany", State: "Bavaria"}); err != nil {
		t.Fatalf("SetLocation: %v", err)
	}

	loc, err := store.GetLocation(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if loc.Country != "Germany" || loc.State != "Bavaria" {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestSetLocationOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.SetLocation(ctx, "user-1", Location{Country: "Germany", State: "Bavaria"})
	if err := store.SetLocation(ctx, "user-1", Location{Country: "France"}); err != nil {
		t.Fatalf("SetLocation: %v", err)
	}

	loc, _ := store.GetLocation(ctx, "user-1")
	if loc.Country != "France" {
		t.Errorf("expected France, got %q", loc.Country)
	}
	if loc.State != "" {
		t.Errorf("expected state cleared, got %q", loc.State)
	}
}
