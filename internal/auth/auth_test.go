package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/hwetherall/innovera-ama/internal/auth"
	"github.com/hwetherall/innovera-ama/internal/testsupport"
)

func TestNewTokenIsUnique(t *testing.T) {
	a, err := auth.NewToken()
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	b, err := auth.NewToken()
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
	if len(a) != 64 {
		t.Fatalf("unexpected token length %d", len(a))
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := auth.NewMemoryStore(time.Hour)
	ctx := context.Background()

	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ok, err := store.Has(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("expected token present, got ok=%v err=%v", ok, err)
	}
	if err := store.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	ok, err = store.Has(ctx, "token")
	if err != nil || ok {
		t.Fatalf("expected token removed, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreEvictsExpired(t *testing.T) {
	store := auth.NewMemoryStore(-time.Minute)
	ctx := context.Background()

	if err := store.Add(ctx, "stale"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ok, err := store.Has(ctx, "stale")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if ok {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestDBStoreLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	store := auth.NewDBStore(st, time.Hour)
	ctx := context.Background()

	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ok, err := store.Has(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("expected token present, got ok=%v err=%v", ok, err)
	}
	if err := store.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	ok, err = store.Has(ctx, "token")
	if err != nil || ok {
		t.Fatalf("expected token removed, got ok=%v err=%v", ok, err)
	}
}
