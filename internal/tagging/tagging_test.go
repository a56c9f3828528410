package tagging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/tagging"
	"github.com/hwetherall/innovera-ama/internal/testsupport"
)

func TestReconcileMixedReferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	reconciler := tagging.NewReconciler(st, nil)

	ctx := context.Background()
	existing, err := st.CreateTag(ctx, "Feedback")
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	result, err := reconciler.Reconcile(ctx, []string{existing.ID, "pending-demo day"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(result.TagIDs) != 2 {
		t.Fatalf("expected 2 tag IDs, got %v", result.TagIDs)
	}
	if result.TagIDs[0] != existing.ID {
		t.Fatalf("expected existing tag first, got %v", result.TagIDs)
	}
	if len(result.Created) != 1 || result.Created[0].Name != "Demo Day" {
		t.Fatalf("expected one created tag named 'Demo Day', got %#v", result.Created)
	}
}

func TestReconcileReusesExistingName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	reconciler := tagging.NewReconciler(st, nil)

	ctx := context.Background()
	existing, err := st.CreateTag(ctx, "Pricing")
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	result, err := reconciler.Reconcile(ctx, []string{"pending-  pricing "})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(result.TagIDs) != 1 || result.TagIDs[0] != existing.ID {
		t.Fatalf("expected reuse of existing tag, got %v", result.TagIDs)
	}
	if len(result.Created) != 0 {
		t.Fatalf("expected no new tags, got %#v", result.Created)
	}
}

func TestReconcileRejectsUnknownID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	reconciler := tagging.NewReconciler(st, nil)

	_, err := reconciler.Reconcile(context.Background(), []string{"no-such-tag"})
	if err == nil {
		t.Fatal("expected error for unknown tag id")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReconcileDeduplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	reconciler := tagging.NewReconciler(st, nil)

	result, err := reconciler.Reconcile(context.Background(), []string{"pending-Renewal", "pending-renewal"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(result.TagIDs) != 1 {
		t.Fatalf("expected duplicates collapsed, got %v", result.TagIDs)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  demo   day ": "Demo Day",
		"feedback":      "Feedback",
		"API review":    "API Review",
	}
	for input, want := range cases {
		if got := tagging.NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}
