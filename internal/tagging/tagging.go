// Package tagging reconciles the tag references attached to a customer
// conversation. Callers pass a mix of existing tag IDs and pending entries
// ("pending-" followed by the proposed name); pending entries are created on
// the fly, reusing an existing tag when the normalized name already exists.
package tagging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/store"
)

// PendingPrefix marks a tag reference that names a tag to create rather than
// an existing tag ID.
const PendingPrefix = "pending-"

// NoLower keeps acronyms like "API" intact while still capitalizing each word.
var titleCaser = cases.Title(language.English, cases.NoLower)

// Result reports the reconciled tag set.
type Result struct {
	// TagIDs holds the final IDs in the order the references were given.
	TagIDs []string
	// Created lists tags that were inserted during reconciliation.
	Created []*store.Tag
}

// Reconciler resolves tag references against the tag table.
type Reconciler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReconciler builds a Reconciler backed by the given store.
func NewReconciler(st *store.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{store: st, logger: logger.With(slog.String("component", "tagging"))}
}

// NormalizeName canonicalizes a proposed tag name: trimmed, inner whitespace
// collapsed, title case.
func NormalizeName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return titleCaser.String(collapsed)
}

// Reconcile resolves every reference to a concrete tag ID. Existing IDs are
// verified; pending names are normalized, then looked up before insertion so
// concurrent submissions of the same name converge on one tag.
func (r *Reconciler) Reconcile(ctx context.Context, refs []string) (Result, error) {
	result := Result{TagIDs: make([]string, 0, len(refs))}
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		var tag *store.Tag
		var err error
		if strings.HasPrefix(ref, PendingPrefix) {
			tag, err = r.resolvePending(ctx, strings.TrimPrefix(ref, PendingPrefix), &result)
		} else {
			tag, err = r.store.GetTag(ctx, ref)
			if err == nil && tag == nil {
				err = services.Wrap(services.ErrValidation, "tagging", "reconcile", "unknown tag id "+ref, nil)
			}
		}
		if err != nil {
			return Result{}, err
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		result.TagIDs = append(result.TagIDs, tag.ID)
	}
	return result, nil
}

func (r *Reconciler) resolvePending(ctx context.Context, rawName string, result *Result) (*store.Tag, error) {
	name := NormalizeName(rawName)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "tagging", "reconcile", "empty tag name", nil)
	}

	existing, err := r.store.FindTagByName(ctx, name)
	if err != nil {
		return nil, services.Wrap(nil, "tagging", "reconcile", "lookup tag", err)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := r.store.CreateTag(ctx, name)
	if err != nil {
		// A concurrent request may have inserted the same name; the unique
		// constraint makes the loser re-read instead of failing.
		if winner, lookupErr := r.store.FindTagByName(ctx, name); lookupErr == nil && winner != nil {
			return winner, nil
		}
		return nil, services.Wrap(nil, "tagging", "reconcile", "create tag", err)
	}
	r.logger.Info("created tag", slog.String("name", name), slog.String("id", created.ID))
	result.Created = append(result.Created, created)
	return created, nil
}
