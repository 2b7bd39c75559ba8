// Package pick owns the pick ledger: an append-mostly log of draft picks,
// one child document per pick, never physically deleted. The ledger is the
// source of truth for what happened; the mutable draft summary only tracks
// whose turn it is now.
package pick

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

// ErrNoActivePicks reports an empty (or fully undone) ledger.
var ErrNoActivePicks = errors.New("no active picks in ledger")

// LedgerKey returns the collection key holding a draft's picks.
func LedgerKey(draftID uuid.UUID) string {
	return "drafts/" + draftID.String() + "/picks"
}

// Repository persists ledger entries as child documents of the draft.
type Repository struct {
	store store.Store
}

// NewRepository creates a pick ledger repository over a document store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Append records a new pick. Callers append only after the draft summary
// update has committed, so the summary stays the serialization point.
func (r *Repository) Append(ctx context.Context, p models.DraftPick) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pick: %w", err)
	}
	if _, err := r.store.Append(ctx, LedgerKey(p.DraftID), data); err != nil {
		return fmt.Errorf("failed to append pick %d: %w", p.Pick, err)
	}
	return nil
}

// List returns all ledger entries ordered by pick number, including undone
// ones when includeUndone is set.
func (r *Repository) List(ctx context.Context, draftID uuid.UUID, includeUndone bool) ([]models.DraftPick, error) {
	docs, err := r.store.List(ctx, LedgerKey(draftID))
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}

	picks := make([]models.DraftPick, 0, len(docs))
	for _, doc := range docs {
		var p models.DraftPick
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pick %s: %w", doc.Key, err)
		}
		if !includeUndone && p.IsUndone {
			continue
		}
		picks = append(picks, p)
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].Pick < picks[j].Pick })
	return picks, nil
}

// LastActive returns the most recent non-undone pick.
func (r *Repository) LastActive(ctx context.Context, draftID uuid.UUID) (models.DraftPick, error) {
	picks, err := r.List(ctx, draftID, false)
	if err != nil {
		return models.DraftPick{}, err
	}
	if len(picks) == 0 {
		return models.DraftPick{}, ErrNoActivePicks
	}
	return picks[len(picks)-1], nil
}

// Update rewrites a ledger entry in place, retrying its own small CAS loop.
// Used to soft-invalidate a pick on undo and to flag roster commits; the
// pick number and identity never change.
func (r *Repository) Update(ctx context.Context, p models.DraftPick) error {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		doc, err := r.findDoc(ctx, p.DraftID, p.ID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal pick: %w", err)
		}
		_, err = r.store.Put(ctx, doc.Key, data, doc.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update pick %d: %w", p.Pick, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update pick %d: %w", p.Pick, store.ErrVersionConflict)
}

func (r *Repository) findDoc(ctx context.Context, draftID, pickID uuid.UUID) (store.Document, error) {
	docs, err := r.store.List(ctx, LedgerKey(draftID))
	if err != nil {
		return store.Document{}, fmt.Errorf("failed to list picks: %w", err)
	}
	for _, doc := range docs {
		var p models.DraftPick
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			return store.Document{}, fmt.Errorf("failed to unmarshal pick %s: %w", doc.Key, err)
		}
		if p.ID == pickID {
			return doc, nil
		}
	}
	return store.Document{}, fmt.Errorf("pick %s: %w", pickID, store.ErrNotFound)
}
