package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

// DraftKey returns the document key for a draft summary.
func DraftKey(draftID uuid.UUID) string {
	return "drafts/" + draftID.String()
}

// Repository persists draft summary documents in the document store.
type Repository struct {
	store store.Store
}

// NewRepository creates a draft repository over a document store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// CreateDraft stores a new draft summary document.
func (r *Repository) CreateDraft(ctx context.Context, draft *models.DraftEvent) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if _, err := r.store.Put(ctx, DraftKey(draft.ID), data, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("draft %s already exists: %w", draft.ID, err)
		}
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// GetDraft returns a draft summary together with its document version, which
// callers pass back to PutDraft for compare-and-swap.
func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.DraftEvent, int64, error) {
	doc, err := r.store.Get(ctx, DraftKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft models.DraftEvent
	if err := json.Unmarshal(doc.Data, &draft); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, doc.Version, nil
}

// PutDraft writes the summary back if the version is still current. A stale
// version surfaces as store.ErrVersionConflict for the caller's retry loop.
func (r *Repository) PutDraft(ctx context.Context, draft *models.DraftEvent, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(draft)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal draft: %w", err)
	}
	version, err := r.store.Put(ctx, DraftKey(draft.ID), data, expectedVersion)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return 0, err
		}
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("draft %s: %w", draft.ID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to put draft: %w", err)
	}
	return version, nil
}
