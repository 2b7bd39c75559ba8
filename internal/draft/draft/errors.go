package draft

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
)

var (
	// ErrNotFound reports a missing draft.
	ErrNotFound = errors.New("draft not found")
	// ErrConflict reports that the optimistic-concurrency retry budget was
	// exhausted. Safe to retry against the now-current state.
	ErrConflict = errors.New("draft modified concurrently")
	// ErrNothingToUndo reports that no active picks exist.
	ErrNothingToUndo = errors.New("no picks to undo")
	// ErrAlreadyFinalized rejects mutations on a finalized draft.
	ErrAlreadyFinalized = errors.New("draft already finalized")
)

// StateError reports an operation attempted from an invalid lifecycle state.
type StateError struct {
	Op       string
	Current  models.DraftStatus
	Expected []models.DraftStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: draft status is %s, expected one of %v", e.Op, e.Current, e.Expected)
}

// TurnViolationError reports a pick submitted by a team that is not on the
// clock. The pick is rejected, never reassigned.
type TurnViolationError struct {
	TeamID        uuid.UUID
	CurrentTeamID uuid.UUID
}

func (e *TurnViolationError) Error() string {
	return fmt.Sprintf("team %s attempted a pick but team %s is on the clock", e.TeamID, e.CurrentTeamID)
}

// ConfigError reports malformed draft configuration or arguments.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid draft config: %s %s", e.Field, e.Reason)
}
