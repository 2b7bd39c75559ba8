package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CoachWarRoom is a coach's private pre-draft state. The rankings are
// opaque to the draft state machine; they are stored and returned as-is.
type CoachWarRoom struct {
	DraftID   uuid.UUID       `json:"draft_id"`
	CoachID   uuid.UUID       `json:"coach_id"`
	Rankings  json.RawMessage `json:"rankings,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
