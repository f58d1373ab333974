package models

import (
	"time"
)

// ModerationAction is the kind of lifecycle transition recorded in the log
type ModerationAction string

const (
	ActionSubmitted ModerationAction = "submitted"
	ActionApproved  ModerationAction = "approved"
	ActionRejected  ModerationAction = "rejected"
)

// InitialSubmissionNote is stored on the log entry created with every submission
const InitialSubmissionNote = "Initial submission"

// DefaultLogLimit is the number of log entries returned when no limit is given
const DefaultLogLimit = 50

// ModerationLogEntry is one append-only audit record of a lifecycle transition.
// ArtworkID is a plain reference; entries outlive deleted artworks.
type ModerationLogEntry struct {
	ID                  int64            `json:"log_id"`
	ArtworkID           int64            `json:"artwork_id"`
	Action              ModerationAction `json:"action"`
	PerformedBy         int64            `json:"performed_by"`
	Notes               string           `json:"notes"`
	NewStatus           ArtworkStatus    `json:"new_status"`
	CreatedAt           time.Time        `json:"action_date"`
	ArtworkTitle        *string          `json:"artwork_title"`
	PerformedByUsername string           `json:"username,omitempty"`
}
