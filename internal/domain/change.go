package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldChange is the cascade engine's primary output unit: one before/after
// value for one field of one activity. Values are carried as strings so
// dates, durations, and statuses share one audit representation (dates as
// YYYY-MM-DD, durations as decimal integers).
//
// SourceActivityID is nil for direct edits; otherwise it names the directly
// edited activity that ultimately forced this change, traced through the
// cascade rather than the immediate predecessor.
type FieldChange struct {
	ActivityID       int64
	Field            FieldName
	OldValue         *string
	NewValue         string
	IsDirectEdit     bool
	SourceActivityID *int64
}

// StagedChange is one row of the staging ledger: a proposed, not yet
// committed field change for a (user, schedule) pair. The ledger is a
// derived, disposable view: rows are deleted wholesale and reinserted each
// time the edit set changes, never patched field by field.
type StagedChange struct {
	ID               int64
	UserID           uuid.UUID
	ScheduleID       int64
	ActivityID       int64
	MoveType         MoveType
	Field            FieldName
	OriginalValue    *string
	StagedValue      string
	IsDirectEdit     bool
	SourceActivityID *int64
	CreatedAt        time.Time
}

// PublishEvent is the append-only audit header for one publish (or one
// immediate status transition).
type PublishEvent struct {
	ID              int64
	UserID          uuid.UUID
	ScheduleID      int64
	Note            string
	MoveTypes       []MoveType
	ChangeCount     int
	DirectEditCount int
	CascadedCount   int
	PublishedAt     time.Time
}

// ChangeRecord is one audited field change belonging to exactly one
// PublishEvent.
type ChangeRecord struct {
	ID               int64
	PublishEventID   int64
	ActivityID       int64
	ScheduleID       int64
	Field            FieldName
	OldValue         *string
	NewValue         string
	IsDirectEdit     bool
	SourceActivityID *int64
	ChangedAt        time.Time
}
