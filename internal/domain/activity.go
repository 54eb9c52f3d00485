package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a live schedule line item as persisted in the record store.
type Activity struct {
	ID           int64
	ScheduleID   int64
	Description  string
	Status       ActivityStatus
	StartDate    *time.Time
	EndDate      *time.Time
	Duration     *int
	LastModBy    *uuid.UUID
	LastModAt    *time.Time
	CreatedAt    time.Time
}

// Snapshot returns the read-only view of the activity the cascade engine
// consumes.
func (a *Activity) Snapshot() ActivitySnapshot {
	return ActivitySnapshot{
		ID:         a.ID,
		ScheduleID: a.ScheduleID,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
		Duration:   a.Duration,
	}
}

// ActivitySnapshot is the live published state of one activity at the moment
// a cascade is computed. Activities missing any of start, end, or duration
// are excluded from cascading entirely.
type ActivitySnapshot struct {
	ID         int64
	ScheduleID int64
	StartDate  *time.Time
	EndDate    *time.Time
	Duration   *int
}

// Schedulable reports whether the activity carries the full date/duration
// triple the cascade engine needs.
func (s ActivitySnapshot) Schedulable() bool {
	return s.StartDate != nil && s.EndDate != nil && s.Duration != nil && *s.Duration >= 1
}

// ActivityFieldUpdate is one merged per-activity update applied to the record
// store when staged changes are published.
type ActivityFieldUpdate struct {
	ActivityID int64
	StartDate  *time.Time
	EndDate    *time.Time
	Duration   *int
	Status     *ActivityStatus
	ModifiedBy uuid.UUID
	ModifiedAt time.Time
}

// DependencyEdge is a directed scheduling constraint between two activities.
// LagDays may be zero or negative (a lead).
type DependencyEdge struct {
	PredecessorID int64
	SuccessorID   int64
	Type          DependencyType
	LagDays       int
}

// CalendarDay is one day of the workday calendar. Immutable reference data.
type CalendarDay struct {
	Date        time.Time
	IsWorkday   bool
	Description string
}
