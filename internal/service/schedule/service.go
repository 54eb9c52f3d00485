// Package schedule implements the scheduling core: staging cascaded edits,
// publishing them with an audit trail, and immediate status transitions.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type activityRepo interface {
	GetByID(ctx context.Context, activityID int64) (*domain.Activity, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.Activity, error)
	ApplyFieldUpdate(ctx context.Context, upd domain.ActivityFieldUpdate) error
}

type dependencyRepo interface {
	ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.DependencyEdge, error)
}

type calendarRepo interface {
	ListRange(ctx context.Context, from, to time.Time) ([]domain.CalendarDay, error)
}

type stagingRepo interface {
	ListByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error)
	InsertBatch(ctx context.Context, rows []domain.StagedChange) error
	DeleteByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) error
}

type historyRepo interface {
	InsertPublishEvent(ctx context.Context, ev domain.PublishEvent) (domain.PublishEvent, error)
	InsertChangeRecords(ctx context.Context, recs []domain.ChangeRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds schedule service tuning.
type Config struct {
	// HorizonMarginDays pads the calendar horizon loaded around the
	// schedule's date span so cascades cannot walk off the loaded range.
	HorizonMarginDays int
}

// Service implements staging, publish, and status-transition business logic.
//
// Stage, Discard, and Publish are serialized per (user, schedule) key with an
// in-process lock; running multiple instances against one database requires
// external serialization per key.
type Service struct {
	activities   activityRepo
	dependencies dependencyRepo
	calendars    calendarRepo
	staging      stagingRepo
	history      historyRepo
	tx           txManager
	log          *slog.Logger
	cfg          Config

	locks *keyLock
}

// NewService creates a new schedule service.
func NewService(
	log *slog.Logger,
	activities activityRepo,
	dependencies dependencyRepo,
	calendars calendarRepo,
	staging stagingRepo,
	history historyRepo,
	tx txManager,
	cfg Config,
) *Service {
	if cfg.HorizonMarginDays <= 0 {
		cfg.HorizonMarginDays = 366
	}
	return &Service{
		activities:   activities,
		dependencies: dependencies,
		calendars:    calendars,
		staging:      staging,
		history:      history,
		tx:           tx,
		log:          log,
		cfg:          cfg,
		locks:        newKeyLock(),
	}
}
