package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// Hand-written mocks in the moq style: one Func field per method plus a call
// recorder, so tests stub behavior inline and assert on invocations.

type activityRepoMock struct {
	GetByIDFunc          func(ctx context.Context, activityID int64) (*domain.Activity, error)
	ListByScheduleFunc   func(ctx context.Context, scheduleID int64) ([]domain.Activity, error)
	ApplyFieldUpdateFunc func(ctx context.Context, upd domain.ActivityFieldUpdate) error

	mu      sync.Mutex
	applied []domain.ActivityFieldUpdate
}

func (m *activityRepoMock) GetByID(ctx context.Context, activityID int64) (*domain.Activity, error) {
	return m.GetByIDFunc(ctx, activityID)
}

func (m *activityRepoMock) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.Activity, error) {
	return m.ListByScheduleFunc(ctx, scheduleID)
}

func (m *activityRepoMock) ApplyFieldUpdate(ctx context.Context, upd domain.ActivityFieldUpdate) error {
	m.mu.Lock()
	m.applied = append(m.applied, upd)
	m.mu.Unlock()
	return m.ApplyFieldUpdateFunc(ctx, upd)
}

func (m *activityRepoMock) ApplyFieldUpdateCalls() []domain.ActivityFieldUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ActivityFieldUpdate(nil), m.applied...)
}

type dependencyRepoMock struct {
	ListByScheduleFunc func(ctx context.Context, scheduleID int64) ([]domain.DependencyEdge, error)
}

func (m *dependencyRepoMock) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.DependencyEdge, error) {
	return m.ListByScheduleFunc(ctx, scheduleID)
}

type calendarRepoMock struct {
	ListRangeFunc func(ctx context.Context, from, to time.Time) ([]domain.CalendarDay, error)
}

func (m *calendarRepoMock) ListRange(ctx context.Context, from, to time.Time) ([]domain.CalendarDay, error) {
	return m.ListRangeFunc(ctx, from, to)
}

type stagingRepoMock struct {
	ListByUserScheduleFunc   func(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error)
	InsertBatchFunc          func(ctx context.Context, rows []domain.StagedChange) error
	DeleteByUserScheduleFunc func(ctx context.Context, userID uuid.UUID, scheduleID int64) error

	mu       sync.Mutex
	inserted [][]domain.StagedChange
	deletes  int
}

func (m *stagingRepoMock) ListByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error) {
	return m.ListByUserScheduleFunc(ctx, userID, scheduleID)
}

func (m *stagingRepoMock) InsertBatch(ctx context.Context, rows []domain.StagedChange) error {
	m.mu.Lock()
	m.inserted = append(m.inserted, rows)
	m.mu.Unlock()
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, rows)
	}
	return nil
}

func (m *stagingRepoMock) DeleteByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) error {
	m.mu.Lock()
	m.deletes++
	m.mu.Unlock()
	if m.DeleteByUserScheduleFunc != nil {
		return m.DeleteByUserScheduleFunc(ctx, userID, scheduleID)
	}
	return nil
}

func (m *stagingRepoMock) InsertBatchCalls() [][]domain.StagedChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.StagedChange(nil), m.inserted...)
}

func (m *stagingRepoMock) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

type historyRepoMock struct {
	InsertPublishEventFunc  func(ctx context.Context, ev domain.PublishEvent) (domain.PublishEvent, error)
	InsertChangeRecordsFunc func(ctx context.Context, recs []domain.ChangeRecord) error

	mu      sync.Mutex
	events  []domain.PublishEvent
	records [][]domain.ChangeRecord
}

func (m *historyRepoMock) InsertPublishEvent(ctx context.Context, ev domain.PublishEvent) (domain.PublishEvent, error) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return m.InsertPublishEventFunc(ctx, ev)
}

func (m *historyRepoMock) InsertChangeRecords(ctx context.Context, recs []domain.ChangeRecord) error {
	m.mu.Lock()
	m.records = append(m.records, recs)
	m.mu.Unlock()
	if m.InsertChangeRecordsFunc != nil {
		return m.InsertChangeRecordsFunc(ctx, recs)
	}
	return nil
}

func (m *historyRepoMock) InsertPublishEventCalls() []domain.PublishEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PublishEvent(nil), m.events...)
}

func (m *historyRepoMock) InsertChangeRecordsCalls() [][]domain.ChangeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.ChangeRecord(nil), m.records...)
}

// txManagerMock runs the callback directly; the services under test treat the
// transaction as a pass-through boundary.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
