package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/history"
	"github.com/harwell-homes/schedcast-backend/pkg/ctxutil"
)

type historyService interface {
	ScheduleEvents(ctx context.Context, scheduleID int64) ([]domain.PublishEvent, error)
	ActivityHistory(ctx context.Context, activityID int64) ([]history.ActivityRecord, error)
	EventDetail(ctx context.Context, eventID int64) (*history.EventDetail, error)
}

// HistoryHandler serves the audit-trail read endpoints.
type HistoryHandler struct {
	svc historyService
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(svc historyService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

type eventJSON struct {
	ID              int64     `json:"publish_event_id"`
	UserID          string    `json:"user_id"`
	ScheduleID      int64     `json:"schedule_id"`
	Note            string    `json:"publish_note"`
	MoveTypes       []string  `json:"move_types"`
	ChangeCount     int       `json:"change_count"`
	DirectEditCount int       `json:"direct_edit_count"`
	CascadedCount   int       `json:"cascaded_count"`
	PublishedAt     time.Time `json:"published_at"`
}

type recordJSON struct {
	ID               int64     `json:"id"`
	PublishEventID   int64     `json:"publish_event_id"`
	ActivityID       int64     `json:"activity_id"`
	ScheduleID       int64     `json:"schedule_id"`
	Field            string    `json:"field_name"`
	OldValue         *string   `json:"old_value"`
	NewValue         string    `json:"new_value"`
	IsDirectEdit     bool      `json:"is_direct_edit"`
	SourceActivityID *int64    `json:"source_activity_id"`
	ChangedAt        time.Time `json:"changed_at"`
}

// ScheduleEvents handles GET /api/history/schedule?schedule_id=X.
func (h *HistoryHandler) ScheduleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
		unauthorized(w)
		return
	}
	scheduleID, err := queryInt64(r, "schedule_id")
	if err != nil {
		badRequest(w, "missing or invalid schedule_id parameter")
		return
	}

	events, err := h.svc.ScheduleEvents(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = toEventJSON(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// ActivityHistory handles GET /api/history/activity?activity_id=X.
func (h *HistoryHandler) ActivityHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
		unauthorized(w)
		return
	}
	activityID, err := queryInt64(r, "activity_id")
	if err != nil {
		badRequest(w, "missing or invalid activity_id parameter")
		return
	}

	records, err := h.svc.ActivityHistory(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	type activityRecordJSON struct {
		recordJSON
		Event eventJSON `json:"publish_event"`
	}
	out := make([]activityRecordJSON, len(records))
	for i, rec := range records {
		out[i] = activityRecordJSON{
			recordJSON: toRecordJSON(rec.Record),
			Event:      toEventJSON(rec.Event),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

// EventDetail handles GET /api/history/event?publish_event_id=X.
func (h *HistoryHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
		unauthorized(w)
		return
	}
	eventID, err := queryInt64(r, "publish_event_id")
	if err != nil {
		badRequest(w, "missing or invalid publish_event_id parameter")
		return
	}

	detail, err := h.svc.EventDetail(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	type eventRecordJSON struct {
		recordJSON
		ActivityDescription string `json:"activity_description"`
	}
	records := make([]eventRecordJSON, len(detail.Records))
	for i, rec := range detail.Records {
		records[i] = eventRecordJSON{
			recordJSON:          toRecordJSON(rec.Record),
			ActivityDescription: rec.ActivityDescription,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":   toEventJSON(detail.Event),
		"records": records,
	})
}

func toEventJSON(e domain.PublishEvent) eventJSON {
	moveTypes := make([]string, len(e.MoveTypes))
	for i, m := range e.MoveTypes {
		moveTypes[i] = m.String()
	}
	return eventJSON{
		ID:              e.ID,
		UserID:          e.UserID.String(),
		ScheduleID:      e.ScheduleID,
		Note:            e.Note,
		MoveTypes:       moveTypes,
		ChangeCount:     e.ChangeCount,
		DirectEditCount: e.DirectEditCount,
		CascadedCount:   e.CascadedCount,
		PublishedAt:     e.PublishedAt,
	}
}

func toRecordJSON(rec domain.ChangeRecord) recordJSON {
	return recordJSON{
		ID:               rec.ID,
		PublishEventID:   rec.PublishEventID,
		ActivityID:       rec.ActivityID,
		ScheduleID:       rec.ScheduleID,
		Field:            rec.Field.String(),
		OldValue:         rec.OldValue,
		NewValue:         rec.NewValue,
		IsDirectEdit:     rec.IsDirectEdit,
		SourceActivityID: rec.SourceActivityID,
		ChangedAt:        rec.ChangedAt,
	}
}
