package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule"
	"github.com/harwell-homes/schedcast-backend/pkg/ctxutil"
)

// scheduleService is the slice of the schedule service the staging handler
// consumes.
type scheduleService interface {
	Stage(ctx context.Context, in schedule.StageInput) (*schedule.StageResult, error)
	GetStaged(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error)
	Discard(ctx context.Context, userID uuid.UUID, scheduleID int64) error
	Publish(ctx context.Context, in schedule.PublishInput) (*schedule.PublishResult, error)
}

// StagingHandler serves the staging and publish endpoints.
type StagingHandler struct {
	svc scheduleService
}

// NewStagingHandler creates a StagingHandler.
func NewStagingHandler(svc scheduleService) *StagingHandler {
	return &StagingHandler{svc: svc}
}

type stageRequest struct {
	ActivityID int64           `json:"activity_id"`
	ScheduleID int64           `json:"schedule_id"`
	MoveType   string          `json:"move_type"`
	Value      json.RawMessage `json:"value"`
}

type fieldChangeJSON struct {
	ActivityID       int64   `json:"activity_id"`
	Field            string  `json:"field_name"`
	OldValue         *string `json:"old_value"`
	NewValue         string  `json:"new_value"`
	IsDirectEdit     bool    `json:"is_direct_edit"`
	SourceActivityID *int64  `json:"source_activity_id"`
}

// Stage handles POST /api/staging.
func (h *StagingHandler) Stage(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	result, err := h.svc.Stage(r.Context(), schedule.StageInput{
		UserID:     userID,
		ScheduleID: req.ScheduleID,
		ActivityID: req.ActivityID,
		MoveType:   domain.MoveType(req.MoveType),
		Value:      rawValueString(req.Value),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	changes := make([]fieldChangeJSON, len(result.Changes))
	for i, c := range result.Changes {
		changes[i] = fieldChangeJSON{
			ActivityID:       c.ActivityID,
			Field:            c.Field.String(),
			OldValue:         c.OldValue,
			NewValue:         c.NewValue,
			IsDirectEdit:     c.IsDirectEdit,
			SourceActivityID: c.SourceActivityID,
		}
	}

	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "No changes detected",
			"changes": changes,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Changes staged successfully",
		"direct_count":   result.DirectCount,
		"cascaded_count": result.CascadedCount,
		"total_count":    result.DirectCount + result.CascadedCount,
		"changes":        changes,
	})
}

// GetStaged handles GET /api/staging?schedule_id=X.
func (h *StagingHandler) GetStaged(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	scheduleID, err := queryInt64(r, "schedule_id")
	if err != nil {
		badRequest(w, "missing or invalid schedule_id parameter")
		return
	}

	staged, err := h.svc.GetStaged(r.Context(), userID, scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": stagedRowsJSON(staged)})
}

// Discard handles DELETE /api/staging?schedule_id=X.
func (h *StagingHandler) Discard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	scheduleID, err := queryInt64(r, "schedule_id")
	if err != nil {
		badRequest(w, "missing or invalid schedule_id parameter")
		return
	}

	if err := h.svc.Discard(r.Context(), userID, scheduleID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All staged changes discarded"})
}

type publishRequest struct {
	ScheduleID int64  `json:"schedule_id"`
	Note       string `json:"publish_note"`
}

// Publish handles POST /api/staging/publish.
func (h *StagingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	result, err := h.svc.Publish(r.Context(), schedule.PublishInput{
		UserID:     userID,
		ScheduleID: req.ScheduleID,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if result.PartiallyFailed() {
		failures := make([]string, len(result.Failed))
		for i, f := range result.Failed {
			failures[i] = strconv.FormatInt(f.ActivityID, 10) + ": " + f.Err.Error()
		}
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"message":          "Published with some errors",
			"publish_event_id": result.EventID,
			"errors":           failures,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Published successfully",
		"publish_event_id": result.EventID,
		"change_count":     result.ChangeCount,
		"direct_count":     result.DirectCount,
		"cascaded_count":   result.CascadedCount,
	})
}

type stagedRowJSON struct {
	ID               int64   `json:"id"`
	ActivityID       int64   `json:"activity_id"`
	ScheduleID       int64   `json:"schedule_id"`
	MoveType         string  `json:"move_type"`
	Field            string  `json:"field_name"`
	OriginalValue    *string `json:"original_value"`
	StagedValue      string  `json:"staged_value"`
	IsDirectEdit     bool    `json:"is_direct_edit"`
	SourceActivityID *int64  `json:"source_activity_id"`
}

func stagedRowsJSON(staged []domain.StagedChange) []stagedRowJSON {
	rows := make([]stagedRowJSON, len(staged))
	for i, s := range staged {
		rows[i] = stagedRowJSON{
			ID:               s.ID,
			ActivityID:       s.ActivityID,
			ScheduleID:       s.ScheduleID,
			MoveType:         s.MoveType.String(),
			Field:            s.Field.String(),
			OriginalValue:    s.OriginalValue,
			StagedValue:      s.StagedValue,
			IsDirectEdit:     s.IsDirectEdit,
			SourceActivityID: s.SourceActivityID,
		}
	}
	return rows
}

// rawValueString accepts the edit value as either a JSON string ("2024-03-04")
// or a JSON number (5) and returns its text form.
func rawValueString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func queryInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}
