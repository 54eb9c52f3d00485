package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule"
	"github.com/harwell-homes/schedcast-backend/pkg/ctxutil"
)

type statusService interface {
	SetStatus(ctx context.Context, in schedule.StatusInput) (*schedule.StatusResult, error)
}

// StatusHandler serves the immediate status-transition endpoint.
type StatusHandler struct {
	svc statusService
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(svc statusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type statusRequest struct {
	ActivityID int64  `json:"activity_id"`
	ScheduleID int64  `json:"schedule_id"`
	Status     string `json:"status"`
	Note       string `json:"publish_note"`
}

// SetStatus handles POST /api/activities/status.
func (h *StatusHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	result, err := h.svc.SetStatus(r.Context(), schedule.StatusInput{
		UserID:     userID,
		ScheduleID: req.ScheduleID,
		ActivityID: req.ActivityID,
		Status:     domain.ActivityStatus(req.Status),
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Status updated",
		"publish_event_id": result.EventID,
		"old_status":       result.OldStatus.String(),
		"new_status":       result.NewStatus.String(),
	})
}
