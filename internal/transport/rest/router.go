package rest

import "net/http"

// NewRouter wires all REST endpoints onto a ServeMux. Identity and
// request-scoped middleware are applied by the caller.
func NewRouter(staging *StagingHandler, status *StatusHandler, hist *HistoryHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/staging", staging.Stage)
	mux.HandleFunc("GET /api/staging", staging.GetStaged)
	mux.HandleFunc("DELETE /api/staging", staging.Discard)
	mux.HandleFunc("POST /api/staging/publish", staging.Publish)

	mux.HandleFunc("POST /api/activities/status", status.SetStatus)

	mux.HandleFunc("GET /api/history/schedule", hist.ScheduleEvents)
	mux.HandleFunc("GET /api/history/activity", hist.ActivityHistory)
	mux.HandleFunc("GET /api/history/event", hist.EventDetail)

	mux.HandleFunc("GET /health/live", health.Live)
	mux.HandleFunc("GET /health/ready", health.Ready)

	return mux
}
