package api

import (
	"net/http"
	"time"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   a.version,
		Uptime:    int64(time.Since(a.startTime).Seconds()),
		Timestamp: time.Now().UTC(),
	})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:       "running",
		Mode:         string(a.cfg.Mode),
		IDPolicy:     string(a.store.Policy()),
		Uptime:       int64(time.Since(a.startTime).Seconds()),
		UserCount:    a.store.Count(),
		RequestCount: a.requests.Count(),
		StartedAt:    a.startTime.UTC(),
	}
	if a.metrics != nil {
		snapshot := a.metrics.Snapshot()
		resp.Metrics = &snapshot
	}
	writeJSON(w, http.StatusOK, resp)
}
