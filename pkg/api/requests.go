package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getuserd/userd/pkg/requestlog"
)

func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	filter := &requestlog.Filter{
		Limit: 100, // default
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if v := r.URL.Query().Get("method"); v != "" {
		filter.Method = v
	}
	if v := r.URL.Query().Get("path"); v != "" {
		filter.Path = v
	}
	if v := r.URL.Query().Get("operation"); v != "" {
		filter.Operation = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			filter.StatusCode = code
		}
	}
	if v := r.URL.Query().Get("hasError"); v != "" {
		if hasError, err := strconv.ParseBool(v); err == nil {
			filter.HasError = &hasError
		}
	}

	entries := a.requests.List(filter)
	writeJSON(w, http.StatusOK, RequestListResponse{
		Requests: entries,
		Count:    len(entries),
		Total:    a.requests.Count(),
	})
}

func (a *API) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry := a.requests.Get(id)
	if entry == nil {
		writeError(w, http.StatusNotFound, "not_found", "request not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	count := a.requests.Count()
	a.requests.Clear()
	writeJSON(w, http.StatusOK, map[string]any{
		"cleared": count,
		"message": "request history cleared",
	})
}

// handleStreamRequests streams new request history entries as server-sent
// events. Each handled request produces one "request" event.
func (a *API) handleStreamRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	origin := r.Header.Get("Origin")
	if allowOrigin := a.cors.getAllowOriginValue(origin); allowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "sse_error", "Streaming not supported")
		return
	}

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"message\": \"Connected to request stream\"}\n\n")
	flusher.Flush()

	sub, unsubscribe := a.requests.Subscribe()
	defer unsubscribe()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case entry, open := <-sub:
			if !open {
				return
			}
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: request\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
