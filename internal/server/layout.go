// ABOUTME: Layout session API: session settings, style metrics, area views and grid events
// ABOUTME: Also streams board.updated events to clients over SSE

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/layout"
)

// sseKeepalive is the interval between SSE comment lines on idle streams.
const sseKeepalive = 15 * time.Second

// AreaResponse is the JSON response for GET /api/boards/{name}/areas/{type}/{id}.
type AreaResponse struct {
	Board   string         `json:"board"`
	Area    board.Area     `json:"area"`
	Apps    []board.App    `json:"apps"`
	Widgets []board.Widget `json:"widgets"`
	Layout  layout.Layout  `json:"layout"`
}

// MetricsResponse is the JSON response for GET /api/boards/{name}/metrics.
type MetricsResponse struct {
	Board     string           `json:"board"`
	Published bool             `json:"published"`
	Style     layout.StyleVars `json:"style"`
}

func (s *Server) layoutRouter() Router {
	return Router{
		Name: "layout",
		Routes: []Route{
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/session", Handler: s.handleGetSession},
			{Method: http.MethodPut, Pattern: "/api/boards/{name}/session", Handler: s.handlePutSession},
			{Method: http.MethodDelete, Pattern: "/api/boards/{name}/session", Handler: s.handleEndSession},
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/metrics", Handler: s.handleMetrics},
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/areas/{type}/{id}", Handler: s.handleArea},
			{Method: http.MethodPost, Pattern: "/api/boards/{name}/areas/{type}/{id}/events", Handler: s.handleAreaEvent},
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/stream", Handler: s.handleStream},
		},
	}
}

// areaFromPath parses the {type} and {id} path values.
func areaFromPath(r *http.Request) (board.AreaType, string, error) {
	areaType, err := board.ParseAreaType(r.PathValue("type"))
	if err != nil {
		return "", "", err
	}
	return areaType, r.PathValue("id"), nil
}

// handleGetSession handles GET /api/boards/{name}/session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.layouts.Describe(r.Context(), r.PathValue("name"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handlePutSession handles PUT /api/boards/{name}/session.
func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var settings layout.SessionSettings
	if err := decodeJSON(r, &settings); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.layouts.Configure(r.Context(), r.PathValue("name"), settings)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handleEndSession handles DELETE /api/boards/{name}/session.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.layouts.End(r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

// handleMetrics handles GET /api/boards/{name}/metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	vars, ok := s.styles.Get(name)
	s.writeJSON(w, http.StatusOK, MetricsResponse{Board: name, Published: ok, Style: vars})
}

// handleArea handles GET /api/boards/{name}/areas/{type}/{id}.
func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	areaType, areaID, err := areaFromPath(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	name := r.PathValue("name")
	syncer, view, err := s.layouts.Area(r.Context(), name, areaType, areaID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	apps, widgets, err := syncer.Items(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AreaResponse{
		Board:   name,
		Area:    syncer.Area(),
		Apps:    apps,
		Widgets: widgets,
		Layout:  view.Snapshot(),
	})
}

// handleAreaEvent handles POST /api/boards/{name}/areas/{type}/{id}/events.
func (s *Server) handleAreaEvent(w http.ResponseWriter, r *http.Request) {
	areaType, areaID, err := areaFromPath(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var ev layout.NodeEvent
	if err := decodeJSON(r, &ev); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.layouts.Apply(r.Context(), r.PathValue("name"), areaType, areaID, ev)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleStream handles GET /api/boards/{name}/stream. Each accepted write of
// the board is sent as a board.updated event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.store.Get(r.Context(), name); err != nil {
		s.sendError(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, subID := s.broadcaster.Subscribe(r.Context(), name)
	defer s.broadcaster.Unsubscribe(name, subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	s.writeSSEEvent(w, "connected", map[string]string{"board": name})
	flusher.Flush()

	ticker := time.NewTicker(sseKeepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.writeSSEEvent(w, ev.Type, ev)
			flusher.Flush()
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one SSE event with a JSON data line.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "event", event, "error", err)
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
