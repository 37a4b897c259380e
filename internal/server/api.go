// ABOUTME: JSON request and response helpers shared by the API handlers
// ABOUTME: Maps domain sentinel errors onto HTTP status codes

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/boardio"
	"github.com/2389/homarr-board/internal/layout"
	"github.com/2389/homarr-board/internal/notebook"
	"github.com/2389/homarr-board/internal/store"
)

// maxBodyBytes limits request bodies, board imports included.
const maxBodyBytes = 4 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// statusFor maps an error onto the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, notebook.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrBoardExists),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, layout.ErrMetricsNotReady):
		return http.StatusConflict
	case errors.Is(err, board.ErrInvalidConfig),
		errors.Is(err, board.ErrInvalidArea),
		errors.Is(err, boardio.ErrUnknownFormat),
		errors.Is(err, notebook.ErrNotNotebook):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendError reports err with its mapped status. Internal errors are logged and
// not echoed.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.sendJSONError(w, status, "internal error")
		return
	}
	s.sendJSONError(w, status, err.Error())
}
