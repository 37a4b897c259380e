// ABOUTME: Board management API: list, create, delete, add items, export and import
// ABOUTME: Writes go through the store's atomic update and refresh open layout areas

package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/boardio"
)

// CreateBoardRequest is the JSON request body for POST /api/boards.
type CreateBoardRequest struct {
	Name   string `json:"name"`
	Locale string `json:"locale,omitempty"`
}

// ListBoardsResponse is the JSON response for GET /api/boards.
type ListBoardsResponse struct {
	Boards []BoardSummary `json:"boards"`
}

// BoardSummary is one entry of ListBoardsResponse.
type BoardSummary struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
	Apps    int    `json:"apps"`
	Widgets int    `json:"widgets"`
}

// ImportResponse is the JSON response for PUT /api/boards/{name}/import.
type ImportResponse struct {
	Board   string `json:"board"`
	Version uint64 `json:"version"`
	Applied bool   `json:"applied"`
}

func (s *Server) boardsRouter() Router {
	return Router{
		Name: "boards",
		Routes: []Route{
			{Method: http.MethodGet, Pattern: "/api/boards", Handler: s.handleListBoards},
			{Method: http.MethodPost, Pattern: "/api/boards", Admin: true, Handler: s.handleCreateBoard},
			{Method: http.MethodGet, Pattern: "/api/boards/{name}", Handler: s.handleGetBoard},
			{Method: http.MethodDelete, Pattern: "/api/boards/{name}", Admin: true, Handler: s.handleDeleteBoard},
			{Method: http.MethodPost, Pattern: "/api/boards/{name}/apps", Admin: true, Handler: s.handleAddApp},
			{Method: http.MethodPost, Pattern: "/api/boards/{name}/widgets", Admin: true, Handler: s.handleAddWidget},
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/export", Handler: s.handleExportBoard},
			{Method: http.MethodPut, Pattern: "/api/boards/{name}/import", Admin: true, Handler: s.handleImportBoard},
		},
	}
}

// handleListBoards handles GET /api/boards.
func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	resp := ListBoardsResponse{Boards: make([]BoardSummary, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Boards = append(resp.Boards, BoardSummary{
			Name:    sum.Name,
			Version: sum.Version,
			Apps:    sum.Apps,
			Widgets: sum.Widgets,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleCreateBoard handles POST /api/boards.
func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	cfg := board.New(req.Name)
	cfg.Settings.Locale = s.locales.Resolve(req.Locale).Locale
	if err := s.store.Create(r.Context(), cfg); err != nil {
		s.sendError(w, r, err)
		return
	}
	created, err := s.store.Get(r.Context(), req.Name)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.logger.Info("board created", "board", req.Name)
	s.writeJSON(w, http.StatusCreated, created)
}

// handleGetBoard handles GET /api/boards/{name}.
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

// handleDeleteBoard handles DELETE /api/boards/{name}.
func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.sendError(w, r, err)
		return
	}
	s.layouts.End(name)
	s.logger.Info("board deleted", "board", name)
	w.WriteHeader(http.StatusNoContent)
}

// handleAddApp handles POST /api/boards/{name}/apps.
func (s *Server) handleAddApp(w http.ResponseWriter, r *http.Request) {
	var app board.App
	if err := decodeJSON(r, &app); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	name := r.PathValue("name")
	cfg, _, err := s.store.Update(r.Context(), name, func(prev *board.Config) *board.Config {
		prev.Apps = append(prev.Apps, app)
		return prev
	}, nil)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.layouts.RefreshBoard(r.Context(), name, nil)
	i, _ := cfg.FindApp(app.ID)
	s.writeJSON(w, http.StatusCreated, cfg.Apps[i])
}

// handleAddWidget handles POST /api/boards/{name}/widgets.
func (s *Server) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var widget board.Widget
	if err := decodeJSON(r, &widget); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if widget.ID == "" {
		widget.ID = uuid.NewString()
	}
	name := r.PathValue("name")
	cfg, _, err := s.store.Update(r.Context(), name, func(prev *board.Config) *board.Config {
		prev.Widgets = append(prev.Widgets, widget)
		return prev
	}, nil)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.layouts.RefreshBoard(r.Context(), name, nil)
	i, _ := cfg.FindWidget(widget.ID)
	s.writeJSON(w, http.StatusCreated, cfg.Widgets[i])
}

// handleExportBoard handles GET /api/boards/{name}/export?format=json|yaml|toml.
func (s *Server) handleExportBoard(w http.ResponseWriter, r *http.Request) {
	format, err := boardio.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	cfg, err := s.store.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cfg.Name+"."+string(format)))
	if err := boardio.Encode(w, cfg, format); err != nil {
		s.logger.Error("export failed", "board", cfg.Name, "error", err)
	}
}

// handleImportBoard handles PUT /api/boards/{name}/import?format=json|yaml|toml.
func (s *Server) handleImportBoard(w http.ResponseWriter, r *http.Request) {
	format, err := boardio.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	name := r.PathValue("name")
	cfg, err := boardio.DecodeFor(http.MaxBytesReader(w, r.Body, maxBodyBytes), format, name)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, applied, err := boardio.Import(r.Context(), s.store, name, cfg)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if applied {
		s.layouts.RefreshBoard(r.Context(), name, nil)
		s.logger.Info("board imported", "board", name, "version", updated.Version)
	}
	s.writeJSON(w, http.StatusOK, ImportResponse{Board: name, Version: updated.Version, Applied: applied})
}
