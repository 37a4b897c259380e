// ABOUTME: Notebook widget API handlers
// ABOUTME: Reads rendered notes and stores new markdown content

package server

import (
	"net/http"
)

// UpdateNoteRequest is the JSON request body for PUT .../notebook.
type UpdateNoteRequest struct {
	Markdown string `json:"markdown"`
}

func (s *Server) notebookRouter() Router {
	return Router{
		Name: "notebook",
		Routes: []Route{
			{Method: http.MethodGet, Pattern: "/api/boards/{name}/widgets/{id}/notebook", Handler: s.handleGetNote},
			{Method: http.MethodPut, Pattern: "/api/boards/{name}/widgets/{id}/notebook", Handler: s.handleUpdateNote},
		},
	}
}

// handleGetNote handles GET /api/boards/{name}/widgets/{id}/notebook.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), r.PathValue("name"), r.PathValue("id"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, note)
}

// handleUpdateNote handles PUT /api/boards/{name}/widgets/{id}/notebook.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := r.PathValue("name")
	note, err := s.notes.Update(r.Context(), name, r.PathValue("id"), req.Markdown)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.layouts.RefreshBoard(r.Context(), name, nil)
	s.writeJSON(w, http.StatusOK, note)
}
