// ABOUTME: Locale and manage navigation API handlers
// ABOUTME: Navigation filters admin-only sections by the caller's admin claim

package server

import (
	"net/http"

	"github.com/2389/homarr-board/internal/auth"
	"github.com/2389/homarr-board/internal/locale"
	"github.com/2389/homarr-board/internal/manage"
)

// LocalesResponse is the JSON response for GET /api/locales.
type LocalesResponse struct {
	Default   locale.Language   `json:"default"`
	Languages []locale.Language `json:"languages"`
}

// NavigationResponse is the JSON response for GET /api/manage/navigation.
type NavigationResponse struct {
	Admin bool          `json:"admin"`
	Links []manage.Link `json:"links"`
}

func (s *Server) localesRouter() Router {
	return Router{
		Name: "locales",
		Routes: []Route{
			{Method: http.MethodGet, Pattern: "/api/locales", Handler: s.handleListLocales},
			{Method: http.MethodGet, Pattern: "/api/locales/resolve", Handler: s.handleResolveLocale},
		},
	}
}

func (s *Server) manageRouter() Router {
	return Router{
		Name: "manage",
		Routes: []Route{
			{Method: http.MethodGet, Pattern: "/api/manage/navigation", Handler: s.handleNavigation},
		},
	}
}

// handleListLocales handles GET /api/locales.
func (s *Server) handleListLocales(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, LocalesResponse{
		Default:   s.locales.Default(),
		Languages: locale.All(),
	})
}

// handleResolveLocale handles GET /api/locales/resolve?code=X. Without a code
// the Accept-Language header is matched.
func (s *Server) handleResolveLocale(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("code"); code != "" {
		s.writeJSON(w, http.StatusOK, s.locales.Resolve(code))
		return
	}
	s.writeJSON(w, http.StatusOK, s.locales.Match(r.Header.Get("Accept-Language")))
}

// handleNavigation handles GET /api/manage/navigation?path=X.
func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	isAdmin := auth.FromContext(r.Context()).IsAdmin()
	links := manage.Links(isAdmin)
	if path := r.URL.Query().Get("path"); path != "" {
		links = manage.MarkActive(links, path)
	}
	s.writeJSON(w, http.StatusOK, NavigationResponse{Admin: isAdmin, Links: links})
}
