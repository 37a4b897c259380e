// ABOUTME: API namespaces composed into one mux, one Router per namespace
// ABOUTME: Routes may require the admin claim of the authenticated caller

package server

import (
	"net/http"

	"github.com/2389/homarr-board/internal/auth"
)

// Route is one method and path pattern of an API namespace.
type Route struct {
	Method  string
	Pattern string
	Admin   bool
	Handler http.HandlerFunc
}

// Router is a named group of routes.
type Router struct {
	Name   string
	Routes []Route
}

// register adds every route of r to mux.
func (r Router) register(mux *http.ServeMux) {
	requireAdmin := auth.RequireAdminHTTP()
	for _, rt := range r.Routes {
		var h http.Handler = rt.Handler
		if rt.Admin {
			h = requireAdmin(h)
		}
		mux.Handle(rt.Method+" "+rt.Pattern, h)
	}
}

// routers returns the API namespaces in registration order.
func (s *Server) routers() []Router {
	return []Router{
		s.boardsRouter(),
		s.layoutRouter(),
		s.localesRouter(),
		s.manageRouter(),
		s.notebookRouter(),
	}
}
