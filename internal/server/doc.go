// Package server runs the homarr-board HTTP API and gRPC health service.
//
// The API is composed of namespaced routers (boards, layout, locales, manage,
// notebook) mounted under /api/ behind bearer-token authentication, or behind
// the local admin identity when no JWT secret is configured. Accepted board
// writes are broadcast to SSE subscribers of /api/boards/{name}/stream.
package server
