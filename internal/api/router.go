package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/archview/internal/viewer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *viewer.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Library.
	r.Get("/diagrams", h.ListDiagrams)
	r.Post("/diagrams", h.CreateDiagram)
	r.Get("/diagrams/search", h.SearchNodes)
	r.Get("/diagrams/*", h.GetDiagram)
	r.Put("/diagrams/*", h.UpdateDiagram)
	r.Delete("/diagrams/*", h.DeleteDiagram)
	r.Post("/import", h.Import)

	// Viewer sessions.
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.Post("/", h.OpenSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(h.sessionCtx)
			r.Delete("/", h.CloseSession)
			r.Get("/view", h.View)
			r.Put("/selection", h.Select)
			r.Put("/filters/{category}", h.SetFilter)
			r.Post("/viewport/pan", h.Pan)
			r.Post("/viewport/zoom", h.Zoom)
			r.Post("/viewport/reset", h.ResetViewport)
			r.Post("/pointer/down", h.PointerDown)
			r.Post("/pointer/move", h.PointerMove)
			r.Post("/pointer/up", h.PointerUp)
			r.Get("/nodes/{nodeID}", h.Node)
			r.Get("/export", h.ExportSession)
			r.Post("/save", h.SaveSession)
		})
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
