package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/viewer"
)

type openSessionResponse struct {
	Session     string            `json:"session"`
	Diagnostics graph.Diagnostics `json:"diagnostics"`
	View        viewer.View       `json:"view"`
}

// ListSessions handles GET /api/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.svc.Sessions()})
}

// OpenSession handles POST /api/sessions.
//
//	@Summary	Open a viewer session on a stored diagram or on diagram text
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		body	body		OpenSessionRequest	true	"Diagram to open"
//	@Success	201		{object}	openSessionResponse
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Router		/sessions [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var (
		sess  *viewer.Session
		diags graph.Diagnostics
		err   error
	)
	if req.Path != "" {
		sess, diags, err = h.svc.OpenSession(r.Context(), req.Path)
	} else {
		sess, diags = h.svc.OpenText(r.Context(), req.Text)
	}
	if err != nil {
		writeError(w, "open session", err)
		return
	}
	writeJSON(w, http.StatusCreated, openSessionResponse{Session: sess.ID, Diagnostics: diags, View: sess.View()})
}

// CloseSession handles DELETE /api/sessions/{sessionID}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(sessionFrom(r).ID); err != nil {
		writeError(w, "close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// View handles GET /api/sessions/{sessionID}/view.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).View())
}

// Select handles PUT /api/sessions/{sessionID}/selection.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	if err := sess.Select(req.NodeID); err != nil {
		writeError(w, "select", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// SetFilter handles PUT /api/sessions/{sessionID}/filters/{category}.
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	if err := sess.SetFilter(graph.Category(chi.URLParam(r, "category")), *req.Visible); err != nil {
		writeError(w, "set filter", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

type viewportResponse struct {
	Viewport    graph.Transform   `json:"viewport"`
	Diagnostics graph.Diagnostics `json:"diagnostics,omitempty"`
}

// Pan handles POST /api/sessions/{sessionID}/viewport/pan.
func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	var req PanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, viewportResponse{Viewport: sessionFrom(r).Pan(req.DX, req.DY)})
}

// Zoom handles POST /api/sessions/{sessionID}/viewport/zoom. Out-of-range
// results are clamped and reported as diagnostics, never as errors.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, diags := sessionFrom(r).Zoom(*req.Delta)
	writeJSON(w, http.StatusOK, viewportResponse{Viewport: t, Diagnostics: diags})
}

// ResetViewport handles POST /api/sessions/{sessionID}/viewport/reset.
func (h *Handler) ResetViewport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewportResponse{Viewport: sessionFrom(r).ResetViewport()})
}

type gestureResponse struct {
	Gesture  graph.GestureKind `json:"gesture"`
	Viewport graph.Transform   `json:"viewport"`
}

// PointerDown handles POST /api/sessions/{sessionID}/pointer/down.
func (h *Handler) PointerDown(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	if err := sess.PointerDown(req.Target, req.Position()); err != nil {
		writeError(w, "pointer down", err)
		return
	}
	v := sess.View()
	writeJSON(w, http.StatusOK, gestureResponse{Gesture: v.Gesture, Viewport: v.Viewport})
}

// PointerMove handles POST /api/sessions/{sessionID}/pointer/move.
func (h *Handler) PointerMove(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	sess.PointerMove(req.Position())
	writeJSON(w, http.StatusOK, sess.View())
}

// PointerUp handles POST /api/sessions/{sessionID}/pointer/up.
func (h *Handler) PointerUp(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	sess.PointerUp(req.Position())
	writeJSON(w, http.StatusOK, sess.View())
}

// Node handles GET /api/sessions/{sessionID}/nodes/{nodeID}.
func (h *Handler) Node(w http.ResponseWriter, r *http.Request) {
	d, err := sessionFrom(r).Node(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, "describe node", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ExportSession handles GET /api/sessions/{sessionID}/export.
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	name := sess.Title()
	if name == "" {
		name = "diagram"
	}
	writeText(w, name, sess.Export())
}

// SaveSession handles POST /api/sessions/{sessionID}/save.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := sessionFrom(r).Save(r.Context(), req.Path)
	if err != nil {
		writeError(w, "save session", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
