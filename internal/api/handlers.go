package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/archview/internal/checksum"
	"github.com/starford/archview/internal/viewer"
)

// Handler holds API route handlers.
type Handler struct {
	svc *viewer.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *viewer.Service) *Handler {
	return &Handler{svc: svc}
}

// diagramPath extracts the diagram path from the URL (everything after
// /api/diagrams/). Encoded slashes are accepted.
func diagramPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDiagrams handles GET /api/diagrams.
//
//	@Summary	List catalogued diagrams
//	@Tags		diagrams
//	@Produce	json
//	@Param		limit	query		int		false	"Page size"
//	@Param		offset	query		int		false	"Page offset"
//	@Param		sort	query		string	false	"Sort field"	Enums(path, title, updated, size)
//	@Success	200		{object}	DiagramListResponse
//	@Router		/diagrams [get]
func (h *Handler) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListDiagrams(r.Context(), limit, offset, q.Get("sort"))
	if err != nil {
		writeError(w, "list diagrams", err)
		return
	}
	writeJSON(w, http.StatusOK, DiagramListResponse{Diagrams: rows, Total: total})
}

// SearchNodes handles GET /api/diagrams/search.
//
//	@Summary	Search nodes across all diagrams
//	@Tags		diagrams
//	@Produce	json
//	@Param		q		query		string	true	"Search text"
//	@Param		type	query		string	false	"Node type"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Router		/diagrams/search [get]
func (h *Handler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	hits, err := h.svc.SearchNodes(r.Context(), query, q.Get("type"), limit)
	if err != nil {
		writeError(w, "search nodes", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// GetDiagram handles GET /api/diagrams/*. With ?format=text the diagram is
// returned in the text format instead of JSON.
func (h *Handler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	p := diagramPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if r.URL.Query().Get("format") == "text" {
		text, err := h.svc.ExportDiagram(r.Context(), p)
		if err != nil {
			writeError(w, "export diagram", err)
			return
		}
		writeText(w, p, text)
		return
	}
	d, err := h.svc.GetDiagram(r.Context(), p)
	if err != nil {
		writeError(w, "get diagram", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// CreateDiagram handles POST /api/diagrams.
//
//	@Summary	Store a new diagram file
//	@Tags		diagrams
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateDiagramRequest	true	"Diagram to create"
//	@Success	201		{object}	viewer.DiagramDetail
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/diagrams [post]
func (h *Handler) CreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req CreateDiagramRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.CreateDiagram(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, "create diagram", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// UpdateDiagram handles PUT /api/diagrams/*. An If-Match header carrying the
// current checksum guards against lost updates.
func (h *Handler) UpdateDiagram(w http.ResponseWriter, r *http.Request) {
	p := diagramPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateDiagramRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.UpdateDiagram(r.Context(), p, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update diagram", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// DeleteDiagram handles DELETE /api/diagrams/*.
func (h *Handler) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	p := diagramPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDiagram(r.Context(), p); err != nil {
		writeError(w, "delete diagram", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/import.
//
//	@Summary	Parse diagram text, optionally storing it
//	@Tags		diagrams
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ImportRequest	true	"Diagram text"
//	@Success	200		{object}	viewer.ImportResult
//	@Failure	400		{object}	errResponse
//	@Router		/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Import(r.Context(), req.Path, req.Text)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	status := http.StatusOK
	if res.Path != "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func writeText(w http.ResponseWriter, name, text string) {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".arch"))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}
