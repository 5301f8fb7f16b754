package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/archview/internal/apperr"
	"github.com/starford/archview/internal/diagram"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
	"github.com/starford/archview/internal/source"
)

// ErrUnknownSession is returned for session ids that are not open.
var ErrUnknownSession = fmt.Errorf("viewer: unknown session: %w", apperr.ErrNotFound)

// Session is one open diagram with its own viewport, selection and filters.
// All access goes through the session mutex, so callers on different
// goroutines never touch the graph concurrently.
type Session struct {
	ID       string
	Path     string
	OpenedAt time.Time

	svc      *Service
	mu       sync.Mutex
	canvas   *graph.Canvas
	unlisten func()
}

// SessionInfo is a listing entry for an open session.
type SessionInfo struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	OpenedAt time.Time `json:"opened_at"`
}

// OpenSession loads a stored diagram into a new session.
func (s *Service) OpenSession(ctx context.Context, path string) (*Session, graph.Diagnostics, error) {
	m, diags, _, err := s.LoadModel(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	s.recordDiagnostics(diags)
	return s.register(path, m), nonNilDiagnostics(diags), nil
}

// OpenText opens a session on diagram text that is not stored.
func (s *Service) OpenText(_ context.Context, text string) (*Session, graph.Diagnostics) {
	m, diags := diagram.Import(text)
	s.recordDiagnostics(diags)
	return s.register("", m), nonNilDiagnostics(diags)
}

func (s *Service) register(path string, m *graph.Model) *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		Path:     path,
		OpenedAt: time.Now().UTC(),
		svc:      s,
		canvas:   graph.NewCanvas(m),
	}
	sess.unlisten = m.OnNodeSelected(func(id string) {
		if s.events != nil {
			s.events.PublishSelection(sess.ID, id)
		}
	})

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsOpen.Set(float64(n))
	}
	s.logger.Info("session opened", slog.String("session", sess.ID), slog.String("path", path))
	return sess
}

// Session returns an open session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// CloseSession discards a session and everything it holds.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}

	sess.mu.Lock()
	sess.unlisten()
	sess.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsOpen.Set(float64(n))
	}
	if s.events != nil {
		s.events.PublishSessionClosed(id)
	}
	s.logger.Info("session closed", slog.String("session", id))
	return nil
}

// Sessions lists open sessions, oldest first.
func (s *Service) Sessions() []SessionInfo {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	out := make([]SessionInfo, 0, len(list))
	for _, sess := range list {
		sess.mu.Lock()
		out = append(out, SessionInfo{ID: sess.ID, Path: sess.Path, Title: sess.canvas.Model.Title(), OpenedAt: sess.OpenedAt})
		sess.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Select changes the selection. An empty id clears it.
func (sess *Session) Select(id string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.canvas.Model.Select(id)
}

// SetFilter switches a category on or off.
func (sess *Session) SetFilter(category graph.Category, visible bool) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.canvas.Model.SetFilter(category, visible)
}

// Pan translates the viewport by a screen-space delta.
func (sess *Session) Pan(dx, dy float64) graph.Transform {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.canvas.Viewport.Pan(dx, dy)
	return sess.canvas.Viewport.Transform()
}

// Zoom adjusts the viewport scale by delta.
func (sess *Session) Zoom(delta float64) (graph.Transform, graph.Diagnostics) {
	sess.mu.Lock()
	t, diags := sess.canvas.Viewport.Zoom(delta)
	sess.mu.Unlock()
	sess.svc.recordDiagnostics(diags)
	return t, nonNilDiagnostics(diags)
}

// ResetViewport restores the identity transform.
func (sess *Session) ResetViewport() graph.Transform {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.canvas.Viewport.Reset()
	return sess.canvas.Viewport.Transform()
}

// PointerDown starts a drag on target, or a pan when target is empty.
func (sess *Session) PointerDown(target string, p models.Position) error {
	sess.mu.Lock()
	err := sess.canvas.PointerDown(target, p)
	kind := sess.canvas.ActiveGesture()
	sess.mu.Unlock()
	if err == nil && sess.svc.metrics != nil {
		sess.svc.metrics.RecordGesture(string(kind))
	}
	return err
}

// PointerMove feeds a pointer position into the active gesture.
func (sess *Session) PointerMove(p models.Position) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.canvas.PointerMove(p)
}

// PointerUp ends the active gesture.
func (sess *Session) PointerUp(p models.Position) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.canvas.PointerUp(p)
}

// Export renders the whole diagram in the text format, ignoring filters.
func (sess *Session) Export() string {
	sess.mu.Lock()
	out := diagram.Export(sess.canvas.Model)
	sess.mu.Unlock()
	if sess.svc.metrics != nil {
		sess.svc.metrics.ExportsTotal.Inc()
	}
	return out
}

// Title returns the diagram title.
func (sess *Session) Title() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.canvas.Model.Title()
}

// Snapshot returns the current graph, including dragged positions.
func (sess *Session) Snapshot() models.Snapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.canvas.Model.Snapshot()
}

// Save writes the session's current graph to path, in the format implied
// by its extension, and catalogues it. An empty path saves back to the file
// the session was opened from.
func (sess *Session) Save(ctx context.Context, path string) (*DiagramDetail, error) {
	sess.mu.Lock()
	if path == "" {
		path = sess.Path
	}
	sess.mu.Unlock()
	if path == "" {
		return nil, fmt.Errorf("viewer: session %s has no file to save to: %w", sess.ID, apperr.ErrInvalid)
	}
	data, err := source.Encode(path, sess.Snapshot())
	if err != nil {
		return nil, err
	}
	detail, err := sess.svc.writeDiagram(ctx, path, data)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	sess.Path = path
	sess.mu.Unlock()
	return detail, nil
}
