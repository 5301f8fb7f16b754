// Package viewer coordinates the diagram library, its catalog and the live
// viewer sessions built on top of them.
package viewer

import (
	"log/slog"
	"sync"

	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/metrics"
	"github.com/starford/archview/internal/storage"
)

// Publisher receives session events for delivery to clients.
type Publisher interface {
	PublishSelection(session, nodeID string)
	PublishSessionClosed(session string)
}

// Service coordinates storage, catalog and sessions.
type Service struct {
	store   storage.Provider
	db      catalog.Catalog
	index   func(path string, data []byte) error
	box     graph.Box
	events  Publisher
	metrics *metrics.Registry
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the session event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics records session activity on reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// WithNodeBox sets the node box used for edge routing.
func WithNodeBox(box graph.Box) Option {
	return func(s *Service) {
		if box.Width > 0 && box.Height > 0 {
			s.box = box
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIndexer replaces the function used to catalogue written files.
func WithIndexer(fn func(path string, data []byte) error) Option {
	return func(s *Service) { s.index = fn }
}

// NewService creates a viewer service over store and its catalog db.
func NewService(store storage.Provider, db catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		store:    store,
		db:       db,
		box:      graph.DefaultBox,
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	s.index = func(path string, data []byte) error { return catalog.Index(db, path, data) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NodeBox returns the node box used for routing.
func (s *Service) NodeBox() graph.Box { return s.box }

func (s *Service) recordDiagnostics(diags graph.Diagnostics) {
	for _, d := range diags {
		s.logger.Debug("diagnostic", slog.String("kind", string(d.Kind)), slog.String("message", d.String()))
		if s.metrics != nil {
			s.metrics.RecordDiagnostic(string(d.Kind))
		}
	}
}
