package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/archview/internal/apperr"
	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/checksum"
	"github.com/starford/archview/internal/diagram"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
	"github.com/starford/archview/internal/source"
)

// DiagramDetail is a stored diagram decoded into its snapshot.
type DiagramDetail struct {
	Path        string            `json:"path"`
	Checksum    string            `json:"checksum"`
	Snapshot    models.Snapshot   `json:"snapshot"`
	Diagnostics graph.Diagnostics `json:"diagnostics"`
}

// ImportResult is the outcome of importing diagram text.
type ImportResult struct {
	Path        string            `json:"path,omitempty"`
	Snapshot    models.Snapshot   `json:"snapshot"`
	Diagnostics graph.Diagnostics `json:"diagnostics"`
}

// LoadModel reads and decodes a stored diagram.
func (s *Service) LoadModel(_ context.Context, path string) (*graph.Model, graph.Diagnostics, []byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, nil, nil, err
	}
	m, diags, err := source.Decode(path, data)
	if err != nil {
		return nil, nil, nil, err
	}
	return m, diags, data, nil
}

// GetDiagram returns a stored diagram with its load diagnostics.
func (s *Service) GetDiagram(ctx context.Context, path string) (*DiagramDetail, error) {
	m, diags, data, err := s.LoadModel(ctx, path)
	if err != nil {
		return nil, err
	}
	return &DiagramDetail{
		Path:        path,
		Checksum:    checksum.Sum(data),
		Snapshot:    m.Snapshot(),
		Diagnostics: nonNilDiagnostics(diags),
	}, nil
}

// CreateDiagram stores a new diagram file and catalogues it. Content that
// cannot be decoded is rejected before anything is written.
func (s *Service) CreateDiagram(ctx context.Context, path string, content []byte) (*DiagramDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.writeDiagram(ctx, path, content)
}

// UpdateDiagram replaces a stored diagram. A non-empty ifMatch must accept
// the current content (see checksum.Matches).
func (s *Service) UpdateDiagram(ctx context.Context, path string, content []byte, ifMatch string) (*DiagramDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(ifMatch, existing) {
		return nil, apperr.ErrConflict
	}
	return s.writeDiagram(ctx, path, content)
}

func (s *Service) writeDiagram(ctx context.Context, path string, content []byte) (*DiagramDetail, error) {
	if _, _, err := source.Decode(path, content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.index(path, content); err != nil {
		return nil, fmt.Errorf("viewer: catalogue %s: %w", path, err)
	}
	return s.GetDiagram(ctx, path)
}

// DeleteDiagram removes a diagram from storage and catalog.
func (s *Service) DeleteDiagram(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDiagram(path)
}

// ListDiagrams returns a page of catalogued diagrams.
func (s *Service) ListDiagrams(_ context.Context, limit, offset int, sort string) ([]catalog.DiagramRow, int, error) {
	return s.db.ListDiagrams(limit, offset, sort)
}

// SearchNodes searches node ids, labels and maintainers across the library.
func (s *Service) SearchNodes(_ context.Context, query, nodeType string, limit int) ([]catalog.NodeHit, error) {
	if nodeType != "" && !models.NodeType(nodeType).Valid() {
		return nil, fmt.Errorf("viewer: unknown node type %q: %w", nodeType, apperr.ErrInvalid)
	}
	return s.db.SearchNodes(query, nodeType, limit)
}

// Import parses diagram text. With a non-empty path the text is also stored
// as a new .arch diagram.
func (s *Service) Import(ctx context.Context, path, text string) (*ImportResult, error) {
	m, diags := diagram.Import(text)
	s.recordDiagnostics(diags)
	res := &ImportResult{Snapshot: m.Snapshot(), Diagnostics: nonNilDiagnostics(diags)}
	if path == "" {
		return res, nil
	}
	if f, err := source.FormatOf(path); err != nil || f != source.FormatText {
		return nil, fmt.Errorf("viewer: import target %q must be a .arch file: %w", path, apperr.ErrInvalid)
	}
	if _, err := s.CreateDiagram(ctx, path, []byte(text)); err != nil {
		return nil, err
	}
	res.Path = path
	return res, nil
}

// ExportDiagram renders a stored diagram in the text format.
func (s *Service) ExportDiagram(ctx context.Context, path string) (string, error) {
	m, diags, _, err := s.LoadModel(ctx, path)
	if err != nil {
		return "", err
	}
	s.recordDiagnostics(diags)
	if s.metrics != nil {
		s.metrics.ExportsTotal.Inc()
	}
	return diagram.Export(m), nil
}

func nonNilDiagnostics(d graph.Diagnostics) graph.Diagnostics {
	if d == nil {
		return graph.Diagnostics{}
	}
	return d
}
