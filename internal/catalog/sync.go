package catalog

import (
	"log/slog"
	"time"

	"github.com/starford/archview/internal/checksum"
	"github.com/starford/archview/internal/source"
	"github.com/starford/archview/internal/storage"
)

// Sync walks the library and brings the catalog up to date:
//   - new/changed files are decoded and upserted
//   - files removed from disk are deleted from the catalog
func Sync(db Catalog, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDiagram(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// Index decodes data and upserts it, for callers that just wrote a file.
func Index(db Catalog, path string, data []byte) error {
	return indexFile(db, path, data, time.Now().UTC())
}

// indexFile decodes data and upserts it into the DB. Diagrams that decode
// with diagnostics are still catalogued; the count is recorded.
func indexFile(db Catalog, path string, data []byte, updated time.Time) error {
	m, diags, err := source.Decode(path, data)
	if err != nil {
		return err
	}

	nodes := make([]NodeRow, 0, m.NodeCount())
	for _, n := range m.Nodes() {
		nodes = append(nodes, NodeRow{
			ID:         n.ID,
			Label:      n.Label,
			Type:       string(n.Type),
			Maintainer: n.Metadata.Maintainer,
			Health:     string(n.Metadata.Health),
		})
	}
	row := DiagramRow{
		Path:        path,
		Title:       m.Title(),
		Checksum:    checksum.Sum(data),
		NodeCount:   m.NodeCount(),
		EdgeCount:   m.EdgeCount(),
		Diagnostics: len(diags),
		UpdatedAt:   updated,
	}
	return db.UpsertDiagram(row, nodes)
}
