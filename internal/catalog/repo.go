package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/archview/internal/apperr"
)

// DiagramRow represents a row in the diagrams table.
type DiagramRow struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Checksum    string    `json:"checksum"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
	Diagnostics int       `json:"diagnostics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NodeRow represents a node indexed under a diagram.
type NodeRow struct {
	ID         string
	Label      string
	Type       string
	Maintainer string
	Health     string
}

// NodeHit is one node search result.
type NodeHit struct {
	Diagram string `json:"diagram"`
	Title   string `json:"title"`
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Health  string `json:"health"`
}

// UpsertDiagram inserts or replaces a diagram and its nodes within a transaction.
func (db *DB) UpsertDiagram(d DiagramRow, nodes []NodeRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO diagrams (path, title, checksum, node_count, edge_count, diagnostics, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			node_count  = excluded.node_count,
			edge_count  = excluded.edge_count,
			diagnostics = excluded.diagnostics,
			updated_at  = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, d.NodeCount, d.EdgeCount, d.Diagnostics, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert diagram: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM diagram_nodes WHERE diagram = ?`, d.Path); err != nil {
		return fmt.Errorf("catalog: clear nodes: %w", err)
	}
	if len(nodes) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO diagram_nodes (diagram, id, label, type, maintainer, health)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare node insert: %w", err)
		}
		defer stmt.Close()
		for _, n := range nodes {
			if _, err := stmt.Exec(d.Path, n.ID, n.Label, n.Type, n.Maintainer, n.Health); err != nil {
				return fmt.Errorf("catalog: insert node: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDiagram removes a diagram and its nodes.
func (db *DB) DeleteDiagram(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM diagram_nodes WHERE diagram = ?`, path)
	_, _ = tx.Exec(`DELETE FROM diagrams WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a diagram, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM diagrams WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path to checksum for every catalogued diagram.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM diagrams`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetDiagram returns the catalog row for path.
func (db *DB) GetDiagram(path string) (*DiagramRow, error) {
	var d DiagramRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, node_count, edge_count, diagnostics, updated_at
		FROM diagrams WHERE path = ?`, path).
		Scan(&d.Path, &d.Title, &d.Checksum, &d.NodeCount, &d.EdgeCount, &d.Diagnostics, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: diagram %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get diagram: %w", err)
	}
	return &d, nil
}

var sortColumns = map[string]string{
	"":        "path ASC",
	"path":    "path ASC",
	"title":   "title ASC, path ASC",
	"updated": "updated_at DESC, path ASC",
	"size":    "node_count DESC, path ASC",
}

// ListDiagrams returns a page of diagrams and the total count.
// sort is one of "path", "title", "updated" or "size".
func (db *DB) ListDiagrams(limit, offset int, sort string) ([]DiagramRow, int, error) {
	order, ok := sortColumns[sort]
	if !ok {
		return nil, 0, fmt.Errorf("catalog: unknown sort %q: %w", sort, apperr.ErrInvalid)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM diagrams`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count diagrams: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, node_count, edge_count, diagnostics, updated_at
		FROM diagrams ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list diagrams: %w", err)
	}
	defer rows.Close()

	out := []DiagramRow{}
	for rows.Next() {
		var d DiagramRow
		if err := rows.Scan(&d.Path, &d.Title, &d.Checksum, &d.NodeCount, &d.EdgeCount, &d.Diagnostics, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// SearchNodes finds nodes whose id, label or maintainer contains query,
// optionally restricted to one node type.
func (db *DB) SearchNodes(query string, nodeType string, limit int) ([]NodeHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.Query(`
		SELECT n.diagram, d.title, n.id, n.label, n.type, n.health
		FROM diagram_nodes n JOIN diagrams d ON d.path = n.diagram
		WHERE (n.id LIKE ? ESCAPE '\' OR n.label LIKE ? ESCAPE '\' OR n.maintainer LIKE ? ESCAPE '\')
		  AND (? = '' OR n.type = ?)
		ORDER BY n.diagram, n.id
		LIMIT ?
	`, like, like, like, nodeType, nodeType, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search nodes: %w", err)
	}
	defer rows.Close()

	out := []NodeHit{}
	for rows.Next() {
		var h NodeHit
		if err := rows.Scan(&h.Diagram, &h.Title, &h.ID, &h.Label, &h.Type, &h.Health); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
