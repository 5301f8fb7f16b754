package catalog

// Catalog is the read/write surface of the diagram catalog.
// Consumers depend on it rather than on *DB so they can be tested with fakes.
type Catalog interface {
	UpsertDiagram(d DiagramRow, nodes []NodeRow) error
	DeleteDiagram(path string) error
	GetChecksum(path string) (string, error)
	GetDiagram(path string) (*DiagramRow, error)
	ListDiagrams(limit, offset int, sort string) ([]DiagramRow, int, error)
	SearchNodes(query string, nodeType string, limit int) ([]NodeHit, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ Catalog = (*DB)(nil)
