// Package testutil provides shared test helpers for diagram libraries and catalogs.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/storage"
)

// ShopDiagram is a small three-tier diagram in the text format.
const ShopDiagram = `# shop
node web "Web" frontend
node api "API" gateway
node orders "Orders" service
node db "Orders DB" database
node mq "Events" worker
edge web --> api : HTTPS
edge api --> orders : REST
edge orders --> db : SQL
edge orders --> mq : publish [async]
`

// TestDB creates a temporary catalog database that is closed on cleanup.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "archview-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary diagrams directory with a storage.Provider.
func TestLibrary(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteDiagrams stores each path/content pair in store.
func WriteDiagrams(t *testing.T, store storage.Provider, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := store.Write(path, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
