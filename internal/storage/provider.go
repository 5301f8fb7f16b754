// Package storage defines the diagram library file-system abstraction.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/archview/internal/models"
)

// Extensions lists the file extensions recognised as diagram files.
var Extensions = []string{".arch", ".json", ".yaml", ".yml"}

// IsDiagramFile reports whether name carries a diagram extension.
func IsDiagramFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Provider is the interface for diagram library file operations.
type Provider interface {
	// List returns metadata for every diagram file under dir (relative to the library root).
	List(dir string) ([]models.DiagramMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
