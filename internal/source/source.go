// Package source decodes stored diagram files into graph models.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/archview/internal/apperr"
	"github.com/starford/archview/internal/diagram"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
)

// Format identifies the encoding of a diagram file.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".arch":
		return FormatText, nil
	}
	return "", fmt.Errorf("source: unsupported diagram file %q: %w", path, apperr.ErrInvalid)
}

// DecodeSnapshot decodes data in the format implied by path. Text files
// never fail to decode; their line diagnostics are returned instead.
// A missing title falls back to the file's base name.
func DecodeSnapshot(path string, data []byte) (models.Snapshot, graph.Diagnostics, error) {
	format, err := FormatOf(path)
	if err != nil {
		return models.Snapshot{}, nil, err
	}

	var (
		snap  models.Snapshot
		diags graph.Diagnostics
	)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return models.Snapshot{}, nil, fmt.Errorf("source: decode %s: %v: %w", path, err, apperr.ErrInvalid)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
			return models.Snapshot{}, nil, fmt.Errorf("source: decode %s: %v: %w", path, err, apperr.ErrInvalid)
		}
	case FormatText:
		snap, diags = diagram.Parse(string(data))
	}

	if snap.Title == "" {
		base := filepath.Base(path)
		snap.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return snap, diags, nil
}

// Decode decodes data and loads it into a model. Structural problems in the
// data are reported as diagnostics; only undecodable input is an error.
func Decode(path string, data []byte) (*graph.Model, graph.Diagnostics, error) {
	snap, diags, err := DecodeSnapshot(path, data)
	if err != nil {
		return nil, nil, err
	}
	m, loadDiags := graph.Load(snap)
	return m, append(diags, loadDiags...), nil
}

// Encode serialises a snapshot in the format implied by path.
func Encode(path string, snap models.Snapshot) ([]byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case FormatYAML:
		return yaml.Marshal(snap)
	default:
		return []byte(diagram.ExportSnapshot(snap)), nil
	}
}
