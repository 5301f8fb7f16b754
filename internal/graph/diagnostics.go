package graph

import (
	"errors"
	"fmt"
)

// DiagnosticKind classifies a recoverable input problem.
type DiagnosticKind string

// Diagnostic kinds. None of them abort a load, parse, or gesture.
const (
	DanglingEdgeReference DiagnosticKind = "dangling_edge_reference"
	InvalidZoomDelta      DiagnosticKind = "invalid_zoom_delta"
	DuplicateID           DiagnosticKind = "duplicate_id"
	MalformedDiagramLine  DiagnosticKind = "malformed_diagram_line"
	InvalidNode           DiagnosticKind = "invalid_node"
	InvalidEdge           DiagnosticKind = "invalid_edge"
)

// Diagnostic records one dropped or adjusted input item.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line,omitempty"`
	Ref     string         `json:"ref,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", d.Kind, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Count returns how many diagnostics have the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Err joins all diagnostics into one error, or returns nil when empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = errors.New(d.String())
	}
	return errors.Join(errs...)
}

func (ds *Diagnostics) add(kind DiagnosticKind, ref, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Kind: kind, Ref: ref, Message: fmt.Sprintf(format, args...)})
}
