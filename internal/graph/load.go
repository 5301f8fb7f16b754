package graph

import (
	"strings"
	"unicode"

	"github.com/starford/archview/internal/models"
)

// Load builds a model from a snapshot. Invalid, duplicate, and dangling items
// are dropped and reported; Load never fails.
func Load(snap models.Snapshot) (*Model, Diagnostics) {
	m := newModel(snap.Title)
	var diags Diagnostics

	for _, n := range snap.Nodes {
		switch {
		case n.ID == "":
			diags.add(InvalidNode, "", "node %q has an empty id", n.Label)
			continue
		case strings.IndexFunc(n.ID, unicode.IsSpace) >= 0:
			diags.add(InvalidNode, n.ID, "node id %q contains whitespace", n.ID)
			continue
		case !n.Type.Valid():
			diags.add(InvalidNode, n.ID, "node %s has unknown type %q", n.ID, n.Type)
			continue
		}
		if n.Metadata.Health == "" {
			n.Metadata.Health = models.HealthHealthy
		}
		if !n.Metadata.Health.Valid() {
			diags.add(InvalidNode, n.ID, "node %s has unknown health %q", n.ID, n.Metadata.Health)
			continue
		}
		if _, dup := m.nodes[n.ID]; dup {
			diags.add(DuplicateID, n.ID, "duplicate node id %s", n.ID)
			continue
		}
		c := cloneNode(n)
		m.nodes[n.ID] = &c
		m.nodeOrder = append(m.nodeOrder, n.ID)
	}

	for _, e := range snap.Edges {
		if e.ID == "" {
			diags.add(InvalidEdge, "", "edge %s -> %s has an empty id", e.Source, e.Target)
			continue
		}
		if e.Type == "" {
			e.Type = models.EdgeSync
		}
		if !e.Type.Valid() {
			diags.add(InvalidEdge, e.ID, "edge %s has unknown type %q", e.ID, e.Type)
			continue
		}
		if l := CanonicalEdgeLabel(e.Label, e.Type); l != e.Label {
			diags.add(InvalidEdge, e.ID, "edge %s label %q cannot be written as diagram text; using %q", e.ID, e.Label, l)
			e.Label = l
		}
		if _, dup := m.edges[e.ID]; dup {
			diags.add(DuplicateID, e.ID, "duplicate edge id %s", e.ID)
			continue
		}
		if _, ok := m.nodes[e.Source]; !ok {
			diags.add(DanglingEdgeReference, e.ID, "edge %s references missing source %s", e.ID, e.Source)
			continue
		}
		if _, ok := m.nodes[e.Target]; !ok {
			diags.add(DanglingEdgeReference, e.ID, "edge %s references missing target %s", e.ID, e.Target)
			continue
		}
		c := e
		m.edges[e.ID] = &c
		m.edgeOrder = append(m.edgeOrder, e.ID)
	}

	return m, diags
}
