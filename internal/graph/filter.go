package graph

import "github.com/starford/archview/internal/models"

// IsNodeVisible reports whether n's category is switched on.
func IsNodeVisible(m *Model, n models.Node) bool {
	return m.Filter(CategoryOf(n.Type))
}

// IsEdgeVisible reports whether both endpoints of e are visible. Edge
// visibility is always derived, never stored.
func IsEdgeVisible(m *Model, e models.Edge) bool {
	s, ok := m.nodes[e.Source]
	if !ok {
		return false
	}
	t, ok := m.nodes[e.Target]
	if !ok {
		return false
	}
	return IsNodeVisible(m, *s) && IsNodeVisible(m, *t)
}

// Visibility is the visible/hidden partition of a model.
type Visibility struct {
	Nodes map[string]bool
	Edges map[string]bool
}

// VisibleSet derives the visibility of every node and edge.
func VisibleSet(m *Model) Visibility {
	v := Visibility{
		Nodes: make(map[string]bool, len(m.nodeOrder)),
		Edges: make(map[string]bool, len(m.edgeOrder)),
	}
	for _, id := range m.nodeOrder {
		v.Nodes[id] = IsNodeVisible(m, *m.nodes[id])
	}
	for _, id := range m.edgeOrder {
		e := m.edges[id]
		v.Edges[id] = v.Nodes[e.Source] && v.Nodes[e.Target]
	}
	return v
}
