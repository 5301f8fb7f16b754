// Package graph holds the interactive diagram core: the node/edge model with
// selection and filters, the viewport and drag controllers, and the pure
// derivations a renderer reads (edge routes, visibility, focus emphasis).
//
// Nothing here is safe for concurrent use. Callers serialize access so that
// at most one controller writes the model at a time.
package graph

import (
	"sort"

	"github.com/starford/archview/internal/models"
)

// Model owns nodes, edges, selection and filter state.
type Model struct {
	title     string
	nodes     map[string]*models.Node
	nodeOrder []string
	edges     map[string]*models.Edge
	edgeOrder []string

	selection string
	filters   map[Category]bool

	listeners    map[int]func(string)
	nextListener int
}

func newModel(title string) *Model {
	return &Model{
		title:     title,
		nodes:     make(map[string]*models.Node),
		edges:     make(map[string]*models.Edge),
		filters:   make(map[Category]bool),
		listeners: make(map[int]func(string)),
	}
}

// Title returns the diagram title from the snapshot, if any.
func (m *Model) Title() string { return m.title }

// Node returns a copy of the node with the given id.
func (m *Model) Node(id string) (models.Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return models.Node{}, false
	}
	return cloneNode(*n), true
}

// Nodes returns copies of all nodes in load order.
func (m *Model) Nodes() []models.Node {
	out := make([]models.Node, 0, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		out = append(out, cloneNode(*m.nodes[id]))
	}
	return out
}

// Edge returns a copy of the edge with the given id.
func (m *Model) Edge(id string) (models.Edge, bool) {
	e, ok := m.edges[id]
	if !ok {
		return models.Edge{}, false
	}
	return *e, true
}

// Edges returns copies of all edges in load order.
func (m *Model) Edges() []models.Edge {
	out := make([]models.Edge, 0, len(m.edgeOrder))
	for _, id := range m.edgeOrder {
		out = append(out, *m.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodeOrder) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edgeOrder) }

// RelevantEdges returns every edge that starts or ends at id.
func (m *Model) RelevantEdges(id string) []models.Edge {
	var out []models.Edge
	for _, eid := range m.edgeOrder {
		e := m.edges[eid]
		if e.Source == id || e.Target == id {
			out = append(out, *e)
		}
	}
	return out
}

// Selection returns the selected node id, or "" when nothing is selected.
func (m *Model) Selection() string { return m.selection }

// Select sets the selection. An empty id clears it. Unknown ids are rejected
// and leave the selection unchanged.
func (m *Model) Select(id string) error {
	if id != "" {
		if _, ok := m.nodes[id]; !ok {
			return ErrUnknownNode
		}
	}
	if id == m.selection {
		return nil
	}
	m.selection = id
	for _, k := range m.listenerKeys() {
		if fn, ok := m.listeners[k]; ok {
			fn(id)
		}
	}
	return nil
}

// OnNodeSelected registers fn to run whenever the selection changes. fn
// receives "" when the selection is cleared. The returned func deregisters it.
func (m *Model) OnNodeSelected(fn func(id string)) (cancel func()) {
	k := m.nextListener
	m.nextListener++
	m.listeners[k] = fn
	return func() { delete(m.listeners, k) }
}

func (m *Model) listenerKeys() []int {
	keys := make([]int, 0, len(m.listeners))
	for k := range m.listeners {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// SetFilter shows or hides every node type that belongs to category.
func (m *Model) SetFilter(category Category, visible bool) error {
	if !category.Valid() {
		return ErrUnknownCategory
	}
	if visible {
		delete(m.filters, category)
	} else {
		m.filters[category] = false
	}
	return nil
}

// Filter reports whether category is currently visible.
func (m *Model) Filter(category Category) bool {
	v, ok := m.filters[category]
	return !ok || v
}

// Filters returns the visibility of every category.
func (m *Model) Filters() map[Category]bool {
	out := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		out[c] = m.Filter(c)
	}
	return out
}

// Snapshot copies the current graph, including dragged positions.
func (m *Model) Snapshot() models.Snapshot {
	return models.Snapshot{Title: m.title, Nodes: m.Nodes(), Edges: m.Edges()}
}

// setPosition is the drag commit. No other code path writes positions.
func (m *Model) setPosition(id string, p models.Position) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	n.Position = p
	return true
}

func cloneNode(n models.Node) models.Node {
	if n.Metadata.InternalModules != nil {
		n.Metadata.InternalModules = append([]string(nil), n.Metadata.InternalModules...)
	}
	if n.Metadata.UptimePercent != nil {
		v := *n.Metadata.UptimePercent
		n.Metadata.UptimePercent = &v
	}
	return n
}
