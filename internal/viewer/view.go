package viewer

import (
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
)

// NodeView is a node as the canvas renders it.
type NodeView struct {
	models.Node
	Style       graph.NodeStyle `json:"style"`
	HealthColor string          `json:"health_color"`
	Visible     bool            `json:"visible"`
	Emphasis    graph.Emphasis  `json:"emphasis"`
	Selected    bool            `json:"selected"`
}

// EdgeView is an edge with its routed path.
type EdgeView struct {
	models.Edge
	Route    graph.EdgePath `json:"route"`
	Path     string         `json:"path"`
	Visible  bool           `json:"visible"`
	Emphasis graph.Emphasis `json:"emphasis"`
}

// View is everything a renderer needs to draw one session.
type View struct {
	Session   string                  `json:"session"`
	Path      string                  `json:"path,omitempty"`
	Title     string                  `json:"title"`
	Viewport  graph.Transform         `json:"viewport"`
	Gesture   graph.GestureKind       `json:"gesture,omitempty"`
	Selection string                  `json:"selection,omitempty"`
	Filters   map[graph.Category]bool `json:"filters"`
	Box       graph.Box               `json:"box"`
	Nodes     []NodeView              `json:"nodes"`
	Edges     []EdgeView              `json:"edges"`
}

// NodeDetail is the inspector payload for one node.
type NodeDetail struct {
	Node        models.Node     `json:"node"`
	Style       graph.NodeStyle `json:"style"`
	HealthColor string          `json:"health_color"`
	Incoming    []models.Edge   `json:"incoming"`
	Outgoing    []models.Edge   `json:"outgoing"`
}

// View derives the render state of the session.
func (sess *Session) View() View {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	m := sess.canvas.Model
	vis := graph.VisibleSet(m)
	focus := graph.Highlight(m)
	box := sess.svc.box

	v := View{
		Session:   sess.ID,
		Path:      sess.Path,
		Title:     m.Title(),
		Viewport:  sess.canvas.Viewport.Transform(),
		Gesture:   sess.canvas.ActiveGesture(),
		Selection: m.Selection(),
		Filters:   make(map[graph.Category]bool, len(graph.Categories)),
		Box:       box,
		Nodes:     make([]NodeView, 0, m.NodeCount()),
		Edges:     make([]EdgeView, 0, m.EdgeCount()),
	}
	for _, c := range graph.Categories {
		v.Filters[c] = m.Filter(c)
	}
	for _, n := range m.Nodes() {
		v.Nodes = append(v.Nodes, NodeView{
			Node:        n,
			Style:       graph.StyleOf(n.Type),
			HealthColor: graph.HealthColor(n.Metadata.Health),
			Visible:     vis.Nodes[n.ID],
			Emphasis:    focus.Nodes[n.ID],
			Selected:    n.ID == v.Selection,
		})
	}
	for _, route := range graph.Route(m, box) {
		e, _ := m.Edge(route.EdgeID)
		v.Edges = append(v.Edges, EdgeView{
			Edge:     e,
			Route:    route,
			Path:     route.SVG(),
			Visible:  vis.Edges[e.ID],
			Emphasis: focus.Edges[e.ID],
		})
	}
	return v
}

// Node returns the inspector payload for id.
func (sess *Session) Node(id string) (NodeDetail, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return describe(sess.canvas.Model, id)
}

// DescribeNode builds the inspector payload for id in m.
func DescribeNode(m *graph.Model, id string) (NodeDetail, error) {
	return describe(m, id)
}

func describe(m *graph.Model, id string) (NodeDetail, error) {
	n, ok := m.Node(id)
	if !ok {
		return NodeDetail{}, graph.ErrUnknownNode
	}
	d := NodeDetail{
		Node:        n,
		Style:       graph.StyleOf(n.Type),
		HealthColor: graph.HealthColor(n.Metadata.Health),
		Incoming:    []models.Edge{},
		Outgoing:    []models.Edge{},
	}
	for _, e := range m.RelevantEdges(id) {
		if e.Source == id {
			d.Outgoing = append(d.Outgoing, e)
		}
		if e.Target == id {
			d.Incoming = append(d.Incoming, e)
		}
	}
	return d, nil
}
