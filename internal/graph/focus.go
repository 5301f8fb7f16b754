package graph

// Emphasis is how strongly an element renders under the current selection.
type Emphasis string

// Emphasis levels.
const (
	EmphasisFull   Emphasis = "full"
	EmphasisDimmed Emphasis = "dimmed"
)

// Focus is the emphasis of every node and edge for one selection.
type Focus struct {
	Selection string
	Nodes     map[string]Emphasis
	Edges     map[string]Emphasis
}

// Highlight derives the focus partition from the model's selection. With no
// selection everything is at full emphasis. Otherwise the selected node, its
// relevant edges, and their endpoints are full and the rest is dimmed.
func Highlight(m *Model) Focus {
	f := Focus{
		Selection: m.selection,
		Nodes:     make(map[string]Emphasis, len(m.nodeOrder)),
		Edges:     make(map[string]Emphasis, len(m.edgeOrder)),
	}
	if m.selection == "" {
		for _, id := range m.nodeOrder {
			f.Nodes[id] = EmphasisFull
		}
		for _, id := range m.edgeOrder {
			f.Edges[id] = EmphasisFull
		}
		return f
	}

	for _, id := range m.nodeOrder {
		f.Nodes[id] = EmphasisDimmed
	}
	for _, id := range m.edgeOrder {
		f.Edges[id] = EmphasisDimmed
	}
	f.Nodes[m.selection] = EmphasisFull
	for _, e := range m.RelevantEdges(m.selection) {
		f.Edges[e.ID] = EmphasisFull
		f.Nodes[e.Source] = EmphasisFull
		f.Nodes[e.Target] = EmphasisFull
	}
	return f
}

// NodeEmphasized reports whether node id renders at full emphasis.
func (f Focus) NodeEmphasized(id string) bool { return f.Nodes[id] == EmphasisFull }

// EdgeEmphasized reports whether edge id renders at full emphasis.
func (f Focus) EdgeEmphasized(id string) bool { return f.Edges[id] == EmphasisFull }
