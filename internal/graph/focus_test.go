package graph

import "testing"

func TestHighlight_NoSelection(t *testing.T) {
	f := Highlight(loadABC(t))
	for id, e := range f.Nodes {
		if e != EmphasisFull {
			t.Errorf("node %s = %s", id, e)
		}
	}
	for id, e := range f.Edges {
		if e != EmphasisFull {
			t.Errorf("edge %s = %s", id, e)
		}
	}
}

func TestHighlight_SelectedLeaf(t *testing.T) {
	m := loadABC(t)
	_ = m.Select("A")
	f := Highlight(m)
	if !f.NodeEmphasized("A") || !f.NodeEmphasized("B") || f.NodeEmphasized("C") {
		t.Errorf("nodes = %v", f.Nodes)
	}
	if !f.EdgeEmphasized("e1") || f.EdgeEmphasized("e2") {
		t.Errorf("edges = %v", f.Edges)
	}
}

func TestHighlight_SelectedHub(t *testing.T) {
	m := loadABC(t)
	_ = m.Select("B")
	f := Highlight(m)
	for _, id := range []string{"A", "B", "C"} {
		if !f.NodeEmphasized(id) {
			t.Errorf("node %s should be emphasized", id)
		}
	}
	if !f.EdgeEmphasized("e1") || !f.EdgeEmphasized("e2") {
		t.Errorf("edges = %v", f.Edges)
	}
}
