package graph

import (
	"testing"

	"github.com/starford/archview/internal/models"
)

func TestFilter_DisablingDatabases(t *testing.T) {
	m := loadABC(t)
	if err := m.SetFilter(CategoryDatabases, false); err != nil {
		t.Fatal(err)
	}
	v := VisibleSet(m)
	want := map[string]bool{"A": true, "B": true, "C": false}
	for id, vis := range want {
		if v.Nodes[id] != vis {
			t.Errorf("node %s visible = %v, want %v", id, v.Nodes[id], vis)
		}
	}
	if !v.Edges["e1"] || v.Edges["e2"] {
		t.Errorf("edges = %v, want e1 only", v.Edges)
	}

	e2, _ := m.Edge("e2")
	if IsEdgeVisible(m, e2) {
		t.Error("IsEdgeVisible(e2) should be false")
	}
}

func TestFilter_ToggleRestores(t *testing.T) {
	m := loadABC(t)
	before := VisibleSet(m)
	_ = m.SetFilter(CategoryGateways, false)
	_ = m.SetFilter(CategoryGateways, false)
	mid := VisibleSet(m)
	if mid.Nodes["A"] || mid.Edges["e1"] {
		t.Errorf("gateway hidden state wrong: %+v", mid)
	}
	_ = m.SetFilter(CategoryGateways, true)
	after := VisibleSet(m)
	for id, vis := range before.Nodes {
		if after.Nodes[id] != vis {
			t.Errorf("node %s not restored", id)
		}
	}
	for id, vis := range before.Edges {
		if after.Edges[id] != vis {
			t.Errorf("edge %s not restored", id)
		}
	}
}

func TestCategoryTable_CoversEveryType(t *testing.T) {
	seen := map[Category]bool{}
	for _, nt := range models.NodeTypes {
		c := CategoryOf(nt)
		if !c.Valid() {
			t.Errorf("type %s maps to invalid category %q", nt, c)
		}
		seen[c] = true
	}
	if len(seen) != len(Categories) {
		t.Errorf("categories used = %d, declared = %d", len(seen), len(Categories))
	}
	if CategoryOf(models.NodeWorker) != CategoryUtils {
		t.Errorf("worker should be a util")
	}
}
