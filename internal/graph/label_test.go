package graph

import (
	"testing"

	"github.com/starford/archview/internal/models"
)

func TestCanonicalEdgeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		typ   models.EdgeType
		want  string
	}{
		{"plain", "REST", models.EdgeSync, "REST"},
		{"padded", " padded ", models.EdgeSync, "padded"},
		{"line breaks", "multi\r\nline\nlabel", models.EdgeSync, "multi line label"},
		{"bare marker on sync", "[async]", models.EdgeSync, ""},
		{"trailing marker on sync", "queue [async]", models.EdgeSync, "queue"},
		{"repeated markers on sync", "queue [async]\t[async] ", models.EdgeSync, "queue"},
		{"form feed before marker", "queue\f[async]", models.EdgeSync, "queue"},
		{"glued marker kept", "queue[async]", models.EdgeSync, "queue[async]"},
		{"marker kept on async", "queue [async]", models.EdgeAsync, "queue [async]"},
		{"empty", "", models.EdgeSync, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalEdgeLabel(tt.label, tt.typ)
			if got != tt.want {
				t.Errorf("CanonicalEdgeLabel(%q, %s) = %q, want %q", tt.label, tt.typ, got, tt.want)
			}
			if again := CanonicalEdgeLabel(got, tt.typ); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestLoad_RewritesUnwritableEdgeLabels(t *testing.T) {
	m, diags := Load(models.Snapshot{
		Nodes: []models.Node{
			{ID: "a", Type: models.NodeService},
			{ID: "b", Type: models.NodeWorker},
		},
		Edges: []models.Edge{
			{ID: "e1", Source: "a", Target: "b", Type: models.EdgeSync, Label: "x [async]"},
			{ID: "e2", Source: "a", Target: "b", Type: models.EdgeSync, Label: " padded "},
			{ID: "e3", Source: "a", Target: "b", Type: models.EdgeAsync, Label: "x [async]"},
		},
	})
	if diags.Count(InvalidEdge) != 2 || len(diags) != 2 {
		t.Fatalf("diags = %v", diags)
	}
	if m.EdgeCount() != 3 {
		t.Fatalf("edges should be kept, got %d", m.EdgeCount())
	}
	want := map[string]string{"e1": "x", "e2": "padded", "e3": "x [async]"}
	for id, label := range want {
		e, _ := m.Edge(id)
		if e.Label != label {
			t.Errorf("%s label = %q, want %q", id, e.Label, label)
		}
	}
	if e, _ := m.Edge("e1"); e.Type != models.EdgeSync {
		t.Errorf("e1 type changed to %s", e.Type)
	}
}

func TestLoad_RejectsAnyWhitespaceInNodeID(t *testing.T) {
	for _, id := range []string{"a b", "a\tb", "a\fb", "a\vb", "a\u00a0b", "a\u2028b"} {
		m, diags := Load(models.Snapshot{
			Nodes: []models.Node{{ID: id, Type: models.NodeService}},
		})
		if m.NodeCount() != 0 || diags.Count(InvalidNode) != 1 {
			t.Errorf("id %q: nodes = %d, diags = %v", id, m.NodeCount(), diags)
		}
	}
}
