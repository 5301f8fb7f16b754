package graph

import (
	"math"
	"testing"

	"github.com/starford/archview/internal/models"
)

// abcSnapshot is the gateway -> service -> database chain used across tests.
func abcSnapshot() models.Snapshot {
	return models.Snapshot{
		Nodes: []models.Node{
			{ID: "A", Label: "API Gateway", Type: models.NodeGateway, Position: models.Position{X: 0, Y: 0}},
			{ID: "B", Label: "Auth Service", Type: models.NodeService, Position: models.Position{X: 300, Y: 0}},
			{ID: "C", Label: "Users DB", Type: models.NodeDatabase, Position: models.Position{X: 600, Y: 120}},
		},
		Edges: []models.Edge{
			{ID: "e1", Source: "A", Target: "B", Type: models.EdgeSync, Label: "REST"},
			{ID: "e2", Source: "B", Target: "C", Type: models.EdgeSync, Label: "SQL"},
		},
	}
}

func loadABC(t *testing.T) *Model {
	t.Helper()
	m, diags := Load(abcSnapshot())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return m
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func approxPos(a, b models.Position) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y)
}
