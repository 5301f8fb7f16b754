package graph

import (
	"fmt"
	"math"

	"github.com/starford/archview/internal/models"
)

// Box is the rendered size of a node in diagram units.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultBox is the node size used when none is configured.
var DefaultBox = Box{Width: 200, Height: 80}

// EdgePath is a routed edge: a cubic Bezier from the right-middle of the
// source box to the left-middle of the target box.
type EdgePath struct {
	EdgeID      string          `json:"edge_id"`
	Start       models.Position `json:"start"`
	Control1    models.Position `json:"control1"`
	Control2    models.Position `json:"control2"`
	End         models.Position `json:"end"`
	Label       string          `json:"label,omitempty"`
	LabelAnchor models.Position `json:"label_anchor"`
	Style       EdgeStyle       `json:"style"`
}

// RouteEdge computes the path of e between source and target.
func RouteEdge(e models.Edge, source, target models.Node, box Box) EdgePath {
	p1 := source.Position.Add(models.Position{X: box.Width, Y: box.Height / 2})
	p2 := target.Position.Add(models.Position{X: 0, Y: box.Height / 2})
	h := math.Abs(p2.X-p1.X) * 0.5
	p := EdgePath{
		EdgeID:   e.ID,
		Start:    p1,
		Control1: models.Position{X: p1.X + h, Y: p1.Y},
		Control2: models.Position{X: p2.X - h, Y: p2.Y},
		End:      p2,
		Label:    e.Label,
		Style:    EdgeStyleOf(e.Type),
	}
	p.LabelAnchor = p.At(0.5)
	return p
}

// Route computes paths for every edge in the model, in edge order.
func Route(m *Model, box Box) []EdgePath {
	out := make([]EdgePath, 0, m.EdgeCount())
	for _, id := range m.edgeOrder {
		e := m.edges[id]
		out = append(out, RouteEdge(*e, *m.nodes[e.Source], *m.nodes[e.Target], box))
	}
	return out
}

// At evaluates the curve at t in [0, 1].
func (p EdgePath) At(t float64) models.Position {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return models.Position{
		X: a*p.Start.X + b*p.Control1.X + c*p.Control2.X + d*p.End.X,
		Y: a*p.Start.Y + b*p.Control1.Y + c*p.Control2.Y + d*p.End.Y,
	}
}

// SVG renders the path as an SVG path data string.
func (p EdgePath) SVG() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		p.Start.X, p.Start.Y,
		p.Control1.X, p.Control1.Y,
		p.Control2.X, p.Control2.Y,
		p.End.X, p.End.Y)
}
