// Package diagram converts graphs to and from the line-oriented diagram text
// format:
//
//	node n1 "API Gateway" gateway
//	node n2 "Auth Service" service
//	edge n1 --> n2 : REST
//
// Node labels are double-quoted; edge labels run to the end of the line and
// are followed by " [async]" for async edges. Edge labels are written in their
// canonical form (see graph.CanonicalEdgeLabel). Positions and metadata are not
// part of the format.
package diagram

import (
	"strconv"
	"strings"

	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
)

// Export serializes the full model, ignoring filters and selection.
func Export(m *graph.Model) string {
	return ExportSnapshot(m.Snapshot())
}

// ExportSnapshot serializes nodes then edges in snapshot order.
func ExportSnapshot(snap models.Snapshot) string {
	var sb strings.Builder
	for _, n := range snap.Nodes {
		sb.WriteString("node ")
		sb.WriteString(n.ID)
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Label))
		sb.WriteByte(' ')
		sb.WriteString(string(n.Type))
		sb.WriteByte('\n')
	}
	for _, e := range snap.Edges {
		sb.WriteString("edge ")
		sb.WriteString(e.Source)
		sb.WriteString(" --> ")
		sb.WriteString(e.Target)
		if label := graph.CanonicalEdgeLabel(e.Label, e.Type); label != "" {
			sb.WriteString(" : ")
			sb.WriteString(label)
		}
		if e.Type == models.EdgeAsync {
			sb.WriteByte(' ')
			sb.WriteString(graph.AsyncMarker)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
