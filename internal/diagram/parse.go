package diagram

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/models"
)

var (
	nodeRe = regexp.MustCompile(`^node\s+(\S+)\s+("(?:[^"\\]|\\.)*")\s+(\S+)$`)
	edgeRe = regexp.MustCompile(`^edge\s+(\S+)\s+-->\s+(\S+)(?:\s+:(.*?))?(\s+\[async\])?$`)
)

// Grid slots for imported nodes, which carry no position.
const (
	gridColumns = 4
	gridOriginX = 40
	gridOriginY = 40
	gridStepX   = 280
	gridStepY   = 160
)

// Parse reads diagram text into a snapshot. Blank lines and lines starting
// with '#' are ignored. Lines that do not match the grammar and edges naming
// undeclared nodes are dropped and reported; Parse never fails.
func Parse(text string) (models.Snapshot, graph.Diagnostics) {
	var (
		snap  models.Snapshot
		diags graph.Diagnostics
		edges []lineEdge
	)
	declared := make(map[string]struct{})

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := nodeRe.FindStringSubmatch(line); m != nil {
			label, err := strconv.Unquote(m[2])
			if err != nil {
				diags = append(diags, malformed(lineNo, "bad label quoting: %v", err))
				continue
			}
			typ := models.NodeType(m[3])
			if !typ.Valid() {
				diags = append(diags, malformed(lineNo, "unknown node type %q", m[3]))
				continue
			}
			snap.Nodes = append(snap.Nodes, models.Node{
				ID:       m[1],
				Label:    label,
				Type:     typ,
				Position: defaultPosition(len(snap.Nodes)),
				Metadata: models.Metadata{Health: models.HealthHealthy},
			})
			declared[m[1]] = struct{}{}
			continue
		}

		if m := edgeRe.FindStringSubmatch(line); m != nil {
			typ := models.EdgeSync
			if m[4] != "" {
				typ = models.EdgeAsync
			}
			edges = append(edges, lineEdge{line: lineNo, edge: models.Edge{
				Source: m[1],
				Target: m[2],
				Type:   typ,
				Label:  strings.TrimSpace(m[3]),
			}})
			continue
		}

		diags = append(diags, malformed(lineNo, "unrecognized line %q", line))
	}

	// Edges may precede the nodes they reference, so resolve after the scan.
	for _, le := range edges {
		e := le.edge
		missing := ""
		if _, ok := declared[e.Source]; !ok {
			missing = e.Source
		} else if _, ok := declared[e.Target]; !ok {
			missing = e.Target
		}
		if missing != "" {
			diags = append(diags, graph.Diagnostic{
				Kind:    graph.DanglingEdgeReference,
				Line:    le.line,
				Ref:     missing,
				Message: fmt.Sprintf("edge %s --> %s references undeclared node %s", e.Source, e.Target, missing),
			})
			continue
		}
		e.ID = fmt.Sprintf("e%d", len(snap.Edges)+1)
		snap.Edges = append(snap.Edges, e)
	}

	return snap, diags
}

// Import parses text and loads the result into a model.
func Import(text string) (*graph.Model, graph.Diagnostics) {
	snap, diags := Parse(text)
	m, loadDiags := graph.Load(snap)
	return m, append(diags, loadDiags...)
}

type lineEdge struct {
	line int
	edge models.Edge
}

func malformed(line int, format string, args ...any) graph.Diagnostic {
	return graph.Diagnostic{
		Kind:    graph.MalformedDiagramLine,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

func defaultPosition(i int) models.Position {
	return models.Position{
		X: float64(gridOriginX + (i%gridColumns)*gridStepX),
		Y: float64(gridOriginY + (i/gridColumns)*gridStepY),
	}
}
