package graph

import (
	"strings"

	"github.com/starford/archview/internal/models"
)

// AsyncMarker is the diagram text suffix that flags an async edge.
const AsyncMarker = "[async]"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// CanonicalEdgeLabel returns the form of label that the diagram text format
// reproduces exactly. Line breaks become spaces and surrounding whitespace is
// trimmed. A sync edge also loses any trailing async marker, which the parser
// would otherwise read as the edge type.
func CanonicalEdgeLabel(label string, typ models.EdgeType) string {
	s := strings.TrimSpace(lineBreaks.Replace(label))
	if typ == models.EdgeAsync {
		return s
	}
	for {
		if s == AsyncMarker {
			return ""
		}
		rest, ok := strings.CutSuffix(s, AsyncMarker)
		if !ok || !isTokenSpace(rest[len(rest)-1]) {
			return s
		}
		s = strings.TrimSpace(rest)
	}
}

// isTokenSpace matches the parser's token separators (RE2 \s).
func isTokenSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
