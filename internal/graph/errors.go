package graph

import (
	"fmt"

	"github.com/starford/archview/internal/apperr"
)

var (
	ErrUnknownNode     = fmt.Errorf("graph: unknown node: %w", apperr.ErrNotFound)
	ErrUnknownCategory = fmt.Errorf("graph: unknown category: %w", apperr.ErrInvalid)
	ErrGestureActive   = fmt.Errorf("graph: another gesture is active: %w", apperr.ErrConflict)
)
