package api

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/models"
	"github.com/starford/archview/internal/storage"
)

var isDiagramPath = validation.By(func(v any) error {
	p, _ := v.(string)
	if p != "" && !storage.IsDiagramFile(p) {
		return errors.New("must end in .arch, .json, .yaml or .yml")
	}
	return nil
})

// CreateDiagramRequest is the request body for storing a new diagram.
type CreateDiagramRequest struct {
	Path    string `json:"path" example:"shop.arch"`
	Content string `json:"content" example:"node api \"API\" gateway"`
}

// Validate checks the request fields.
func (r CreateDiagramRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required, isDiagramPath),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateDiagramRequest is the request body for replacing a diagram.
type UpdateDiagramRequest struct {
	Content string `json:"content"`
}

// Validate checks the request fields.
func (r UpdateDiagramRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Content, validation.Required))
}

// ImportRequest carries diagram text, optionally stored at Path.
type ImportRequest struct {
	Text string `json:"text"`
	Path string `json:"path,omitempty"`
}

// Validate checks the request fields.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Path, isDiagramPath),
	)
}

// OpenSessionRequest opens a stored diagram (Path) or unsaved text (Text).
type OpenSessionRequest struct {
	Path string `json:"path,omitempty"`
	Text string `json:"text,omitempty"`
}

// Validate requires exactly one of Path and Text.
func (r OpenSessionRequest) Validate() error {
	if (r.Path == "") == (r.Text == "") {
		return errors.New("exactly one of path and text is required")
	}
	return validation.ValidateStruct(&r, validation.Field(&r.Path, isDiagramPath))
}

// SelectionRequest sets or clears the selected node.
type SelectionRequest struct {
	NodeID string `json:"node_id"`
}

// Validate accepts any id; an empty id clears the selection.
func (r SelectionRequest) Validate() error { return nil }

// FilterRequest switches a category on or off.
type FilterRequest struct {
	Visible *bool `json:"visible"`
}

// Validate checks the request fields.
func (r FilterRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Visible, validation.NotNil))
}

// PanRequest is a screen-space viewport translation.
type PanRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Validate accepts any finite delta.
func (r PanRequest) Validate() error { return nil }

// ZoomRequest is a scale delta.
type ZoomRequest struct {
	Delta *float64 `json:"delta"`
}

// Validate checks the request fields.
func (r ZoomRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Delta, validation.NotNil))
}

// PointerRequest is one pointer event. Target names the node under the
// pointer on pointer-down; empty means the background.
type PointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Target string  `json:"target,omitempty"`
}

// Validate accepts any position.
func (r PointerRequest) Validate() error { return nil }

// Position returns the pointer position.
func (r PointerRequest) Position() models.Position {
	return models.Position{X: r.X, Y: r.Y}
}

// SaveRequest writes a session's graph to Path, or back to its source.
type SaveRequest struct {
	Path string `json:"path,omitempty"`
}

// Validate checks the request fields.
func (r SaveRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Path, isDiagramPath))
}

// DiagramListResponse wraps paginated diagram listings.
type DiagramListResponse struct {
	Diagrams []catalog.DiagramRow `json:"diagrams"`
	Total    int                  `json:"total"`
}

// SearchResponse wraps node search results.
type SearchResponse struct {
	Results []catalog.NodeHit `json:"results"`
}
