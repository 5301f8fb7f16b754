package graph

import "github.com/starford/archview/internal/models"

// NodeDragController moves one node at a time. It shares the gesture slot of
// its viewport, so a drag and a background pan never overlap.
type NodeDragController struct {
	model    *Model
	viewport *ViewportController
	session  *dragSession
}

type dragSession struct {
	nodeID        string
	anchorNode    models.Position
	anchorPointer models.Position
}

// NewNodeDragController binds a drag controller to a model and viewport.
func NewNodeDragController(m *Model, v *ViewportController) *NodeDragController {
	return &NodeDragController{model: m, viewport: v}
}

// BeginDrag captures the node position and the pointer as session anchors.
func (d *NodeDragController) BeginDrag(nodeID string, pointer models.Position) error {
	n, ok := d.model.nodes[nodeID]
	if !ok {
		return ErrUnknownNode
	}
	if err := d.viewport.slot.acquire(GestureDrag); err != nil {
		return err
	}
	d.session = &dragSession{
		nodeID:        nodeID,
		anchorNode:    n.Position,
		anchorPointer: pointer,
	}
	return nil
}

// OnMove commits the node position for the current pointer. The screen delta
// is divided by the zoom scale so the node tracks the pointer at any zoom.
// It reports false when no drag is active.
func (d *NodeDragController) OnMove(pointer models.Position) bool {
	s := d.session
	if s == nil {
		return false
	}
	scale := d.viewport.Scale()
	delta := models.Position{
		X: (pointer.X - s.anchorPointer.X) / scale,
		Y: (pointer.Y - s.anchorPointer.Y) / scale,
	}
	return d.model.setPosition(s.nodeID, s.anchorNode.Add(delta))
}

// EndDrag releases the session and re-arms panning.
func (d *NodeDragController) EndDrag() {
	if d.session == nil {
		return
	}
	d.session = nil
	d.viewport.slot.release(GestureDrag)
}

// Dragging returns the node being dragged, if any.
func (d *NodeDragController) Dragging() (string, bool) {
	if d.session == nil {
		return "", false
	}
	return d.session.nodeID, true
}
