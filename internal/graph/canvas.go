package graph

import "github.com/starford/archview/internal/models"

// Canvas routes pointer input to either the viewport (background) or the drag
// controller (a node). Each gesture is a session that owns its pointer
// subscriptions and cancels them when the pointer is released.
type Canvas struct {
	Model    *Model
	Viewport *ViewportController
	Drag     *NodeDragController
	Pointer  *PointerBus

	gesture *gestureSession
}

type gestureSession struct {
	kind GestureKind
	subs []*Subscription
	end  func()
}

func (s *gestureSession) close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
	s.end()
}

// NewCanvas wires a viewport, drag controller, and pointer bus around m.
func NewCanvas(m *Model) *Canvas {
	v := NewViewportController()
	return &Canvas{
		Model:    m,
		Viewport: v,
		Drag:     NewNodeDragController(m, v),
		Pointer:  NewPointerBus(),
	}
}

// PointerDown starts a gesture. A non-empty target starts a drag of that
// node; an empty target starts a background pan.
func (c *Canvas) PointerDown(target string, p models.Position) error {
	if c.gesture != nil {
		return ErrGestureActive
	}
	var s *gestureSession
	if target != "" {
		if err := c.Drag.BeginDrag(target, p); err != nil {
			return err
		}
		s = &gestureSession{kind: GestureDrag, end: c.Drag.EndDrag}
		s.subs = append(s.subs, c.Pointer.Subscribe(PointerMove, func(p models.Position) { c.Drag.OnMove(p) }))
	} else {
		if err := c.Viewport.BeginPan(p); err != nil {
			return err
		}
		s = &gestureSession{kind: GesturePan, end: c.Viewport.EndPan}
		s.subs = append(s.subs, c.Pointer.Subscribe(PointerMove, c.Viewport.PanTo))
	}
	s.subs = append(s.subs, c.Pointer.Subscribe(PointerUp, func(models.Position) { c.endGesture() }))
	c.gesture = s
	return nil
}

// PointerMove forwards a move to the active gesture, if any.
func (c *Canvas) PointerMove(p models.Position) {
	c.Pointer.Dispatch(PointerMove, p)
}

// PointerUp ends the active gesture, if any.
func (c *Canvas) PointerUp(p models.Position) {
	c.Pointer.Dispatch(PointerUp, p)
}

// ActiveGesture reports the kind of the running gesture.
func (c *Canvas) ActiveGesture() GestureKind {
	if c.gesture == nil {
		return GestureNone
	}
	return c.gesture.kind
}

func (c *Canvas) endGesture() {
	if c.gesture == nil {
		return
	}
	s := c.gesture
	c.gesture = nil
	s.close()
}
