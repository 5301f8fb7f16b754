package graph

import (
	"math"

	"github.com/starford/archview/internal/models"
)

// Zoom bounds.
const (
	MinScale = 0.2
	MaxScale = 2.0
)

// Transform is the canvas pan offset and zoom scale. It composes as translate
// then scale with the origin at the top-left corner.
type Transform struct {
	PanX  float64 `json:"pan_x"`
	PanY  float64 `json:"pan_y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform is the initial viewport.
var IdentityTransform = Transform{Scale: 1}

// WorldToScreen maps a diagram coordinate to a screen coordinate.
func (t Transform) WorldToScreen(p models.Position) models.Position {
	return models.Position{X: t.PanX + p.X*t.Scale, Y: t.PanY + p.Y*t.Scale}
}

// ScreenToWorld maps a screen coordinate back to diagram space.
func (t Transform) ScreenToWorld(p models.Position) models.Position {
	return models.Position{X: (p.X - t.PanX) / t.Scale, Y: (p.Y - t.PanY) / t.Scale}
}

// ViewportController owns the canvas transform. It never touches the model.
type ViewportController struct {
	t     Transform
	slot  *gestureSlot
	panAt *models.Position
}

// NewViewportController returns a controller at the identity transform.
func NewViewportController() *ViewportController {
	return &ViewportController{t: IdentityTransform, slot: &gestureSlot{}}
}

// Transform returns the current transform.
func (v *ViewportController) Transform() Transform { return v.t }

// Scale returns the current zoom scale.
func (v *ViewportController) Scale() float64 { return v.t.Scale }

// Pan adds screen-space deltas to the offset. Pan speed does not depend on zoom.
func (v *ViewportController) Pan(dx, dy float64) {
	v.t.PanX += dx
	v.t.PanY += dy
}

// Zoom adds delta to the scale and clamps it to [MinScale, MaxScale]. The zoom
// is anchored at the canvas origin, so the pan offset is left untouched.
// NaN deltas are ignored and infinite ones clamp to the nearest bound; both,
// and any clamped result, are reported as InvalidZoomDelta.
func (v *ViewportController) Zoom(delta float64) (Transform, Diagnostics) {
	var diags Diagnostics
	if math.IsNaN(delta) {
		diags.add(InvalidZoomDelta, "", "zoom delta is NaN; ignored")
		delta = 0
	} else if math.IsInf(delta, 0) {
		diags.add(InvalidZoomDelta, "", "zoom delta is %v; clamped", delta)
	}
	next := v.t.Scale + delta
	switch {
	case next < MinScale:
		if len(diags) == 0 {
			diags.add(InvalidZoomDelta, "", "scale %g below %g; clamped", next, MinScale)
		}
		next = MinScale
	case next > MaxScale:
		if len(diags) == 0 {
			diags.add(InvalidZoomDelta, "", "scale %g above %g; clamped", next, MaxScale)
		}
		next = MaxScale
	}
	v.t.Scale = next
	return v.t, diags
}

// Reset restores the identity transform.
func (v *ViewportController) Reset() {
	v.t = IdentityTransform
}

// BeginPan starts a background pan gesture anchored at pointer.
func (v *ViewportController) BeginPan(pointer models.Position) error {
	if err := v.slot.acquire(GesturePan); err != nil {
		return err
	}
	p := pointer
	v.panAt = &p
	return nil
}

// PanTo pans by the pointer movement since the last pan event. It is a no-op
// outside a pan gesture.
func (v *ViewportController) PanTo(pointer models.Position) {
	if v.panAt == nil {
		return
	}
	d := pointer.Sub(*v.panAt)
	v.Pan(d.X, d.Y)
	*v.panAt = pointer
}

// EndPan finishes the pan gesture, if any.
func (v *ViewportController) EndPan() {
	if v.panAt == nil {
		return
	}
	v.panAt = nil
	v.slot.release(GesturePan)
}

// ActiveGesture reports which gesture currently holds the canvas.
func (v *ViewportController) ActiveGesture() GestureKind { return v.slot.kind }

// GestureKind names an interactive gesture.
type GestureKind string

// Gesture kinds. The empty kind means the canvas is idle.
const (
	GestureNone GestureKind = ""
	GesturePan  GestureKind = "pan"
	GestureDrag GestureKind = "drag"
)

// gestureSlot enforces that at most one gesture is active per canvas.
type gestureSlot struct {
	kind GestureKind
}

func (s *gestureSlot) acquire(k GestureKind) error {
	if s.kind != GestureNone {
		return ErrGestureActive
	}
	s.kind = k
	return nil
}

func (s *gestureSlot) release(k GestureKind) {
	if s.kind == k {
		s.kind = GestureNone
	}
}
