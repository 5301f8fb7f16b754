package graph

import (
	"sort"

	"github.com/starford/archview/internal/models"
)

// PointerEvent is a pointer event type a gesture can listen for.
type PointerEvent int

// Pointer events delivered through a PointerBus.
const (
	PointerMove PointerEvent = iota
	PointerUp
)

// PointerBus fans pointer events out to the handlers of the active gesture.
type PointerBus struct {
	handlers map[PointerEvent]map[uint64]func(models.Position)
	next     uint64
}

// NewPointerBus returns an empty bus.
func NewPointerBus() *PointerBus {
	return &PointerBus{handlers: make(map[PointerEvent]map[uint64]func(models.Position))}
}

// Subscription is a registered handler. Cancel removes it.
type Subscription struct {
	bus *PointerBus
	ev  PointerEvent
	id  uint64
}

// Subscribe registers fn for ev.
func (b *PointerBus) Subscribe(ev PointerEvent, fn func(models.Position)) *Subscription {
	hs, ok := b.handlers[ev]
	if !ok {
		hs = make(map[uint64]func(models.Position))
		b.handlers[ev] = hs
	}
	id := b.next
	b.next++
	hs[id] = fn
	return &Subscription{bus: b, ev: ev, id: id}
}

// Cancel deregisters the handler. Calling it twice is harmless.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	delete(s.bus.handlers[s.ev], s.id)
	s.bus = nil
}

// Dispatch delivers p to every handler of ev in registration order. Handlers
// may cancel subscriptions while being dispatched.
func (b *PointerBus) Dispatch(ev PointerEvent, p models.Position) {
	hs := b.handlers[ev]
	ids := make([]uint64, 0, len(hs))
	for id := range hs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn, ok := hs[id]; ok {
			fn(p)
		}
	}
}

// Len returns the number of live subscriptions.
func (b *PointerBus) Len() int {
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}
