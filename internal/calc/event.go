package calc

import "slices"

// Event is an ordered list of handlers receiving a payload of type T.
//
// Handlers may subscribe or cancel while the event fires: Fire iterates a
// snapshot and skips handlers cancelled in the meantime.
type Event[T any] struct {
	handlers []*handler[T]
}

type handler[T any] struct {
	fn     func(T)
	active bool
}

// Subscribe registers fn and returns a function that removes it.
// Calling cancel more than once is a no-op.
func (e *Event[T]) Subscribe(fn func(T)) (cancel func()) {
	h := &handler[T]{fn: fn, active: true}
	e.handlers = append(e.handlers, h)
	return func() {
		if !h.active {
			return
		}
		h.active = false
		e.handlers = slices.DeleteFunc(e.handlers, func(x *handler[T]) bool { return x == h })
	}
}

// Fire calls every active handler in subscription order.
func (e *Event[T]) Fire(v T) {
	if len(e.handlers) == 0 {
		return
	}
	for _, h := range slices.Clone(e.handlers) {
		if h.active {
			h.fn(v)
		}
	}
}

// Len returns the number of subscribed handlers.
func (e *Event[T]) Len() int {
	return len(e.handlers)
}

// Clear cancels every handler.
func (e *Event[T]) Clear() {
	for _, h := range e.handlers {
		h.active = false
	}
	e.handlers = nil
}

// Signal is an Event without payload.
type Signal struct {
	ev Event[struct{}]
}

// Subscribe registers fn and returns a function that removes it.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	return s.ev.Subscribe(func(struct{}) { fn() })
}

// Fire notifies every subscriber.
func (s *Signal) Fire() {
	s.ev.Fire(struct{}{})
}

// Len returns the number of subscribers.
func (s *Signal) Len() int {
	return s.ev.Len()
}

// Clear cancels every subscriber.
func (s *Signal) Clear() {
	s.ev.Clear()
}
