package core

import "github.com/go-drift/retained/pkg/events"

// Disposable is implemented by controllers that hold resources.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and disposes it with the state.
//
//	func (s *myState) InitState() {
//	    s.ticker = core.UseController(s, newTicker)
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(controller.Dispose)
	return controller
}

// UseEvent subscribes fn to events of type E on bus for the lifetime of
// the state. The subscription is held by the state, so it is not collected
// while the state is alive.
func UseEvent[E any](s stateBase, bus *events.Bus, fn func(E)) *events.Subscription {
	base := s.state()
	sub := events.Subscribe(bus, fn)
	base.OnDispose(sub.Cancel)
	return sub
}

// Managed holds a value and marks its state dirty when the value changes.
//
//	type myState struct {
//	    core.StateBase
//	    count *core.Managed[int]
//	}
//
//	func (s *myState) InitState() {
//	    s.count = core.NewManaged(s, 0)
//	}
type Managed[T any] struct {
	base  *StateBase
	value T
}

// NewManaged creates a managed value bound to s.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{
		base:  s.state(),
		value: initial,
	}
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set replaces the value and marks the state dirty.
func (m *Managed[T]) Set(value T) {
	m.value = value
	m.base.SetState(nil)
}

// Update applies transform to the value and marks the state dirty.
func (m *Managed[T]) Update(transform func(T) T) {
	m.value = transform(m.value)
	m.base.SetState(nil)
}
