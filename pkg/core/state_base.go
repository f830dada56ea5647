package core

import "sync"

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks and NewManaged accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase provides common functionality for stateful widget states.
// Embed it in your state:
//
//	type counterState struct {
//	    core.StateBase
//	    count int
//	}
//
//	func (s *counterState) Build(ctx *core.BuildContext) core.Widget { ... }
type StateBase struct {
	id        ElementID
	dirty     *DirtySet
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// attach binds the state to its element. Called by the engine on mount.
func (s *StateBase) attach(id ElementID, dirty *DirtySet) {
	s.id = id
	s.dirty = dirty
}

// ElementID returns the id of the element hosting this state, or zero
// before mount.
func (s *StateBase) ElementID() ElementID {
	return s.id
}

// SetState runs fn and marks the element dirty. It is a no-op after
// disposal. The dirty set is goroutine-safe, but fn runs on the caller's
// goroutine; mutate state from the UI goroutine or through a callback.
func (s *StateBase) SetState(fn func()) {
	if s.IsDisposed() {
		return
	}
	if fn != nil {
		fn()
	}
	if s.dirty != nil {
		s.dirty.Insert(s.id)
	}
}

// OnDispose registers a cleanup function to run when the state is disposed.
// It returns a function that unregisters the cleanup.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		cleanup()
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers runs the registered cleanups in reverse order, once.
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// Dispose runs the disposers. States that override Dispose must call
// s.StateBase.Dispose().
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// InitState is a no-op default implementation.
func (s *StateBase) InitState() {}

// DidUpdateWidget is a no-op default implementation.
func (s *StateBase) DidUpdateWidget(oldWidget StatefulWidget) {}

// IsDisposed reports whether the state has been disposed.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
