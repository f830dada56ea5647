package testing

import (
	"fmt"
	"sync"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/events"
)

// EventKind identifies a recorded lifecycle event.
type EventKind int

const (
	Spawned EventKind = iota
	Rebuilt
	Destroyed
)

func (k EventKind) String() string {
	switch k {
	case Spawned:
		return "spawned"
	case Rebuilt:
		return "rebuilt"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a lifecycle event in emission order. Parent is only set for
// [Spawned].
type Event struct {
	Kind    EventKind
	Element core.ElementID
	Parent  core.ElementID
}

func (e Event) String() string {
	if e.Kind == Spawned && e.Parent != 0 {
		return fmt.Sprintf("%s %s (parent %s)", e.Kind, e.Element, e.Parent)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Element)
}

// EventRecorder collects element lifecycle events from a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
	subs   []*events.Subscription
}

// NewEventRecorder subscribes to the lifecycle events on bus.
func NewEventRecorder(bus *events.Bus) *EventRecorder {
	r := &EventRecorder{}
	r.subs = append(r.subs,
		events.Subscribe(bus, func(ev core.ElementSpawnedEvent) {
			r.add(Event{Kind: Spawned, Element: ev.Element, Parent: ev.Parent})
		}),
		events.Subscribe(bus, func(ev core.ElementRebuiltEvent) {
			r.add(Event{Kind: Rebuilt, Element: ev.Element})
		}),
		events.Subscribe(bus, func(ev core.ElementDestroyedEvent) {
			r.add(Event{Kind: Destroyed, Element: ev.Element})
		}),
	)
	return r
}

func (r *EventRecorder) add(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// All returns a copy of every recorded event.
func (r *EventRecorder) All() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Of returns the elements of the recorded events of kind, in order.
func (r *EventRecorder) Of(kind EventKind) []core.ElementID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []core.ElementID
	for _, ev := range r.events {
		if ev.Kind == kind {
			ids = append(ids, ev.Element)
		}
	}
	return ids
}

// Count returns the number of recorded events of kind.
func (r *EventRecorder) Count(kind EventKind) int {
	return len(r.Of(kind))
}

// Reset discards the recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Close stops recording.
func (r *EventRecorder) Close() {
	for _, sub := range r.subs {
		sub.Cancel()
	}
	r.subs = nil
}
