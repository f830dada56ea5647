// Package events is a type-keyed notification bus.
//
// Listeners are held weakly: the bus keeps only a [weak.Pointer] to each
// [Subscription], so a listener is deregistered automatically once the
// subscriber drops its Subscription and the garbage collector reclaims it.
// Callers that want a listener to live as long as they do keep the
// Subscription in a field; callers that want deterministic removal call
// [Subscription.Cancel].
package events

import (
	"reflect"
	"sync"
	"weak"
)

// Subscription is the handle returned by [Subscribe]. The listener stays
// registered only while the Subscription is reachable.
type Subscription struct {
	bus     *Bus
	typ     reflect.Type
	deliver func(any)
}

// Cancel deregisters the listener. Calling Cancel more than once is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.remove(s)
	s.bus = nil
}

type entry = weak.Pointer[Subscription]

// Bus dispatches events to listeners registered by event type.
// The zero value is ready to use. A Bus is safe for concurrent use;
// listeners are invoked synchronously on the emitting goroutine, outside the
// bus lock.
type Bus struct {
	mu        sync.Mutex
	listeners map[reflect.Type][]entry
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events of type E.
func Subscribe[E any](b *Bus, fn func(E)) *Subscription {
	sub := &Subscription{
		bus: b,
		typ: reflect.TypeFor[E](),
		deliver: func(v any) {
			fn(v.(E))
		},
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[reflect.Type][]entry)
	}
	b.listeners[sub.typ] = append(b.listeners[sub.typ], weak.Make(sub))
	return sub
}

// Emit delivers event to every live listener of type E in subscription
// order. Collected listeners are pruned as a side effect.
func Emit[E any](b *Bus, event E) {
	if b == nil {
		return
	}
	live := b.live(reflect.TypeFor[E]())
	for _, sub := range live {
		sub.deliver(event)
	}
}

// HasListeners reports whether at least one live listener exists for E.
// Emitters use it to skip building events nobody observes.
func HasListeners[E any](b *Bus) bool {
	if b == nil {
		return false
	}
	return len(b.live(reflect.TypeFor[E]())) > 0
}

// Len returns the number of live listeners across all event types.
func (b *Bus) Len() int {
	b.mu.Lock()
	types := make([]reflect.Type, 0, len(b.listeners))
	for typ := range b.listeners {
		types = append(types, typ)
	}
	b.mu.Unlock()

	n := 0
	for _, typ := range types {
		n += len(b.live(typ))
	}
	return n
}

// live returns strong references to the listeners of typ and drops entries
// whose Subscription has been collected.
func (b *Bus) live(typ reflect.Type) []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.listeners[typ]
	if len(entries) == 0 {
		return nil
	}
	out := make([]*Subscription, 0, len(entries))
	kept := entries[:0]
	for _, e := range entries {
		if sub := e.Value(); sub != nil {
			out = append(out, sub)
			kept = append(kept, e)
		}
	}
	clear(entries[len(kept):])
	if len(kept) == 0 {
		delete(b.listeners, typ)
	} else {
		b.listeners[typ] = kept
	}
	return out
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.listeners[sub.typ]
	for i, e := range entries {
		if e.Value() == sub {
			b.listeners[sub.typ] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.listeners[sub.typ]) == 0 {
		delete(b.listeners, sub.typ)
	}
}
