package core

import (
	"testing"

	"github.com/go-drift/retained/pkg/events"
)

type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

func TestUseController(t *testing.T) {
	base := &StateBase{}

	controller := UseController(base, func() *mockDisposable {
		return &mockDisposable{}
	})
	if controller.disposed {
		t.Error("Controller should not be disposed initially")
	}

	base.Dispose()
	if !controller.disposed {
		t.Error("Controller should be disposed when StateBase is disposed")
	}
}

type ping struct{ n int }

func TestUseEvent(t *testing.T) {
	bus := events.NewBus()
	base := &StateBase{}

	var got []int
	UseEvent(base, bus, func(p ping) { got = append(got, p.n) })

	events.Emit(bus, ping{1})
	base.Dispose()
	events.Emit(bus, ping{2})

	if len(got) != 1 || got[0] != 1 {
		t.Errorf("got %v, want [1]", got)
	}
	if events.HasListeners[ping](bus) {
		t.Error("listener should be removed on dispose")
	}
}

func TestManagedMarksDirty(t *testing.T) {
	dirty := NewDirtySet()
	base := &StateBase{}
	base.attach(ElementID(7), dirty)

	m := NewManaged(base, 1)
	m.Set(2)
	m.Update(func(v int) int { return v * 10 })

	if m.Value() != 20 {
		t.Errorf("Value = %d, want 20", m.Value())
	}
	if !dirty.Contains(7) || dirty.Len() != 1 {
		t.Errorf("dirty set = %v", dirty.drain())
	}
}

func TestOnDisposeOrderAndUnregister(t *testing.T) {
	base := &StateBase{}
	var order []int
	base.OnDispose(func() { order = append(order, 1) })
	unregister := base.OnDispose(func() { order = append(order, 2) })
	base.OnDispose(func() { order = append(order, 3) })
	unregister()

	base.Dispose()
	base.Dispose()

	if len(order) != 2 || order[0] != 3 || order[1] != 1 {
		t.Errorf("order = %v, want [3 1]", order)
	}

	ran := false
	base.OnDispose(func() { ran = true })
	if !ran {
		t.Error("OnDispose after disposal should run immediately")
	}
}
