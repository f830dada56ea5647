package events

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinged struct{ n int }
type ponged struct{ s string }

func TestEmitDeliversByType(t *testing.T) {
	bus := NewBus()

	var pings []int
	var pongs []string
	s1 := Subscribe(bus, func(e pinged) { pings = append(pings, e.n) })
	s2 := Subscribe(bus, func(e ponged) { pongs = append(pongs, e.s) })

	Emit(bus, pinged{1})
	Emit(bus, ponged{"a"})
	Emit(bus, pinged{2})

	assert.Equal(t, []int{1, 2}, pings)
	assert.Equal(t, []string{"a"}, pongs)
	assert.Equal(t, 2, bus.Len())

	runtime.KeepAlive(s1)
	runtime.KeepAlive(s2)
}

func TestSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	a := Subscribe(bus, func(pinged) { order = append(order, "a") })
	b := Subscribe(bus, func(pinged) { order = append(order, "b") })

	Emit(bus, pinged{})
	assert.Equal(t, []string{"a", "b"}, order)

	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestCancel(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub := Subscribe(bus, func(pinged) { calls++ })
	require.True(t, HasListeners[pinged](bus))

	sub.Cancel()
	sub.Cancel()
	Emit(bus, pinged{})

	assert.Zero(t, calls)
	assert.False(t, HasListeners[pinged](bus))
	assert.Zero(t, bus.Len())
}

//go:noinline
func subscribeAndDrop(bus *Bus, calls *int) {
	Subscribe(bus, func(pinged) { *calls++ })
}

func TestListenersAreWeaklyHeld(t *testing.T) {
	bus := NewBus()
	calls := 0
	subscribeAndDrop(bus, &calls)

	runtime.GC()
	runtime.GC()

	Emit(bus, pinged{})
	assert.Zero(t, calls, "collected listener must not be called")
	assert.Zero(t, bus.Len())
}

func TestEmitOnNilBus(t *testing.T) {
	assert.NotPanics(t, func() { Emit(nil, pinged{}) })
	assert.False(t, HasListeners[pinged](nil))
}
