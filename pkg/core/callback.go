package core

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-drift/retained/pkg/errors"
)

// CallbackID addresses a callback registered by an element during build.
// Index is the registration order within that build.
type CallbackID struct {
	Element ElementID
	Index   uint32
}

func (id CallbackID) String() string {
	return fmt.Sprintf("%s#%d", id.Element, id.Index)
}

type invocation struct {
	ids []CallbackID
	arg any
}

// CallbackQueue buffers callback invocations until the next update.
// It is safe for concurrent use.
type CallbackQueue struct {
	mu      sync.Mutex
	pending []invocation

	// OnNeedsUpdate is called, outside the lock, when an invocation is
	// queued on an empty queue.
	OnNeedsUpdate func()
}

// NewCallbackQueue creates an empty queue.
func NewCallbackQueue() *CallbackQueue {
	return &CallbackQueue{}
}

// CallUnchecked queues an invocation of id with arg. The argument type is
// checked when the invocation is delivered.
func (q *CallbackQueue) CallUnchecked(id CallbackID, arg any) {
	q.CallManyUnchecked([]CallbackID{id}, arg)
}

// CallManyUnchecked queues one invocation that delivers arg to every id,
// in order.
func (q *CallbackQueue) CallManyUnchecked(ids []CallbackID, arg any) {
	if len(ids) == 0 {
		return
	}
	q.mu.Lock()
	wasEmpty := len(q.pending) == 0
	q.pending = append(q.pending, invocation{ids: ids, arg: arg})
	q.mu.Unlock()

	if wasEmpty && q.OnNeedsUpdate != nil {
		q.OnNeedsUpdate()
	}
}

// Len returns the number of queued invocations.
func (q *CallbackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// IsEmpty reports whether no invocation is queued.
func (q *CallbackQueue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *CallbackQueue) take() []invocation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Callback is a typed handle to a function registered during build. It can
// be copied freely and invoked from any goroutine; the function runs on the
// next update.
type Callback[A any] struct {
	id    CallbackID
	queue *CallbackQueue
}

// ID returns the callback's id.
func (c Callback[A]) ID() CallbackID { return c.id }

// IsZero reports whether c was never registered.
func (c Callback[A]) IsZero() bool { return c.queue == nil }

// Call queues an invocation with arg.
func (c Callback[A]) Call(arg A) {
	if c.queue == nil {
		return
	}
	c.queue.CallUnchecked(c.id, arg)
}

// CallMany queues a single invocation delivering arg to every callback in
// cbs, in order. Zero callbacks are skipped.
func CallMany[A any](cbs []Callback[A], arg A) {
	var queue *CallbackQueue
	ids := make([]CallbackID, 0, len(cbs))
	for _, cb := range cbs {
		if cb.queue == nil {
			continue
		}
		queue = cb.queue
		ids = append(ids, cb.id)
	}
	if queue != nil {
		queue.CallManyUnchecked(ids, arg)
	}
}

// NewCallback registers fn on the building element and returns its handle.
// Ids are positional: the n-th NewCallback in a build gets the same id on
// every build, so handles captured by older widgets stay valid as long as
// the build registers callbacks in a stable order.
func NewCallback[A any](ctx *BuildContext, fn func(ctx *CallbackContext, arg A)) Callback[A] {
	b := ctx.element.base()
	id := CallbackID{Element: ctx.id, Index: uint32(len(b.callbacks))}
	b.callbacks = append(b.callbacks, func(cctx *CallbackContext, arg any) {
		var typed A
		if arg != nil {
			v, ok := arg.(A)
			if !ok {
				err := &errors.CallbackError{
					Callback: id.String(),
					Want:     reflect.TypeFor[A]().String(),
					Got:      reflect.TypeOf(arg).String(),
				}
				errors.Report(&errors.Error{Op: "core.Callback", Kind: errors.KindCallback, Err: err})
				panic(err)
			}
			typed = v
		}
		fn(cctx, typed)
	})
	return Callback[A]{id: id, queue: ctx.callbacks}
}
