package testing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
)

const (
	// DefaultTestWidth is the default logical width for the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test surface.
	DefaultTestHeight = 600
	// DefaultMaxSettleFrames bounds PumpAndSettle.
	DefaultMaxSettleFrames = 100
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its frame budget.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: engine did not settle")

// WidgetTester drives a [core.Engine] frame by frame and records the
// lifecycle events it emits.
type WidgetTester struct {
	engine     *core.Engine
	bus        *events.Bus
	recorder   *EventRecorder
	options    []core.Option
	size       layout.Size
	dispatches []func(*core.Engine)
	// stale is set when the root or its constraints changed outside an update.
	stale bool
}

// NewWidgetTester creates a tester with a default test surface. The options
// are passed to [core.NewEngine] when the first widget is pumped.
// Call Cleanup() when done, or use NewWidgetTesterWithT() instead.
func NewWidgetTester(opts ...core.Option) *WidgetTester {
	bus := events.NewBus()
	return &WidgetTester{
		bus:      bus,
		recorder: NewEventRecorder(bus),
		options:  opts,
		size:     layout.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
	}
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// Invariant verification is enabled. This is the recommended constructor for
// tests.
func NewWidgetTesterWithT(t *testing.T, opts ...core.Option) *WidgetTester {
	opts = append([]core.Option{core.WithVerify(true)}, opts...)
	tester := NewWidgetTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup tears down the mounted tree, disposing every state.
func (t *WidgetTester) Cleanup() {
	if t.engine != nil {
		func() {
			// A tree left broken by a failed test must not fail cleanup.
			defer func() { recover() }()
			t.engine.SetRoot(nil)
			t.engine.Update()
		}()
	}
	t.recorder.Close()
}

// SetSize sets the logical surface size. Takes effect on the next pump.
func (t *WidgetTester) SetSize(size layout.Size) {
	t.size = size
	if t.engine != nil {
		t.engine.SetRootConstraints(layout.Tight(size))
		t.stale = true
	}
}

// Size returns the logical surface size.
func (t *WidgetTester) Size() layout.Size {
	return t.size
}

// Engine returns the engine, or nil before the first PumpWidget.
func (t *WidgetTester) Engine() *core.Engine {
	return t.engine
}

// Events returns the recorder of lifecycle events.
func (t *WidgetTester) Events() *EventRecorder {
	return t.recorder
}

// PumpWidget sets the root widget and runs one frame. The first call
// creates the engine; later calls reconcile against the existing tree.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	if t.engine == nil {
		opts := append([]core.Option{
			core.WithLogger(logging.Nop()),
			core.WithEventBus(t.bus),
			core.WithRootConstraints(layout.Tight(t.size)),
		}, t.options...)
		var err error
		func() {
			defer recoverFrame(&err)
			t.engine = core.NewEngine(widget, opts...)
		}()
		if err != nil {
			return err
		}
	} else {
		t.engine.SetRoot(widget)
		t.stale = true
	}
	return t.Pump()
}

// Pump runs a single frame: dispatched functions, then one engine update if
// anything is pending. A panic raised by the engine is returned as an error.
func (t *WidgetTester) Pump() (err error) {
	if t.engine == nil {
		return nil
	}
	defer recoverFrame(&err)

	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn(t.engine)
	}
	if t.stale || len(dispatches) > 0 || t.engine.HasChanges() {
		t.stale = false
		t.engine.Update()
	}
	return nil
}

// PumpAndSettle runs frames until nothing is pending or maxFrames is
// reached. A non-positive maxFrames uses DefaultMaxSettleFrames.
func (t *WidgetTester) PumpAndSettle(maxFrames int) error {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxSettleFrames
	}
	for range maxFrames {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

func (t *WidgetTester) needsWork() bool {
	return len(t.dispatches) > 0 || (t.engine != nil && t.engine.HasChanges())
}

// Dispatch queues fn for the next frame, mirroring engine.Runner.Dispatch.
func (t *WidgetTester) Dispatch(fn func(*core.Engine)) {
	t.dispatches = append(t.dispatches, fn)
}

// Root returns the root element of the mounted tree.
func (t *WidgetTester) Root() (core.ElementID, bool) {
	if t.engine == nil {
		return core.ElementID(0), false
	}
	return t.engine.Root()
}

// Children returns the child elements of id.
func (t *WidgetTester) Children(id core.ElementID) []core.ElementID {
	if t.engine == nil {
		return nil
	}
	return t.engine.Elements().Children(id)
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	root, ok := t.Root()
	if !ok {
		return FinderResult{finder: finder, engine: t.engine}
	}
	return FinderResult{
		ids:    finder.Evaluate(t.engine.Elements(), root),
		finder: finder,
		engine: t.engine,
	}
}

func recoverFrame(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		*err = e
		return
	}
	*err = fmt.Errorf("panic: %v", r)
}
