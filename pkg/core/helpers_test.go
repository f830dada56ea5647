package core

import (
	"testing"

	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
)

// column is a render widget that stacks its children vertically and adds
// its own height.
type column struct {
	RenderObjectBase
	key      any
	height   float32
	children []Widget
}

func (c *column) Key() any           { return c.key }
func (c *column) Children() []Widget { return c.children }

func (c *column) CreateRenderObject(*RenderContext) layout.RenderObject {
	return &columnRender{height: c.height}
}

func (c *column) UpdateRenderObject(_ *RenderContext, ro layout.RenderObject) {
	r := ro.(*columnRender)
	r.height = c.height
	r.updates++
}

type columnRender struct {
	height  float32
	updates int
}

func (r *columnRender) Layout(ctx *layout.LayoutContext, c layout.Constraints) layout.Size {
	var w, h float32
	for i := range ctx.ChildCount() {
		s := ctx.LayoutChild(i, c.Loosen())
		ctx.SetOffset(i, layout.Offset{Y: h})
		h += s.Height
		w = max(w, s.Width)
	}
	return layout.Size{Width: w, Height: h + r.height}
}

func (r *columnRender) IntrinsicSize(*layout.IntrinsicContext, layout.Dimension, float32) float32 {
	return r.height
}

func (r *columnRender) Paint(layout.Size) *layout.Canvas { return nil }

// label is a stateless leaf with an optional key.
type label struct {
	StatelessBase
	key  any
	text string
}

func (l *label) Key() any                   { return l.key }
func (l *label) Build(*BuildContext) Widget { return nil }

// spacer is a stateless leaf of a different type than label.
type spacer struct {
	StatelessBase
	n int
}

func (s *spacer) Build(*BuildContext) Widget { return nil }

// counter is a stateful widget whose state records its lifecycle.
type counter struct {
	StatefulBase
	step  int
	child Widget
}

func (c *counter) CreateState() State { return &counterState{} }

type counterState struct {
	StateBase
	count    int
	inits    int
	updates  int
	disposes int
	builds   int
	log      []int
	size     layout.Size

	add Callback[int]
}

func (s *counterState) InitState() { s.inits++ }

func (s *counterState) DidUpdateWidget(StatefulWidget) { s.updates++ }

func (s *counterState) Dispose() {
	s.disposes++
	s.StateBase.Dispose()
}

func (s *counterState) Build(ctx *BuildContext) Widget {
	s.builds++
	s.add = NewCallback(ctx, func(ctx *CallbackContext, n int) {
		ctx.SetState(func() {
			s.count += n
			s.log = append(s.log, n)
		})
	})
	if w := ctx.Widget().(*counter).child; w != nil {
		return w
	}
	return &label{text: "count"}
}

func newTestEngine(t *testing.T, root Widget, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Nop()), WithVerify(true)}, opts...)
	return NewEngine(root, opts...)
}

func mustRoot(t *testing.T, e *Engine) ElementID {
	t.Helper()
	root, ok := e.Root()
	if !ok {
		t.Fatal("engine has no root")
	}
	return root
}

func mustPanic[T any](t *testing.T, fn func()) T {
	t.Helper()
	var got T
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic")
			}
			v, ok := r.(T)
			if !ok {
				t.Fatalf("panic value %T (%v), want %T", r, r, got)
			}
			got = v
		}()
		fn()
	}()
	return got
}
