package widgets

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// ColoredBox paints a solid color behind its child and sizes itself to the
// child. Without a child it fills the available space.
type ColoredBox struct {
	core.RenderObjectBase
	Color layout.Color
	Child core.Widget
}

func (b ColoredBox) ChildWidget() core.Widget {
	return b.Child
}

func (b ColoredBox) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderColoredBox{color: b.Color}
}

func (b ColoredBox) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if r, ok := renderObject.(*renderColoredBox); ok {
		r.color = b.Color
	}
}

type renderColoredBox struct {
	color layout.Color
}

func (r *renderColoredBox) Layout(ctx *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	if ctx.ChildCount() == 0 {
		return constraints.Biggest()
	}
	return constraints.Constrain(ctx.LayoutChild(0, constraints))
}

func (r *renderColoredBox) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	return childIntrinsic(ctx, d, cross)
}

func (r *renderColoredBox) Paint(size layout.Size) *layout.Canvas {
	if r.color == 0 || size == (layout.Size{}) {
		return nil
	}
	c := &layout.Canvas{}
	c.DrawRect(layout.Rect{Size: size}, r.color)
	return c
}
