package widgets

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// Center fills the available space and centers its child in it. On an
// unbounded axis it shrinks to the child.
type Center struct {
	core.RenderObjectBase
	Child core.Widget
}

func (c Center) ChildWidget() core.Widget {
	return c.Child
}

func (c Center) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderCenter{}
}

func (c Center) UpdateRenderObject(*core.RenderContext, layout.RenderObject) {}

type renderCenter struct{}

func (r *renderCenter) Layout(ctx *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	if ctx.ChildCount() == 0 {
		return constraints.Biggest()
	}
	child := ctx.LayoutChild(0, constraints.Loosen())
	size := constraints.Biggest()
	if !constraints.HasBoundedWidth() {
		size.Width = max(size.Width, child.Width)
	}
	if !constraints.HasBoundedHeight() {
		size.Height = max(size.Height, child.Height)
	}
	size = constraints.Constrain(size)
	ctx.SetOffset(0, layout.Offset{
		X: (size.Width - child.Width) / 2,
		Y: (size.Height - child.Height) / 2,
	})
	return size
}

func (r *renderCenter) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	return childIntrinsic(ctx, d, cross)
}

func (r *renderCenter) Paint(layout.Size) *layout.Canvas { return nil }
