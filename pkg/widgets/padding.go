package widgets

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// Padding adds empty space around its child. Without a child it is an empty
// box of the padding size.
//
//	Padding{Padding: layout.All(16), Child: child}
type Padding struct {
	core.RenderObjectBase
	Padding layout.EdgeInsets
	Child   core.Widget
}

func (p Padding) ChildWidget() core.Widget {
	return p.Child
}

func (p Padding) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderPadding{padding: p.Padding}
}

func (p Padding) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if pad, ok := renderObject.(*renderPadding); ok {
		pad.padding = p.Padding
	}
}

type renderPadding struct {
	padding layout.EdgeInsets
}

func (r *renderPadding) Layout(ctx *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	horizontal := r.padding.Along(layout.Horizontal)
	vertical := r.padding.Along(layout.Vertical)
	if ctx.ChildCount() == 0 {
		return constraints.Constrain(layout.Size{Width: horizontal, Height: vertical})
	}
	child := ctx.LayoutChild(0, constraints.Deflate(r.padding))
	ctx.SetOffset(0, layout.Offset{X: r.padding.Left, Y: r.padding.Top})
	return constraints.Constrain(layout.Size{
		Width:  child.Width + horizontal,
		Height: child.Height + vertical,
	})
}

func (r *renderPadding) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	return childIntrinsic(ctx, d, cross) + r.padding.Along(d.Axis())
}

func (r *renderPadding) Paint(layout.Size) *layout.Canvas { return nil }
