package widgets

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// SizedBox constrains its child to a specific width and/or height. A zero
// dimension takes the child's size along that axis.
//
//	SizedBox{Width: 100, Height: 50, Child: child}
//	SizedBox{Height: 24} // vertical spacer
type SizedBox struct {
	core.RenderObjectBase
	Width  float32
	Height float32
	Child  core.Widget
}

// VSpace returns a vertical spacer.
func VSpace(height float32) SizedBox {
	return SizedBox{Height: height}
}

// HSpace returns a horizontal spacer.
func HSpace(width float32) SizedBox {
	return SizedBox{Width: width}
}

func (s SizedBox) ChildWidget() core.Widget {
	return s.Child
}

func (s SizedBox) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderSizedBox{width: s.Width, height: s.Height}
}

func (s SizedBox) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if box, ok := renderObject.(*renderSizedBox); ok {
		box.width = s.Width
		box.height = s.Height
	}
}

type renderSizedBox struct {
	width  float32
	height float32
}

func (r *renderSizedBox) Layout(ctx *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	desired := layout.Size{Width: r.width, Height: r.height}
	constrained := constraints.Constrain(desired)
	if ctx.ChildCount() == 0 {
		return constrained
	}

	// Tighten only the explicit dimensions.
	childConstraints := constraints
	if r.width > 0 {
		childConstraints.MinWidth = constrained.Width
		childConstraints.MaxWidth = constrained.Width
	}
	if r.height > 0 {
		childConstraints.MinHeight = constrained.Height
		childConstraints.MaxHeight = constrained.Height
	}

	size := ctx.LayoutChild(0, childConstraints)
	if r.width > 0 {
		size.Width = constrained.Width
	}
	if r.height > 0 {
		size.Height = constrained.Height
	}
	return constraints.Constrain(size)
}

func (r *renderSizedBox) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	if v := d.Axis().Main(layout.Size{Width: r.width, Height: r.height}); v > 0 {
		return v
	}
	return childIntrinsic(ctx, d, cross)
}

func (r *renderSizedBox) Paint(layout.Size) *layout.Canvas { return nil }
