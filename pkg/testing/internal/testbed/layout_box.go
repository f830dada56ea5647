package testbed

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// LayoutBox is a fixed-size colored box for layout testing.
type LayoutBox struct {
	core.RenderObjectBase
	Width  float32
	Height float32
	Color  layout.Color
}

func (b LayoutBox) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderLayoutBox{
		width:  b.Width,
		height: b.Height,
		color:  b.Color,
	}
}

func (b LayoutBox) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if box, ok := renderObject.(*renderLayoutBox); ok {
		box.width = b.Width
		box.height = b.Height
		box.color = b.Color
	}
}

type renderLayoutBox struct {
	width  float32
	height float32
	color  layout.Color
}

func (r *renderLayoutBox) Layout(_ *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	return constraints.Constrain(layout.Size{Width: r.width, Height: r.height})
}

func (r *renderLayoutBox) IntrinsicSize(_ *layout.IntrinsicContext, d layout.Dimension, _ float32) float32 {
	switch d {
	case layout.MinWidth, layout.MaxWidth:
		return r.width
	default:
		return r.height
	}
}

func (r *renderLayoutBox) Paint(size layout.Size) *layout.Canvas {
	if r.color == 0 {
		return nil
	}
	canvas := &layout.Canvas{}
	canvas.DrawRect(layout.Rect{Size: size}, r.color)
	return canvas
}
