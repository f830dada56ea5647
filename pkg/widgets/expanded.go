package widgets

import (
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// Expanded makes its child fill a share of the remaining main-axis space of
// a [Row] or [Column]. The parent must use MainAxisSizeMax.
//
//	Row{
//	    MainAxisSize: MainAxisSizeMax,
//	    ChildrenWidgets: []core.Widget{
//	        Expanded{Flex: 1, Child: panelA}, // 1/3 of the space
//	        Expanded{Flex: 2, Child: panelB}, // 2/3 of the space
//	    },
//	}
type Expanded struct {
	core.RenderObjectBase
	Child core.Widget
	// Flex is the share factor. Zero means 1.
	Flex int
}

func (e Expanded) ChildWidget() core.Widget {
	return e.Child
}

func (e Expanded) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return &renderExpanded{flex: e.effectiveFlex()}
}

func (e Expanded) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if r, ok := renderObject.(*renderExpanded); ok {
		r.flex = e.effectiveFlex()
	}
}

func (e Expanded) effectiveFlex() int {
	if e.Flex <= 0 {
		return 1
	}
	return e.Flex
}

type renderExpanded struct {
	flex int
}

func (r *renderExpanded) FlexFactor() int { return r.flex }

func (r *renderExpanded) Layout(ctx *layout.LayoutContext, c layout.Constraints) layout.Size {
	if ctx.ChildCount() == 0 {
		return c.Smallest()
	}
	return c.Constrain(ctx.LayoutChild(0, c))
}

func (r *renderExpanded) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	return childIntrinsic(ctx, d, cross)
}

func (r *renderExpanded) Paint(layout.Size) *layout.Canvas { return nil }

// childIntrinsic forwards an intrinsic query to the single child, if any.
func childIntrinsic(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	if ctx.ChildCount() == 0 {
		return 0
	}
	return ctx.ChildIntrinsicSize(0, d, cross)
}
