package widgets

import (
	"fmt"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
)

// MainAxisAlignment controls how children are positioned along the main axis
// (horizontal for [Row], vertical for [Column]).
type MainAxisAlignment int

const (
	// MainAxisAlignmentStart places children at the start.
	MainAxisAlignmentStart MainAxisAlignment = iota
	// MainAxisAlignmentEnd places children at the end.
	MainAxisAlignmentEnd
	// MainAxisAlignmentCenter centers children along the main axis.
	MainAxisAlignmentCenter
	// MainAxisAlignmentSpaceBetween puts free space between children only.
	MainAxisAlignmentSpaceBetween
	// MainAxisAlignmentSpaceAround puts half-sized gaps at both ends.
	MainAxisAlignmentSpaceAround
	// MainAxisAlignmentSpaceEvenly puts equal gaps everywhere, including the
	// ends.
	MainAxisAlignmentSpaceEvenly
)

func (a MainAxisAlignment) String() string {
	switch a {
	case MainAxisAlignmentStart:
		return "start"
	case MainAxisAlignmentEnd:
		return "end"
	case MainAxisAlignmentCenter:
		return "center"
	case MainAxisAlignmentSpaceBetween:
		return "space_between"
	case MainAxisAlignmentSpaceAround:
		return "space_around"
	case MainAxisAlignmentSpaceEvenly:
		return "space_evenly"
	default:
		return fmt.Sprintf("MainAxisAlignment(%d)", int(a))
	}
}

// CrossAxisAlignment controls how children are positioned along the cross
// axis.
type CrossAxisAlignment int

const (
	CrossAxisAlignmentStart CrossAxisAlignment = iota
	CrossAxisAlignmentEnd
	CrossAxisAlignmentCenter
	// CrossAxisAlignmentStretch forces children to the full cross extent.
	CrossAxisAlignmentStretch
)

func (a CrossAxisAlignment) String() string {
	switch a {
	case CrossAxisAlignmentStart:
		return "start"
	case CrossAxisAlignmentEnd:
		return "end"
	case CrossAxisAlignmentCenter:
		return "center"
	case CrossAxisAlignmentStretch:
		return "stretch"
	default:
		return fmt.Sprintf("CrossAxisAlignment(%d)", int(a))
	}
}

// MainAxisSize controls how much space a flex container takes along its
// main axis.
type MainAxisSize int

const (
	// MainAxisSizeMin shrink-wraps the children.
	MainAxisSizeMin MainAxisSize = iota
	// MainAxisSizeMax fills the available space. Required for [Expanded]
	// children to receive space.
	MainAxisSizeMax
)

// FlexFactor is implemented by render objects that take a share of the
// remaining main-axis space.
type FlexFactor interface {
	FlexFactor() int
}

// Row lays out children horizontally, left to right, without wrapping.
type Row struct {
	core.RenderObjectBase
	ChildrenWidgets    []core.Widget
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
}

// RowOf creates a Row with the given alignments and children.
func RowOf(alignment MainAxisAlignment, crossAlignment CrossAxisAlignment, size MainAxisSize, children ...core.Widget) Row {
	return Row{
		ChildrenWidgets:    children,
		MainAxisAlignment:  alignment,
		CrossAxisAlignment: crossAlignment,
		MainAxisSize:       size,
	}
}

func (r Row) Children() []core.Widget {
	return r.ChildrenWidgets
}

func (r Row) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return r.apply(&renderFlex{})
}

func (r Row) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if flex, ok := renderObject.(*renderFlex); ok {
		r.apply(flex)
	}
}

func (r Row) apply(flex *renderFlex) *renderFlex {
	flex.direction = layout.Horizontal
	flex.alignment = r.MainAxisAlignment
	flex.crossAlignment = r.CrossAxisAlignment
	flex.axisSize = r.MainAxisSize
	return flex
}

// Column lays out children vertically, top to bottom, without wrapping.
type Column struct {
	core.RenderObjectBase
	ChildrenWidgets    []core.Widget
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
}

// ColumnOf creates a Column with the given alignments and children.
func ColumnOf(alignment MainAxisAlignment, crossAlignment CrossAxisAlignment, size MainAxisSize, children ...core.Widget) Column {
	return Column{
		ChildrenWidgets:    children,
		MainAxisAlignment:  alignment,
		CrossAxisAlignment: crossAlignment,
		MainAxisSize:       size,
	}
}

func (c Column) Children() []core.Widget {
	return c.ChildrenWidgets
}

func (c Column) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	return c.apply(&renderFlex{})
}

func (c Column) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if flex, ok := renderObject.(*renderFlex); ok {
		c.apply(flex)
	}
}

func (c Column) apply(flex *renderFlex) *renderFlex {
	flex.direction = layout.Vertical
	flex.alignment = c.MainAxisAlignment
	flex.crossAlignment = c.CrossAxisAlignment
	flex.axisSize = c.MainAxisSize
	return flex
}

type renderFlex struct {
	direction      layout.Axis
	alignment      MainAxisAlignment
	crossAlignment CrossAxisAlignment
	axisSize       MainAxisSize
	// one-shot flag to avoid log spam
	unboundedFlexWarned bool
}

func (r *renderFlex) makeSize(main, cross float32) layout.Size {
	if r.direction == layout.Horizontal {
		return layout.Size{Width: main, Height: cross}
	}
	return layout.Size{Width: cross, Height: main}
}

func (r *renderFlex) makeOffset(main, cross float32) layout.Offset {
	if r.direction == layout.Horizontal {
		return layout.Offset{X: main, Y: cross}
	}
	return layout.Offset{X: cross, Y: main}
}

func (r *renderFlex) Layout(ctx *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	maxSize := layout.Size{Width: constraints.MaxWidth, Height: constraints.MaxHeight}
	maxMain := r.direction.Main(maxSize)
	bounded := r.direction == layout.Horizontal && constraints.HasBoundedWidth() ||
		r.direction == layout.Vertical && constraints.HasBoundedHeight()

	count := ctx.ChildCount()
	factors := make([]int, count)
	var mainSize, crossSize float32
	totalFlex := 0

	for i := range count {
		if flex, ok := ctx.ChildObject(i).(FlexFactor); ok && flex.FlexFactor() > 0 {
			factors[i] = flex.FlexFactor()
			totalFlex += factors[i]
			continue
		}
		s := ctx.LayoutChild(i, r.looseConstraints(maxSize))
		mainSize += r.direction.Main(s)
		crossSize = max(crossSize, r.direction.Cross(s))
	}

	var remaining float32
	if totalFlex > 0 && !bounded {
		if !r.unboundedFlexWarned {
			logging.Logger().Warn("flex children get no space on an unbounded axis",
				"axis", r.direction.String())
			r.unboundedFlexWarned = true
		}
	} else if r.axisSize == MainAxisSizeMax {
		remaining = max(maxMain-mainSize, 0)
	}

	for i, factor := range factors {
		if factor == 0 {
			continue
		}
		var allocated float32
		if totalFlex > 0 {
			allocated = remaining * float32(factor) / float32(totalFlex)
		}
		s := ctx.LayoutChild(i, r.flexConstraints(constraints, allocated))
		mainSize += r.direction.Main(s)
		crossSize = max(crossSize, r.direction.Cross(s))
	}

	finalMain := mainSize
	if r.axisSize == MainAxisSizeMax && bounded {
		finalMain = maxMain
	}
	size := constraints.Constrain(r.makeSize(finalMain, crossSize))

	freeSpace := max(0, r.direction.Main(size)-mainSize)
	spacing, cursor := r.computeSpacing(freeSpace, count)
	for i := range count {
		child := ctx.ChildSize(i)
		ctx.SetOffset(i, r.makeOffset(cursor, r.crossAxisOffset(size, child)))
		cursor += r.direction.Main(child) + spacing
	}
	return size
}

func (r *renderFlex) IntrinsicSize(ctx *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	var total float32
	for i := range ctx.ChildCount() {
		v := ctx.ChildIntrinsicSize(i, d, cross)
		if d.Axis() == r.direction {
			total += v
		} else {
			total = max(total, v)
		}
	}
	return total
}

func (r *renderFlex) Paint(layout.Size) *layout.Canvas { return nil }

func (r *renderFlex) looseConstraints(maxSize layout.Size) layout.Constraints {
	c := layout.Loose(maxSize)
	if r.crossAlignment != CrossAxisAlignmentStretch {
		return c
	}
	if r.direction == layout.Horizontal {
		c.MinHeight = maxSize.Height
	} else {
		c.MinWidth = maxSize.Width
	}
	return c
}

func (r *renderFlex) flexConstraints(constraints layout.Constraints, main float32) layout.Constraints {
	if r.direction == layout.Horizontal {
		c := layout.Constraints{MinWidth: main, MaxWidth: main, MaxHeight: constraints.MaxHeight}
		if r.crossAlignment == CrossAxisAlignmentStretch {
			c.MinHeight = c.MaxHeight
		}
		return c
	}
	c := layout.Constraints{MaxWidth: constraints.MaxWidth, MinHeight: main, MaxHeight: main}
	if r.crossAlignment == CrossAxisAlignmentStretch {
		c.MinWidth = c.MaxWidth
	}
	return c
}

func (r *renderFlex) crossAxisOffset(size, child layout.Size) float32 {
	free := r.direction.Cross(size) - r.direction.Cross(child)
	if free <= 0 {
		return 0
	}
	switch r.crossAlignment {
	case CrossAxisAlignmentEnd:
		return free
	case CrossAxisAlignmentCenter:
		return free / 2
	default:
		return 0
	}
}

// computeSpacing returns the gap between children and the leading offset.
func (r *renderFlex) computeSpacing(free float32, count int) (spacing, start float32) {
	if count == 0 {
		return 0, 0
	}
	switch r.alignment {
	case MainAxisAlignmentEnd:
		return 0, free
	case MainAxisAlignmentCenter:
		return 0, free / 2
	case MainAxisAlignmentSpaceBetween:
		if count == 1 {
			return 0, 0
		}
		return free / float32(count-1), 0
	case MainAxisAlignmentSpaceAround:
		spacing = free / float32(count)
		return spacing, spacing / 2
	case MainAxisAlignmentSpaceEvenly:
		spacing = free / float32(count+1)
		return spacing, spacing
	default:
		return 0, 0
	}
}
