package layout

import (
	"fmt"
	"math"
)

// Size is a width and height in logical pixels.
type Size struct {
	Width  float32
	Height float32
}

// Offset is a 2D position in logical pixels.
type Offset struct {
	X float32
	Y float32
}

// Add returns the component-wise sum of o and other.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Offset
	Size
}

// Axis is a layout direction.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Main returns the extent of s along a.
func (a Axis) Main(s Size) float32 {
	if a == Vertical {
		return s.Height
	}
	return s.Width
}

// Cross returns the extent of s across a.
func (a Axis) Cross(s Size) float32 {
	if a == Vertical {
		return s.Width
	}
	return s.Height
}

// Dimension selects which intrinsic size is queried.
type Dimension int

const (
	MinWidth Dimension = iota
	MaxWidth
	MinHeight
	MaxHeight
)

// Axis returns the axis the dimension measures.
func (d Dimension) Axis() Axis {
	if d == MinHeight || d == MaxHeight {
		return Vertical
	}
	return Horizontal
}

func (d Dimension) String() string {
	switch d {
	case MinWidth:
		return "min-width"
	case MaxWidth:
		return "max-width"
	case MinHeight:
		return "min-height"
	default:
		return "max-height"
	}
}

// EdgeInsets are offsets from the four edges of a box.
type EdgeInsets struct {
	Left, Top, Right, Bottom float32
}

// All returns insets of value on every edge.
func All(value float32) EdgeInsets {
	return EdgeInsets{Left: value, Top: value, Right: value, Bottom: value}
}

// Along returns the total inset along axis.
func (e EdgeInsets) Along(axis Axis) float32 {
	if axis == Vertical {
		return e.Top + e.Bottom
	}
	return e.Left + e.Right
}

// Constraints bound the size a render object may choose.
type Constraints struct {
	MinWidth  float32
	MaxWidth  float32
	MinHeight float32
	MaxHeight float32
}

var inf = float32(math.Inf(1))

// Expand returns unbounded constraints: any non-negative size is allowed.
// The engine lays out every render root with these unless a viewport is
// configured.
func Expand() Constraints {
	return Constraints{MaxWidth: inf, MaxHeight: inf}
}

// Tight returns constraints that allow exactly size.
func Tight(size Size) Constraints {
	return Constraints{
		MinWidth: size.Width, MaxWidth: size.Width,
		MinHeight: size.Height, MaxHeight: size.Height,
	}
}

// Loose returns constraints that allow any size up to size.
func Loose(size Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// IsTight reports whether exactly one size satisfies c.
func (c Constraints) IsTight() bool {
	return c.MinWidth >= c.MaxWidth && c.MinHeight >= c.MaxHeight
}

// HasBoundedWidth reports whether MaxWidth is finite.
func (c Constraints) HasBoundedWidth() bool {
	return !math.IsInf(float64(c.MaxWidth), 1)
}

// HasBoundedHeight reports whether MaxHeight is finite.
func (c Constraints) HasBoundedHeight() bool {
	return !math.IsInf(float64(c.MaxHeight), 1)
}

// Constrain clamps size into c.
func (c Constraints) Constrain(size Size) Size {
	return Size{
		Width:  clamp(size.Width, c.MinWidth, c.MaxWidth),
		Height: clamp(size.Height, c.MinHeight, c.MaxHeight),
	}
}

// Biggest returns the largest size allowed by c. Unbounded axes fall back to
// the minimum.
func (c Constraints) Biggest() Size {
	s := Size{Width: c.MaxWidth, Height: c.MaxHeight}
	if !c.HasBoundedWidth() {
		s.Width = c.MinWidth
	}
	if !c.HasBoundedHeight() {
		s.Height = c.MinHeight
	}
	return s
}

// Smallest returns the smallest size allowed by c.
func (c Constraints) Smallest() Size {
	return Size{Width: c.MinWidth, Height: c.MinHeight}
}

// Loosen removes the minimum bounds.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Deflate shrinks c by insets, never below zero.
func (c Constraints) Deflate(insets EdgeInsets) Constraints {
	h := insets.Along(Horizontal)
	v := insets.Along(Vertical)
	return Constraints{
		MinWidth:  max(0, c.MinWidth-h),
		MaxWidth:  max(0, c.MaxWidth-h),
		MinHeight: max(0, c.MinHeight-v),
		MaxHeight: max(0, c.MaxHeight-v),
	}
}

func (c Constraints) String() string {
	return fmt.Sprintf("Constraints(w: %g..%g, h: %g..%g)", c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
