package widgets

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// DefaultTextColor is used when Text.Color is zero.
const DefaultTextColor layout.Color = 0xff000000

// Text displays a string in the 7x13 bitmap face.
//
//   - Wrap=false (default): a single line that may overflow its width.
//   - Wrap=true: words wrap at the constraint width.
//   - MaxLines limits the visible lines; zero means no limit.
type Text struct {
	core.RenderObjectBase
	// Content is the text to display.
	Content string
	// Color of the glyphs.
	Color    layout.Color
	MaxLines int
	Wrap     bool
}

func (t Text) CreateRenderObject(*core.RenderContext) layout.RenderObject {
	r := &renderText{}
	t.apply(r)
	return r
}

func (t Text) UpdateRenderObject(_ *core.RenderContext, renderObject layout.RenderObject) {
	if r, ok := renderObject.(*renderText); ok {
		t.apply(r)
	}
}

func (t Text) apply(r *renderText) {
	r.text = t.Content
	r.color = t.Color
	if r.color == 0 {
		r.color = DefaultTextColor
	}
	r.maxLines = t.MaxLines
	r.wrap = t.Wrap
}

type renderText struct {
	text     string
	color    layout.Color
	maxLines int
	wrap     bool

	lines []string
}

var textFace font.Face = basicfont.Face7x13

func toFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// MeasureText returns the advance width of s.
func MeasureText(s string) float32 {
	return toFloat(font.MeasureString(textFace, s))
}

// LineHeight returns the height of one line of text.
func LineHeight() float32 {
	return toFloat(textFace.Metrics().Height)
}

func (r *renderText) Layout(_ *layout.LayoutContext, constraints layout.Constraints) layout.Size {
	maxWidth := float32(-1)
	if r.wrap && constraints.HasBoundedWidth() {
		maxWidth = constraints.MaxWidth
	}
	r.lines = breakLines(r.text, maxWidth)
	if r.maxLines > 0 && len(r.lines) > r.maxLines {
		r.lines = r.lines[:r.maxLines]
	}

	var width float32
	for _, line := range r.lines {
		width = max(width, MeasureText(line))
	}
	return constraints.Constrain(layout.Size{
		Width:  width,
		Height: LineHeight() * float32(len(r.lines)),
	})
}

func (r *renderText) IntrinsicSize(_ *layout.IntrinsicContext, d layout.Dimension, cross float32) float32 {
	switch d {
	case layout.MinWidth:
		var widest float32
		for _, word := range strings.Fields(r.text) {
			widest = max(widest, MeasureText(word))
		}
		if !r.wrap {
			return MeasureText(r.text)
		}
		return widest
	case layout.MaxWidth:
		return MeasureText(r.text)
	default:
		width := float32(-1)
		if r.wrap && cross > 0 {
			width = cross
		}
		lines := len(breakLines(r.text, width))
		if r.maxLines > 0 {
			lines = min(lines, r.maxLines)
		}
		return LineHeight() * float32(lines)
	}
}

func (r *renderText) Paint(size layout.Size) *layout.Canvas {
	if len(r.lines) == 0 {
		return nil
	}
	c := &layout.Canvas{}
	h := LineHeight()
	for i, line := range r.lines {
		c.DrawText(line, layout.Rect{
			Offset: layout.Offset{Y: h * float32(i)},
			Size:   layout.Size{Width: MeasureText(line), Height: h},
		}, r.color)
	}
	return c
}

// breakLines splits text on newlines and, when maxWidth is non-negative,
// wraps words greedily at maxWidth. A word wider than maxWidth gets a line
// of its own.
func breakLines(text string, maxWidth float32) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if maxWidth < 0 {
			lines = append(lines, paragraph)
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if MeasureText(candidate) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}
