package widgets

import (
	"testing"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
)

func mount(t *testing.T, root core.Widget, viewport layout.Size) (*core.Engine, layout.RenderObjectID) {
	t.Helper()
	e := core.NewEngine(root,
		core.WithLogger(logging.Nop()),
		core.WithVerify(true),
		core.WithRootConstraints(layout.Tight(viewport)))
	e.Update()
	roots := e.RenderObjects().Roots()
	if len(roots) != 1 {
		t.Fatalf("render roots = %d, want 1", len(roots))
	}
	return e, roots[0]
}

func child(t *testing.T, e *core.Engine, parent layout.RenderObjectID, i int) layout.Node {
	t.Helper()
	children := e.RenderObjects().Children(parent)
	if i >= len(children) {
		t.Fatalf("render object has %d children, want index %d", len(children), i)
	}
	node, _ := e.RenderObjects().Get(children[i])
	return node
}

func TestColumnSpaceBetween(t *testing.T) {
	e, root := mount(t, Column{
		MainAxisAlignment: MainAxisAlignmentSpaceBetween,
		MainAxisSize:      MainAxisSizeMax,
		ChildrenWidgets: []core.Widget{
			SizedBox{Width: 10, Height: 10},
			SizedBox{Width: 20, Height: 10},
			SizedBox{Width: 10, Height: 10},
		},
	}, layout.Size{Width: 100, Height: 100})

	wantY := []float32{0, 45, 90}
	for i, y := range wantY {
		if got := child(t, e, root, i).Offset.Y; got != y {
			t.Errorf("child %d y = %v, want %v", i, got, y)
		}
	}
}

func TestRowExpandedShares(t *testing.T) {
	e, root := mount(t, Center{Child: SizedBox{Width: 90, Height: 10, Child: Row{
		MainAxisSize: MainAxisSizeMax,
		ChildrenWidgets: []core.Widget{
			Expanded{Flex: 1},
			Expanded{Flex: 2},
		},
	}}}, layout.Size{Width: 100, Height: 100})

	sized := e.RenderObjects().Children(root)[0]
	row := e.RenderObjects().Children(sized)[0]
	first := child(t, e, row, 0)
	second := child(t, e, row, 1)
	if first.Size.Width != 30 || second.Size.Width != 60 {
		t.Errorf("widths = %v, %v, want 30, 60", first.Size.Width, second.Size.Width)
	}
	if second.Offset.X != 30 {
		t.Errorf("second x = %v, want 30", second.Offset.X)
	}
}

func TestPaddingAndCenter(t *testing.T) {
	e, root := mount(t, Center{Child: Padding{
		Padding: layout.All(5),
		Child:   SizedBox{Width: 10, Height: 10},
	}}, layout.Size{Width: 100, Height: 100})

	pad := child(t, e, root, 0)
	if pad.Size != (layout.Size{Width: 20, Height: 20}) {
		t.Errorf("padding size = %v", pad.Size)
	}
	if pad.Offset != (layout.Offset{X: 40, Y: 40}) {
		t.Errorf("padding offset = %v", pad.Offset)
	}
	padID := e.RenderObjects().Children(root)[0]
	if got := child(t, e, padID, 0).Offset; got != (layout.Offset{X: 5, Y: 5}) {
		t.Errorf("child offset = %v", got)
	}
}

func TestTextMeasuresWithBitmapFace(t *testing.T) {
	if got := MeasureText("hello"); got != 35 {
		t.Fatalf("MeasureText = %v, want 35", got)
	}
	e, root := mount(t, Center{Child: Text{Content: "hello"}}, layout.Size{Width: 100, Height: 100})
	if got := child(t, e, root, 0).Size; got != (layout.Size{Width: 35, Height: LineHeight()}) {
		t.Errorf("size = %v", got)
	}
}

func TestTextWraps(t *testing.T) {
	e, root := mount(t, Center{Child: SizedBox{Width: 20, Child: Text{Content: "aa bb", Wrap: true}}},
		layout.Size{Width: 100, Height: 100})
	sized := e.RenderObjects().Children(root)[0]
	text := child(t, e, sized, 0)
	if text.Size.Height != 2*LineHeight() {
		t.Errorf("height = %v, want two lines", text.Size.Height)
	}

	lines := breakLines("one two\nthree", 1000)
	if len(lines) != 2 || lines[0] != "one two" || lines[1] != "three" {
		t.Errorf("lines = %q", lines)
	}
}

func TestTextMaxLines(t *testing.T) {
	r := &renderText{}
	Text{Content: "a\nb\nc", MaxLines: 2}.apply(r)
	if got := r.IntrinsicSize(nil, layout.MinHeight, 0); got != 2*LineHeight() {
		t.Errorf("intrinsic height = %v", got)
	}
	if r.color != DefaultTextColor {
		t.Errorf("color = %#x", r.color)
	}
}

func TestColoredBoxPaints(t *testing.T) {
	e, _ := mount(t, ColoredBox{Color: 0xff00ff00, Child: Center{Child: SizedBox{Width: 4, Height: 4}}},
		layout.Size{Width: 10, Height: 10})

	layers := e.RenderObjects().Paint()
	if len(layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(layers))
	}
	op := layers[0].Canvas.Ops[0]
	if op.Kind != layout.OpRect || op.Color != 0xff00ff00 || op.Rect.Size != (layout.Size{Width: 10, Height: 10}) {
		t.Errorf("op = %+v", op)
	}
}

func TestUpdatePropagatesToRenderObject(t *testing.T) {
	e, root := mount(t, SizedBox{Width: 10, Height: 10}, layout.Size{Width: 100, Height: 100})
	e.SetRootConstraints(layout.Loose(layout.Size{Width: 100, Height: 100}))
	e.SetRoot(SizedBox{Width: 30, Height: 20})
	e.Update()

	node, _ := e.RenderObjects().Get(root)
	if node.Size != (layout.Size{Width: 30, Height: 20}) {
		t.Errorf("size = %v", node.Size)
	}
}
