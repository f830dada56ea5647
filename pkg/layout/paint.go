package layout

// Color is a packed 0xAARRGGBB color.
type Color uint32

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpRect OpKind = iota
	OpText
)

// Op is a single recorded drawing operation in local coordinates.
type Op struct {
	Kind  OpKind
	Rect  Rect
	Text  string
	Color Color
}

// Canvas is a display list returned from [RenderObject.Paint]. Rasterizing
// it is up to the embedder.
type Canvas struct {
	Ops []Op
}

// DrawRect records a filled rectangle.
func (c *Canvas) DrawRect(r Rect, color Color) {
	c.Ops = append(c.Ops, Op{Kind: OpRect, Rect: r, Color: color})
}

// DrawText records a text run whose box is r.
func (c *Canvas) DrawText(text string, r Rect, color Color) {
	c.Ops = append(c.Ops, Op{Kind: OpText, Rect: r, Text: text, Color: color})
}

// Layer is a painted render object positioned in root coordinates.
type Layer struct {
	ID     RenderObjectID
	Offset Offset
	Size   Size
	Canvas *Canvas
}

// PaintTree walks every render root in pre-order and collects the canvases
// of the objects that paint something. Offsets are accumulated from the
// root, so each layer can be drawn independently.
func PaintTree(t *Tree) []Layer {
	var layers []Layer
	var visit func(id RenderObjectID, origin Offset)
	visit = func(id RenderObjectID, origin Offset) {
		node, ok := t.Get(id)
		if !ok {
			return
		}
		at := origin.Add(node.Offset)
		if node.Object != nil {
			if canvas := node.Object.Paint(node.Size); canvas != nil && len(canvas.Ops) > 0 {
				layers = append(layers, Layer{ID: id, Offset: at, Size: node.Size, Canvas: canvas})
			}
		}
		for _, child := range t.Children(id) {
			visit(child, at)
		}
	}
	for root := range t.Roots() {
		visit(root, Offset{})
	}
	return layers
}
