// Package layout defines the render-object contract and the layout and paint
// passes that run over the render-object tree.
//
// The engine owns the tree; render objects only see their own children
// through [LayoutContext] and [IntrinsicContext]. How a render object sizes
// itself and positions its children is entirely up to the implementation.
package layout

import (
	"github.com/go-drift/retained/pkg/tree"
)

// RenderObjectID identifies a node in the render-object tree.
type RenderObjectID uint64

// RenderObject handles layout and painting for one element.
type RenderObject interface {
	// Layout sizes the object within constraints. Implementations lay out
	// their children through ctx and position them with ctx.SetOffset.
	Layout(ctx *LayoutContext, constraints Constraints) Size
	// IntrinsicSize returns the natural extent along dimension given the
	// extent along the other axis.
	IntrinsicSize(ctx *IntrinsicContext, dimension Dimension, cross float32) float32
	// Paint returns the drawing for the object at size, or nil.
	Paint(size Size) *Canvas
}

// Node is a render-tree node: the render object plus its layout output.
type Node struct {
	Object RenderObject
	// Size is the result of the last layout.
	Size Size
	// Offset is the position relative to the parent render object.
	Offset Offset
}

// Tree is the render-object tree.
type Tree = tree.Tree[RenderObjectID, *Node]

// NewTree creates an empty render-object tree.
func NewTree() *Tree {
	return tree.New[RenderObjectID, *Node]()
}

// LayoutContext gives a render object access to its children during layout.
type LayoutContext struct {
	tree *Tree
	id   RenderObjectID
}

// ID returns the render object being laid out.
func (c *LayoutContext) ID() RenderObjectID {
	return c.id
}

// ChildCount returns the number of child render objects.
func (c *LayoutContext) ChildCount() int {
	return len(c.tree.Children(c.id))
}

// ChildObject returns the render object of the child at index, or nil.
func (c *LayoutContext) ChildObject(index int) RenderObject {
	child, ok := c.tree.Child(c.id, index)
	if !ok {
		return nil
	}
	if node, ok := c.tree.Get(child); ok {
		return node.Object
	}
	return nil
}

// LayoutChild lays out the child at index and records its size.
func (c *LayoutContext) LayoutChild(index int, constraints Constraints) Size {
	child, ok := c.tree.Child(c.id, index)
	if !ok {
		return Size{}
	}
	return layoutNode(c.tree, child, constraints)
}

// SetOffset positions the child at index relative to this object.
func (c *LayoutContext) SetOffset(index int, offset Offset) {
	child, ok := c.tree.Child(c.id, index)
	if !ok {
		return
	}
	if node, ok := c.tree.Get(child); ok {
		node.Offset = offset
	}
}

// ChildSize returns the size the child at index received in this pass.
func (c *LayoutContext) ChildSize(index int) Size {
	child, ok := c.tree.Child(c.id, index)
	if !ok {
		return Size{}
	}
	if node, ok := c.tree.Get(child); ok {
		return node.Size
	}
	return Size{}
}

// ChildIntrinsicSize queries the intrinsic size of the child at index.
func (c *LayoutContext) ChildIntrinsicSize(index int, dimension Dimension, cross float32) float32 {
	ic := IntrinsicContext{tree: c.tree, id: c.id}
	return ic.ChildIntrinsicSize(index, dimension, cross)
}

// IntrinsicContext gives a render object read access to its children while
// computing intrinsic sizes.
type IntrinsicContext struct {
	tree *Tree
	id   RenderObjectID
}

// ChildCount returns the number of child render objects.
func (c *IntrinsicContext) ChildCount() int {
	return len(c.tree.Children(c.id))
}

// ChildIntrinsicSize queries the intrinsic size of the child at index.
func (c *IntrinsicContext) ChildIntrinsicSize(index int, dimension Dimension, cross float32) float32 {
	child, ok := c.tree.Child(c.id, index)
	if !ok {
		return 0
	}
	return IntrinsicSize(c.tree, child, dimension, cross)
}

// Layout lays out the render object id and its subtree.
func Layout(t *Tree, id RenderObjectID, constraints Constraints) Size {
	return layoutNode(t, id, constraints)
}

// IntrinsicSize computes the intrinsic size of render object id.
func IntrinsicSize(t *Tree, id RenderObjectID, dimension Dimension, cross float32) float32 {
	node, ok := t.Get(id)
	if !ok || node.Object == nil {
		return 0
	}
	return node.Object.IntrinsicSize(&IntrinsicContext{tree: t, id: id}, dimension, cross)
}

func layoutNode(t *Tree, id RenderObjectID, constraints Constraints) Size {
	node, ok := t.Get(id)
	if !ok || node.Object == nil {
		return Size{}
	}
	size := constraints.Constrain(node.Object.Layout(&LayoutContext{tree: t, id: id}, constraints))
	node.Size = size
	return size
}
