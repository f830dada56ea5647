package core

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/layout"
)

type contextBase struct {
	tree   *ElementTree
	dirty  *DirtySet
	logger *slog.Logger
	id     ElementID
}

// ID returns the id of the element the context belongs to.
func (c *contextBase) ID() ElementID { return c.id }

// Elements returns a read-only view of the element tree.
func (c *contextBase) Elements() Elements { return Elements{tree: c.tree} }

// MarkDirty schedules id to rebuild on the next pass.
func (c *contextBase) MarkDirty(id ElementID) { c.dirty.Insert(id) }

// MountContext is passed to [Element.Mount].
type MountContext struct {
	contextBase
	parent ElementID
}

// Parent returns the parent element id, or zero for the root.
func (c *MountContext) Parent() ElementID { return c.parent }

// UnmountContext is passed to [Element.Unmount].
type UnmountContext struct {
	contextBase
}

// BuildContext is passed to build functions.
type BuildContext struct {
	contextBase
	element   Element
	callbacks *CallbackQueue
	bus       *events.Bus
}

// Widget returns the widget being built.
func (c *BuildContext) Widget() Widget { return c.element.Widget() }

// Events returns the engine's event bus.
func (c *BuildContext) Events() *events.Bus { return c.bus }

// OnSizeChanged registers fn to run after layout whenever the size of the
// element's nearest render object changes. Registrations last until the
// next build of the element.
func (c *BuildContext) OnSizeChanged(fn func(size layout.Size)) {
	b := c.element.base()
	b.sizeListeners = append(b.sizeListeners, fn)
}

// CallbackContext is passed to callback functions.
type CallbackContext struct {
	contextBase
	element Element
	changed bool
}

// Widget returns the widget of the element that owns the callback.
func (c *CallbackContext) Widget() Widget { return c.element.Widget() }

// Element returns the element that owns the callback.
func (c *CallbackContext) Element() Element { return c.element }

// SetState runs fn and marks the owning element as changed, so it rebuilds
// during the current update.
func (c *CallbackContext) SetState(fn func()) {
	if fn != nil {
		fn()
	}
	c.changed = true
}

// MarkChanged marks the owning element as changed.
func (c *CallbackContext) MarkChanged() { c.changed = true }

// RenderContext is passed to render object factories.
type RenderContext struct {
	contextBase
}

// Elements is a read-only view of the element tree.
type Elements struct {
	tree *ElementTree
}

// Get returns the element stored at id.
func (e Elements) Get(id ElementID) (Element, bool) { return e.tree.Get(id) }

// Contains reports whether id is a live element.
func (e Elements) Contains(id ElementID) bool { return e.tree.Contains(id) }

// Len returns the number of elements.
func (e Elements) Len() int { return e.tree.Len() }

// Parent returns the parent of id.
func (e Elements) Parent(id ElementID) (ElementID, bool) { return e.tree.Parent(id) }

// Children returns a copy of the children of id.
func (e Elements) Children(id ElementID) []ElementID {
	return slices.Clone(e.tree.Children(id))
}

// Depth returns the depth of id.
func (e Elements) Depth(id ElementID) (int, bool) { return e.tree.Depth(id) }

// Ancestors iterates the ancestors of id from nearest to furthest.
func (e Elements) Ancestors(id ElementID) iter.Seq[ElementID] { return e.tree.Ancestors(id) }

// Subtree iterates id and its descendants in pre-order.
func (e Elements) Subtree(id ElementID) iter.Seq[ElementID] { return e.tree.Subtree(id) }

// Format prints the element tree as an indented outline.
func (e Elements) Format() string {
	return e.tree.Format(func(id ElementID, el Element) string {
		return widgetName(el.Widget()) + " #" + id.String()
	})
}

// RenderObjects is a read-only view of the render-object tree.
type RenderObjects struct {
	tree *layout.Tree
}

// Get returns a copy of the node stored at id.
func (r RenderObjects) Get(id layout.RenderObjectID) (layout.Node, bool) {
	node, ok := r.tree.Get(id)
	if !ok || node == nil {
		return layout.Node{}, false
	}
	return *node, true
}

// Contains reports whether id is a live render object.
func (r RenderObjects) Contains(id layout.RenderObjectID) bool { return r.tree.Contains(id) }

// Children returns a copy of the children of id.
func (r RenderObjects) Children(id layout.RenderObjectID) []layout.RenderObjectID {
	return slices.Clone(r.tree.Children(id))
}

// Parent returns the parent of id.
func (r RenderObjects) Parent(id layout.RenderObjectID) (layout.RenderObjectID, bool) {
	return r.tree.Parent(id)
}

// Roots returns the parentless render objects.
func (r RenderObjects) Roots() []layout.RenderObjectID {
	return slices.Collect(r.tree.Roots())
}

// Len returns the number of render objects.
func (r RenderObjects) Len() int { return r.tree.Len() }

// Paint paints every render object into layers.
func (r RenderObjects) Paint() []layout.Layer { return layout.PaintTree(r.tree) }

// Format prints the render-object tree as an indented outline.
func (r RenderObjects) Format() string {
	return r.tree.Format(func(id layout.RenderObjectID, n *layout.Node) string {
		return fmt.Sprintf("%T %vx%v @%v,%v", n.Object, n.Size.Width, n.Size.Height, n.Offset.X, n.Offset.Y)
	})
}
