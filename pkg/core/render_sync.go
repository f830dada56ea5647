package core

import (
	"slices"

	"github.com/go-drift/retained/pkg/layout"
)

// syncRenderObjects brings the render-object tree in line with the element
// tree: new render objects first, then child order, then in-place updates.
func (e *Engine) syncRenderObjects() {
	for _, id := range e.createRender.drain() {
		if e.removals.contains(id) || !e.elements.Contains(id) {
			continue
		}
		e.createRenderObject(id)
	}

	for _, id := range e.syncChildren.drain() {
		if e.removals.contains(id) {
			continue
		}
		e.syncRenderChildren(id)
	}

	for _, id := range e.updateRender.drain() {
		if e.removals.contains(id) {
			continue
		}
		el, ok := e.elements.Get(id)
		if !ok || el.RenderObjectID() == 0 {
			continue
		}
		node, ok := e.renders.Get(el.RenderObjectID())
		if !ok {
			continue
		}
		widget := el.Widget().(RenderObjectWidget)
		widget.UpdateRenderObject(&RenderContext{contextBase: e.contextFor(id)}, node.Object)
		e.pipeline.MarkNeedsLayout()
	}
}

// renderAncestor returns the nearest ancestor of id that owns a render
// object.
func (e *Engine) renderAncestor(id ElementID) (ElementID, bool) {
	for ancestor := range e.elements.Ancestors(id) {
		if el, ok := e.elements.Get(ancestor); ok && ownsRenderObject(el) {
			return ancestor, true
		}
	}
	return 0, false
}

// createRenderObject creates the render object for id, creating the render
// object of its render ancestor first if needed. It returns zero if id or
// its ancestor cannot own one.
func (e *Engine) createRenderObject(id ElementID) layout.RenderObjectID {
	el, ok := e.elements.Get(id)
	if !ok || !ownsRenderObject(el) {
		return 0
	}
	if ro := el.RenderObjectID(); ro != 0 {
		return ro
	}

	var parentRO layout.RenderObjectID
	if ancestor, ok := e.renderAncestor(id); ok {
		if e.removals.contains(ancestor) {
			return 0
		}
		parentRO = e.createRenderObject(ancestor)
		if parentRO == 0 {
			return 0
		}
	}

	widget := el.Widget().(RenderObjectWidget)
	obj := widget.CreateRenderObject(&RenderContext{contextBase: e.contextFor(id)})
	ro := e.renders.Add(parentRO, &layout.Node{Object: obj})
	el.base().renderObject = ro
	e.renderOwner[ro] = id
	e.stats.RenderCreated++
	e.pipeline.MarkNeedsLayout()
	return ro
}

// syncRenderChildren orders the render children of the render object that
// id belongs to so they match the element tree, and removes the ones that
// no longer have a live element.
func (e *Engine) syncRenderChildren(id ElementID) {
	owner := id
	if el, ok := e.elements.Get(id); !ok {
		return
	} else if !ownsRenderObject(el) {
		ancestor, ok := e.renderAncestor(id)
		if !ok {
			return
		}
		owner = ancestor
	}
	if e.removals.contains(owner) {
		return
	}
	parentRO := e.createRenderObject(owner)
	if parentRO == 0 {
		return
	}

	desired := e.renderChildren(owner, true)
	for _, ro := range desired {
		e.renders.Reparent(parentRO, ro)
	}

	children := slices.Clone(e.renders.Children(parentRO))
	for _, stale := range children[:len(children)-len(desired)] {
		e.removeRenderObject(stale)
	}
	e.pipeline.MarkNeedsLayout()
}

// renderChildren returns the render objects directly below id in element
// order, looking through elements that don't own one. Missing render
// objects are created when create is set and skipped otherwise.
func (e *Engine) renderChildren(id ElementID, create bool) []layout.RenderObjectID {
	var out []layout.RenderObjectID
	for _, child := range e.elements.Children(id) {
		if e.removals.contains(child) {
			continue
		}
		el, ok := e.elements.Get(child)
		if !ok {
			continue
		}
		if !ownsRenderObject(el) {
			out = append(out, e.renderChildren(child, create)...)
			continue
		}
		ro := el.RenderObjectID()
		if ro == 0 && create {
			ro = e.createRenderObject(child)
		}
		if ro != 0 {
			out = append(out, ro)
		}
	}
	return out
}

// removeRenderObject removes ro and its render descendants, detaching them
// from their elements.
func (e *Engine) removeRenderObject(ro layout.RenderObjectID) {
	if !e.renders.Contains(ro) {
		return
	}
	ids := slices.Collect(e.renders.Subtree(ro))
	for i := len(ids) - 1; i >= 0; i-- {
		rid := ids[i]
		if owner, ok := e.renderOwner[rid]; ok {
			if el, ok := e.elements.Get(owner); ok {
				el.base().renderObject = 0
			}
			delete(e.renderOwner, rid)
		}
		e.renders.Remove(rid)
		e.stats.RenderRemoved++
	}
	e.pipeline.MarkNeedsLayout()
}
