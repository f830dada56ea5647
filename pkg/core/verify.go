package core

import (
	"fmt"
	"slices"
)

// Verify checks that the element tree and the render-object tree agree and
// that no work is left queued. It returns the first inconsistency found.
func (e *Engine) Verify() error {
	if len(e.rebuild) > 0 {
		return fmt.Errorf("%d rebuilds still queued", len(e.rebuild))
	}
	if n := e.removals.len(); n > 0 {
		return fmt.Errorf("%d removals still queued", n)
	}

	for id, node := range e.elements.All() {
		el := node.Value()
		if el.base().id != id {
			return fmt.Errorf("element %s believes it is %s", id, el.base().id)
		}
		if el.Lifecycle() != Mounted {
			return fmt.Errorf("element %s is %s", id, el.Lifecycle())
		}
		if parent := node.Parent(); parent != 0 {
			pnode, ok := e.elements.Node(parent)
			if !ok {
				return fmt.Errorf("element %s has missing parent %s", id, parent)
			}
			if !slices.Contains(pnode.Children(), id) {
				return fmt.Errorf("element %s is not a child of its parent %s", id, parent)
			}
			if node.Depth() != pnode.Depth()+1 {
				return fmt.Errorf("element %s has depth %d under parent at depth %d", id, node.Depth(), pnode.Depth())
			}
		} else if id != e.root {
			return fmt.Errorf("element %s has no parent but is not the root", id)
		}

		ro := el.RenderObjectID()
		if !ownsRenderObject(el) {
			if ro != 0 {
				return fmt.Errorf("element %s owns render object %d but cannot", id, ro)
			}
			continue
		}
		if ro == 0 || !e.renders.Contains(ro) {
			return fmt.Errorf("element %s has no render object", id)
		}
		if owner := e.renderOwner[ro]; owner != id {
			return fmt.Errorf("render object %d belongs to %s, not %s", ro, owner, id)
		}

		var wantParent uint64
		if ancestor, ok := e.renderAncestor(id); ok {
			a, _ := e.elements.Get(ancestor)
			wantParent = uint64(a.RenderObjectID())
		}
		gotParent, _ := e.renders.Parent(ro)
		if uint64(gotParent) != wantParent {
			return fmt.Errorf("render object of %s has parent %d, want %d", id, gotParent, wantParent)
		}
		if got, want := e.renders.Children(ro), e.renderChildren(id, false); !slices.Equal(got, want) {
			return fmt.Errorf("render children of %s are %v, want %v", id, got, want)
		}
	}

	for ro := range e.renders.All() {
		if _, ok := e.renderOwner[ro]; !ok {
			return fmt.Errorf("render object %d has no element", ro)
		}
	}
	if len(e.renderOwner) != e.renders.Len() {
		return fmt.Errorf("%d render owners for %d render objects", len(e.renderOwner), e.renders.Len())
	}
	return nil
}
