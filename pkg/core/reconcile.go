package core

import (
	"context"
	"reflect"
	"slices"

	"github.com/go-drift/retained/pkg/errors"
	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/logging"
	"github.com/go-drift/retained/pkg/tree"
)

// spawn inflates widget, inserts it as the last child of parent and mounts
// it.
func (e *Engine) spawn(parent ElementID, widget Widget) ElementID {
	el := inflate(widget)
	id := e.elements.Add(parent, el)
	el.base().id = id

	e.elements.With(id, func(t *ElementTree, el *Element) {
		(*el).Mount(&MountContext{contextBase: e.contextFor(id), parent: parent})
	})
	e.runElementPlugins(id, parent, el, func(p Plugin, ctx *PluginElementContext) {
		if hook, ok := p.(MountPlugin); ok {
			hook.OnMount(ctx)
		}
	})
	events.Emit(e.bus, ElementSpawnedEvent{Parent: parent, Element: id})

	if ownsRenderObject(el) {
		e.createRender.insert(id)
	}
	e.stats.Spawns++
	e.logger.Log(context.Background(), logging.LevelTrace, "element spawned",
		"element", id.String(), "parent", parent.String(), "widget", widgetName(widget))
	return id
}

// processRebuild rebuilds id. Its current children are queued for removal
// up front; reconciliation takes back the ones it keeps.
func (e *Engine) processRebuild(id ElementID) {
	for _, child := range e.elements.Children(id) {
		e.removals.insert(child)
	}
	e.processBuild(id)
}

// processBuild builds id and, breadth first, every element spawned under
// it.
func (e *Engine) processBuild(id ElementID) {
	queue := []ElementID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		el, ok := e.elements.Get(current)
		if !ok {
			continue
		}
		parent, _ := e.elements.Parent(current)
		e.runElementPlugins(current, parent, el, func(p Plugin, ctx *PluginElementContext) {
			if hook, ok := p.(BuildPlugin); ok {
				hook.OnBuild(ctx)
			}
		})

		var built []Widget
		e.elements.With(current, func(t *ElementTree, el *Element) {
			b := (*el).base()
			b.beginBuild()
			ctx := &BuildContext{
				contextBase: e.contextFor(current),
				element:     *el,
				callbacks:   e.callbacks,
				bus:         e.bus,
			}
			built = (*el).Build(ctx)
		})
		e.stats.Builds++
		events.Emit(e.bus, ElementRebuiltEvent{Element: current})

		queue = append(queue, e.reconcile(current, built)...)
	}
}

// reconcile matches the widgets built by id against its existing children
// and returns the children it spawned.
//
// Matching runs in four passes: equal prefix, equal suffix, then keyed
// lookup over the remaining old children. Unmatched widgets always get new
// elements; unmatched old children stay queued for removal.
func (e *Engine) reconcile(id ElementID, widgets []Widget) []ElementID {
	seen := make(map[uintptr]struct{}, len(widgets))
	for _, w := range widgets {
		if ptr, ok := distinctIdentity(w); ok {
			if _, dup := seen[ptr]; dup {
				errors.Invariantf("engine.Build", "widget %s (%p) is used more than once among the children of %s",
					widgetName(w), w, id)
			}
			seen[ptr] = struct{}{}
		}
	}

	old := slices.Clone(e.elements.Children(id))
	result := make([]ElementID, len(widgets))
	var spawned []ElementID

	oldTop, newTop := 0, 0
	oldBottom, newBottom := len(old)-1, len(widgets)-1

	for oldTop <= oldBottom && newTop <= newBottom {
		if !e.updateChild(old[oldTop], widgets[newTop]) {
			break
		}
		result[newTop] = old[oldTop]
		oldTop++
		newTop++
	}

	for oldTop <= oldBottom && newTop <= newBottom {
		if !e.updateChild(old[oldBottom], widgets[newBottom]) {
			break
		}
		result[newBottom] = old[oldBottom]
		oldBottom--
		newBottom--
	}

	var keyed map[any]ElementID
	for i := oldTop; i <= oldBottom; i++ {
		el, ok := e.elements.Get(old[i])
		if !ok {
			continue
		}
		if key := el.Widget().Key(); hashable(key) {
			if keyed == nil {
				keyed = make(map[any]ElementID)
			}
			keyed[key] = old[i]
		}
	}

	for ; newTop <= newBottom; newTop++ {
		w := widgets[newTop]
		var child ElementID
		if key := w.Key(); hashable(key) {
			if existing, ok := keyed[key]; ok {
				delete(keyed, key)
				if e.updateChild(existing, w) {
					child = existing
				}
			}
		}
		if child == 0 {
			child = e.spawn(id, w)
			spawned = append(spawned, child)
		}
		result[newTop] = child
	}

	if newTop != newBottom+1 {
		errors.Invariantf("engine.Build", "reconcile of %s ended at %d, expected %d", id, newTop, newBottom+1)
	}
	for i, child := range result {
		if child == 0 {
			errors.Invariantf("engine.Build", "reconcile of %s left child %d unassigned", id, i)
		}
	}

	if !slices.Equal(old, result) {
		e.syncChildren.insert(id)
	}
	for _, child := range result {
		e.removals.remove(child)
		if parent, _ := e.elements.Parent(child); parent != id {
			errors.Invariantf("engine.Build", "child %s of %s has parent %s", child, id, parent)
		}
		e.elements.Reparent(id, child)
	}
	return spawned
}

// updateChild offers widget to the element at id and reports whether the
// element kept its place.
func (e *Engine) updateChild(id ElementID, widget Widget) bool {
	result, ok := tree.With(e.elements, id, func(t *ElementTree, el *Element) UpdateResult {
		return (*el).Update(widget)
	})
	if !ok {
		return false
	}
	switch result {
	case Noop:
		return true
	case RebuildNecessary:
		e.pushRebuild(id)
		e.updateRender.insert(id)
		return true
	default:
		return false
	}
}

// hashable reports whether key can be used as a map key. The dynamic value
// is checked, so an interface field holding a slice makes a struct key
// unhashable.
func hashable(key any) bool {
	return key != nil && reflect.ValueOf(key).Comparable()
}
