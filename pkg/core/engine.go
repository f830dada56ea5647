package core

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/go-drift/retained/pkg/config"
	"github.com/go-drift/retained/pkg/errors"
	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
	"github.com/go-drift/retained/pkg/tree"
)

// Stats counts engine work. Counters are cumulative across updates.
type Stats struct {
	Updates         int
	OuterIterations int
	InnerIterations int
	Builds          int
	Spawns          int
	Destroys        int
	Callbacks       int
	RenderCreated   int
	RenderRemoved   int
	LayoutPasses    int
	// Duration is the wall time of the most recent update.
	Duration time.Duration
}

// Engine owns the element tree and the render-object tree and reconciles
// them on every [Engine.Update].
//
// An Engine is not safe for concurrent use. Only [Engine.MarkDirty], the
// [DirtySet], the [CallbackQueue] and [Callback.Call] may be used from
// other goroutines.
type Engine struct {
	elements  *ElementTree
	renders   *layout.Tree
	pipeline  *layout.Pipeline
	bus       *events.Bus
	plugins   []Plugin
	dirty     *DirtySet
	callbacks *CallbackQueue
	logger    *slog.Logger
	verify    bool

	root ElementID

	rebuild      []ElementID
	rebuildSet   map[ElementID]struct{}
	removals     idSet[ElementID]
	syncChildren idSet[ElementID]
	updateRender idSet[ElementID]
	createRender idSet[ElementID]
	renderOwner  map[layout.RenderObjectID]ElementID

	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlugin registers a plugin. Plugins run in registration order.
func WithPlugin(p Plugin) Option {
	return func(e *Engine) { e.plugins = append(e.plugins, p) }
}

// WithEventBus makes the engine emit lifecycle events on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the engine logger. By default the engine uses
// [logging.Logger].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRootConstraints sets the constraints given to render roots.
func WithRootConstraints(c layout.Constraints) Option {
	return func(e *Engine) { e.pipeline.SetRootConstraints(c) }
}

// WithVerify enables a consistency check after every update.
func WithVerify(enabled bool) Option {
	return func(e *Engine) { e.verify = enabled }
}

// WithConfig applies the engine section of a configuration file.
func WithConfig(c config.EngineConfig) Option {
	return func(e *Engine) {
		e.verify = c.VerifyInvariants
		if c.Viewport != nil {
			e.pipeline.SetRootConstraints(layout.Tight(layout.Size{
				Width:  c.Viewport.Width,
				Height: c.Viewport.Height,
			}))
		}
	}
}

// NewEngine creates an engine. Init plugins run first; then root, if not
// nil, is mounted and scheduled to build on the first Update.
func NewEngine(root Widget, opts ...Option) *Engine {
	e := &Engine{
		elements:    tree.New[ElementID, Element](),
		renders:     layout.NewTree(),
		pipeline:    layout.NewPipeline(layout.Expand()),
		dirty:       NewDirtySet(),
		callbacks:   NewCallbackQueue(),
		rebuildSet:  make(map[ElementID]struct{}),
		renderOwner: make(map[layout.RenderObjectID]ElementID),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = events.NewBus()
	}
	if e.logger == nil {
		e.logger = logging.Logger()
	}

	for _, p := range e.plugins {
		if hook, ok := p.(InitPlugin); ok {
			hook.OnInit(&PluginInitContext{Events: e.bus, Elements: e.Elements()})
		}
	}

	if root != nil {
		e.root = e.spawn(0, root)
		e.pushRebuild(e.root)
	}
	return e
}

// Root returns the root element id.
func (e *Engine) Root() (ElementID, bool) {
	return e.root, e.root != 0 && e.elements.Contains(e.root)
}

// SetRoot replaces the root widget. A compatible widget updates the
// existing root in place; anything else replaces the whole tree. A nil
// widget removes every element on the next update.
func (e *Engine) SetRoot(widget Widget) {
	if e.root != 0 && e.elements.Contains(e.root) {
		if widget != nil && e.updateChild(e.root, widget) {
			return
		}
		e.removals.insert(e.root)
	}
	e.root = 0
	if widget != nil {
		e.root = e.spawn(0, widget)
		e.pushRebuild(e.root)
	}
}

// Elements returns a read-only view of the element tree.
func (e *Engine) Elements() Elements { return Elements{tree: e.elements} }

// RenderObjects returns a read-only view of the render-object tree.
func (e *Engine) RenderObjects() RenderObjects { return RenderObjects{tree: e.renders} }

// Contains reports whether id is a live element.
func (e *Engine) Contains(id ElementID) bool { return e.elements.Contains(id) }

// Events returns the engine's event bus.
func (e *Engine) Events() *events.Bus { return e.bus }

// DirtySet returns the set of elements scheduled to rebuild.
func (e *Engine) DirtySet() *DirtySet { return e.dirty }

// CallbackQueue returns the queue callbacks are delivered through.
func (e *Engine) CallbackQueue() *CallbackQueue { return e.callbacks }

// Stats returns a snapshot of the work counters.
func (e *Engine) Stats() Stats { return e.stats }

// SetRootConstraints changes the constraints given to render roots. Layout
// runs on the next update if they differ.
func (e *Engine) SetRootConstraints(c layout.Constraints) {
	e.pipeline.SetRootConstraints(c)
}

// MarkDirty schedules id to rebuild on the next update. It is safe to call
// from any goroutine.
func (e *Engine) MarkDirty(id ElementID) { e.dirty.Insert(id) }

// HasChanges reports whether an update would do build work.
func (e *Engine) HasChanges() bool {
	return len(e.rebuild) > 0 || !e.dirty.IsEmpty() || !e.callbacks.IsEmpty()
}

// Update runs rebuilds, callbacks, render-object sync, removals and layout
// until nothing is left to do.
func (e *Engine) Update() {
	start := time.Now()
	e.stats.Updates++

	pctx := &PluginContext{Elements: e.Elements(), dirty: e.dirty}
	for _, p := range e.plugins {
		if hook, ok := p.(BeforeUpdatePlugin); ok {
			hook.OnBeforeUpdate(pctx)
		}
	}

	for {
		e.stats.OuterIterations++
		for {
			e.stats.InnerIterations++
			e.flushRebuilds()
			e.flushDirty()
			e.flushCallbacks()
			if !e.HasChanges() {
				break
			}
		}

		e.syncRenderObjects()
		e.flushRemovals()
		e.flushLayout()

		if !e.HasChanges() {
			break
		}
	}

	for _, p := range e.plugins {
		if hook, ok := p.(AfterUpdatePlugin); ok {
			hook.OnAfterUpdate(pctx)
		}
	}

	e.stats.Duration = time.Since(start)
	e.logger.Debug("update complete",
		"elements", e.elements.Len(),
		"render_objects", e.renders.Len(),
		"duration", e.stats.Duration)

	if e.verify {
		if err := e.Verify(); err != nil {
			errors.Invariantf("engine.Update", "%v", err)
		}
	}
}

func (e *Engine) pushRebuild(id ElementID) {
	if _, ok := e.rebuildSet[id]; ok {
		return
	}
	e.rebuildSet[id] = struct{}{}
	e.rebuild = append(e.rebuild, id)
}

func (e *Engine) flushRebuilds() {
	for len(e.rebuild) > 0 {
		id := e.rebuild[0]
		e.rebuild = e.rebuild[1:]
		delete(e.rebuildSet, id)

		if !e.elements.Contains(id) || e.removals.contains(id) {
			continue
		}
		e.processRebuild(id)
	}
}

func (e *Engine) flushDirty() {
	ids := e.dirty.drain()
	if len(ids) == 0 {
		return
	}
	ids = slices.DeleteFunc(ids, func(id ElementID) bool {
		return !e.elements.Contains(id)
	})
	slices.SortStableFunc(ids, func(a, b ElementID) int {
		da, _ := e.elements.Depth(a)
		db, _ := e.elements.Depth(b)
		return da - db
	})
	for _, id := range ids {
		e.pushRebuild(id)
	}
}

func (e *Engine) flushCallbacks() {
	for _, inv := range e.callbacks.take() {
		for _, id := range inv.ids {
			e.stats.Callbacks++
			if !e.elements.Contains(id.Element) || e.removals.contains(id.Element) {
				e.logger.Debug("dropping callback for missing element", "callback", id.String())
				continue
			}
			changed, _ := tree.With(e.elements, id.Element, func(t *ElementTree, el *Element) bool {
				ctx := &CallbackContext{
					contextBase: e.contextFor(id.Element),
					element:     *el,
				}
				return (*el).Call(ctx, id, inv.arg)
			})
			if changed {
				e.pushRebuild(id.Element)
			}
		}
	}
}

func (e *Engine) flushRemovals() {
	ids := e.elements.FilterTopmost(e.removals.drain())
	queue := ids
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		el, ok := e.elements.Get(id)
		if !ok {
			continue
		}
		queue = append(queue, e.elements.Children(id)...)

		parent, _ := e.elements.Parent(id)
		e.runElementPlugins(id, parent, el, func(p Plugin, ctx *PluginElementContext) {
			if hook, ok := p.(UnmountPlugin); ok {
				hook.OnUnmount(ctx)
			}
		})
		e.elements.With(id, func(t *ElementTree, el *Element) {
			(*el).Unmount(&UnmountContext{contextBase: e.contextFor(id)})
		})
		events.Emit(e.bus, ElementDestroyedEvent{Element: id})

		if ro := el.RenderObjectID(); ro != 0 {
			e.removeRenderObject(ro)
		}
		e.elements.Remove(id)
		e.syncChildren.remove(id)
		e.updateRender.remove(id)
		e.createRender.remove(id)
		e.stats.Destroys++
		if e.root == id {
			e.root = 0
		}
		e.logger.Log(context.Background(), logging.LevelTrace, "element destroyed", "element", id.String())
	}
}

func (e *Engine) flushLayout() {
	if !e.pipeline.NeedsLayout() {
		return
	}
	e.stats.LayoutPasses++
	for _, ro := range e.pipeline.FlushLayout(e.renders) {
		owner, ok := e.renderOwner[ro]
		if !ok {
			continue
		}
		node, ok := e.renders.Get(ro)
		if !ok {
			continue
		}
		e.notifySize(owner, node.Size)
		for ancestor := range e.elements.Ancestors(owner) {
			el, ok := e.elements.Get(ancestor)
			if !ok || ownsRenderObject(el) {
				break
			}
			e.notifySize(ancestor, node.Size)
		}
	}
}

func (e *Engine) notifySize(id ElementID, size layout.Size) {
	el, ok := e.elements.Get(id)
	if !ok {
		return
	}
	for _, fn := range slices.Clone(el.base().sizeListeners) {
		fn(size)
	}
}

func (e *Engine) contextFor(id ElementID) contextBase {
	return contextBase{tree: e.elements, dirty: e.dirty, logger: e.logger, id: id}
}

func (e *Engine) runElementPlugins(id, parent ElementID, el Element, fn func(Plugin, *PluginElementContext)) {
	if len(e.plugins) == 0 {
		return
	}
	ctx := &PluginElementContext{
		Elements: e.Elements(),
		ID:       id,
		Parent:   parent,
		Element:  el,
		dirty:    e.dirty,
	}
	for _, p := range e.plugins {
		fn(p, ctx)
	}
}
