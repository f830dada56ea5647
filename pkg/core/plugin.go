package core

import "github.com/go-drift/retained/pkg/events"

// Plugin extends the engine. A plugin implements any subset of the hook
// interfaces below; hooks run in registration order.
type Plugin any

// PluginInitContext is passed to [InitPlugin.OnInit].
type PluginInitContext struct {
	Events   *events.Bus
	Elements Elements
}

// PluginContext is passed to update hooks.
type PluginContext struct {
	Elements Elements
	dirty    *DirtySet
}

// MarkDirty schedules id to rebuild.
func (c *PluginContext) MarkDirty(id ElementID) { c.dirty.Insert(id) }

// PluginElementContext is passed to per-element hooks.
type PluginElementContext struct {
	Elements Elements
	ID       ElementID
	Parent   ElementID
	Element  Element
	dirty    *DirtySet
}

// MarkDirty schedules id to rebuild.
func (c *PluginElementContext) MarkDirty(id ElementID) { c.dirty.Insert(id) }

// InitPlugin runs once when the engine is created, before the root spawns.
type InitPlugin interface {
	OnInit(ctx *PluginInitContext)
}

// BeforeUpdatePlugin runs at the start of every update.
type BeforeUpdatePlugin interface {
	OnBeforeUpdate(ctx *PluginContext)
}

// AfterUpdatePlugin runs at the end of every update.
type AfterUpdatePlugin interface {
	OnAfterUpdate(ctx *PluginContext)
}

// MountPlugin runs after an element mounts.
type MountPlugin interface {
	OnMount(ctx *PluginElementContext)
}

// BuildPlugin runs before an element builds.
type BuildPlugin interface {
	OnBuild(ctx *PluginElementContext)
}

// UnmountPlugin runs before an element unmounts.
type UnmountPlugin interface {
	OnUnmount(ctx *PluginElementContext)
}

// PluginOf returns the first registered plugin of type T.
func PluginOf[T any](e *Engine) (T, bool) {
	for _, p := range e.plugins {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
