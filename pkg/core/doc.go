// Package core provides widgets, elements and the reconciliation engine.
//
// Widgets are immutable descriptions of what should exist at a position in
// the tree. The [Engine] compiles them into a persistent element tree,
// reconciles new widget output against existing elements on every rebuild,
// and keeps a separate render-object tree in sync for layout and paint.
//
// # Widget kinds
//
// Embed one of the base types to pick how a widget builds:
//
//	type Greeting struct {
//	    core.StatelessBase
//	    Name string
//	}
//
//	func (g *Greeting) Build(ctx *core.BuildContext) core.Widget {
//	    return &widgets.Text{Content: "Hello, " + g.Name}
//	}
//
// StatefulBase widgets create a [State] that survives rebuilds,
// RenderObjectBase widgets own a render object, InheritedBase widgets expose
// a value to descendants, and [Builder] wraps a closure.
//
// # Identity
//
// Reconciliation compares a new widget to the element at the same position.
// A pointer widget that is the very same allocation as the one the element
// already holds is a no-op: the element and its whole subtree are left alone.
// A widget of the same concrete type and key replaces the element's widget
// and rebuilds it. Anything else destroys the element and spawns a new one.
// Keys let elements keep their identity when siblings are reordered; keys
// must be comparable.
//
// # Updates
//
// [Engine.Update] runs two nested loops until nothing changes: rebuilds,
// dirty elements and queued callbacks are processed to a fixed point, then
// render objects are synced, destroyed elements are removed and layout runs.
// Size reactions registered with [BuildContext.OnSizeChanged] may dirty
// elements again, which starts another round. A widget that re-dirties itself
// on every layout never settles; Update does not guard against that.
//
// The engine is single-threaded. [DirtySet] and [CallbackQueue] are the only
// parts safe to use from other goroutines.
package core
