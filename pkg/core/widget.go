package core

import (
	"fmt"
	"reflect"

	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/tree"
)

// ElementID identifies an element in the element tree. The zero ID means
// "no element".
type ElementID uint64

func (id ElementID) String() string {
	if id == 0 {
		return "none"
	}
	return fmt.Sprintf("%d:%d", tree.Index(id), tree.Generation(id))
}

// ElementTree is the arena tree holding every live element.
type ElementTree = tree.Tree[ElementID, Element]

// Widget is an immutable description of part of the tree.
type Widget interface {
	// CreateElement returns a fresh element for this kind of widget.
	CreateElement() Element
	// Key returns the widget's identity key, or nil.
	Key() any
}

// UpdateResult is the outcome of offering a new widget to an element.
type UpdateResult int

const (
	// Noop means the widget is identical; nothing below it changes.
	Noop UpdateResult = iota
	// RebuildNecessary means the element accepted the widget and must
	// rebuild.
	RebuildNecessary
	// Invalid means the element cannot hold the widget and must be
	// replaced.
	Invalid
)

func (r UpdateResult) String() string {
	switch r {
	case Noop:
		return "noop"
	case RebuildNecessary:
		return "rebuild"
	default:
		return "invalid"
	}
}

// Lifecycle is the mount stage of an element.
type Lifecycle int

const (
	Unmounted Lifecycle = iota
	Mounted
)

func (l Lifecycle) String() string {
	if l == Mounted {
		return "mounted"
	}
	return "unmounted"
}

// StatelessWidget builds a single child from its own configuration.
type StatelessWidget interface {
	Widget
	Build(ctx *BuildContext) Widget
}

// StatefulWidget creates a State that persists across rebuilds.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// State is the mutable half of a stateful widget.
type State interface {
	InitState()
	Build(ctx *BuildContext) Widget
	DidUpdateWidget(oldWidget StatefulWidget)
	Dispose()
}

// RenderObjectWidget owns a render object in the render-object tree.
// Children are supplied by implementing ChildWidget() Widget or
// Children() []Widget.
type RenderObjectWidget interface {
	Widget
	CreateRenderObject(ctx *RenderContext) layout.RenderObject
	UpdateRenderObject(ctx *RenderContext, renderObject layout.RenderObject)
}

// InheritedWidget exposes itself to descendants through [DependOn].
type InheritedWidget interface {
	Widget
	ChildWidget() Widget
	// UpdateShouldNotify reports whether dependents must rebuild when
	// this widget replaces oldWidget.
	UpdateShouldNotify(oldWidget InheritedWidget) bool
}

// StatelessBase provides default CreateElement and Key implementations for
// stateless widgets:
//
//	type Greeting struct {
//	    core.StatelessBase
//	    Name string
//	}
//
//	func (g *Greeting) Build(ctx *core.BuildContext) core.Widget { ... }
type StatelessBase struct{}

// CreateElement returns a new StatelessElement.
func (StatelessBase) CreateElement() Element { return &StatelessElement{} }

// Key returns nil (no key).
func (StatelessBase) Key() any { return nil }

// StatefulBase provides default CreateElement and Key implementations for
// stateful widgets:
//
//	type Counter struct {
//	    core.StatefulBase
//	}
//
//	func (*Counter) CreateState() core.State { return &counterState{} }
type StatefulBase struct{}

// CreateElement returns a new StatefulElement.
func (StatefulBase) CreateElement() Element { return &StatefulElement{} }

// Key returns nil (no key).
func (StatefulBase) Key() any { return nil }

// InheritedBase provides default CreateElement and Key implementations for
// inherited widgets. Implement [InheritedWidget.ChildWidget] and
// [InheritedWidget.UpdateShouldNotify] alongside it.
type InheritedBase struct{}

// CreateElement returns a new InheritedElement.
func (InheritedBase) CreateElement() Element { return &InheritedElement{} }

// Key returns nil (no key).
func (InheritedBase) Key() any { return nil }

// RenderObjectBase provides default CreateElement and Key implementations
// for render object widgets.
type RenderObjectBase struct{}

// CreateElement returns a new RenderObjectElement.
func (RenderObjectBase) CreateElement() Element { return &RenderObjectElement{} }

// Key returns nil (no key).
func (RenderObjectBase) Key() any { return nil }

// Keyed wraps a key value so it can be embedded in a widget:
//
//	type Row struct {
//	    core.StatelessBase
//	    core.Keyed
//	}
//
//	&Row{Keyed: core.Keyed{ID: 3}}
//
// When both a base type and Keyed are embedded, the widget must define Key
// itself to resolve the ambiguity.
type Keyed struct {
	ID any
}

// Key returns the wrapped key.
func (k Keyed) Key() any { return k.ID }

// Builder is a widget whose child comes from a closure.
type Builder struct {
	// ID is an optional key.
	ID any
	// Fn builds the child. A nil return means no child.
	Fn func(ctx *BuildContext) Widget
}

// CreateElement returns a new BuilderElement.
func (*Builder) CreateElement() Element { return &BuilderElement{} }

// Key returns b.ID.
func (b *Builder) Key() any { return b.ID }

// canUpdateWidget reports whether an element holding existing may accept
// next: same concrete type and equal keys.
func canUpdateWidget(existing, next Widget) bool {
	if existing == nil || next == nil {
		return false
	}
	if reflect.TypeOf(existing) != reflect.TypeOf(next) {
		return false
	}
	return keysEqual(existing.Key(), next.Key())
}

// keysEqual compares keys with == when both are hashable, so that every
// reconcile pass agrees on identity. Other keys fall back to DeepEqual.
func keysEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if hashable(a) && hashable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// identical reports whether a and b are the same widget allocation. Only
// pointer widgets can be identical; value widgets always rebuild.
func identical(a, b Widget) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || va.Type() != vb.Type() {
		return false
	}
	return va.Pointer() == vb.Pointer()
}

// distinctIdentity reports whether w is a pointer widget whose address is
// unique to one allocation. Pointers to zero-size types may alias.
func distinctIdentity(w Widget) (uintptr, bool) {
	v := reflect.ValueOf(w)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem().Size() == 0 {
		return 0, false
	}
	return v.Pointer(), true
}

func widgetName(w Widget) string {
	if w == nil {
		return "<nil>"
	}
	return reflect.TypeOf(w).String()
}
