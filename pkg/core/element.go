package core

import (
	"reflect"
	"time"

	"github.com/go-drift/retained/pkg/errors"
	"github.com/go-drift/retained/pkg/layout"
)

// Element is the live instance of a widget at one position in the tree.
//
// The set of element kinds is closed: [StatelessElement],
// [StatefulElement], [RenderObjectElement], [InheritedElement] and
// [BuilderElement]. Widgets choose one through CreateElement.
type Element interface {
	// Widget returns the widget the element currently holds.
	Widget() Widget
	// Lifecycle reports whether the element is mounted.
	Lifecycle() Lifecycle
	// RenderObjectID returns the element's render object, or zero.
	RenderObjectID() layout.RenderObjectID

	// Mount is called once, right after the element is inserted.
	Mount(ctx *MountContext)
	// Unmount is called once, right before the element is removed.
	Unmount(ctx *UnmountContext)
	// Update offers a new widget for this position.
	Update(newWidget Widget) UpdateResult
	// Build returns the child widgets, in order.
	Build(ctx *BuildContext) []Widget
	// Call dispatches a queued callback invocation and reports whether the
	// element changed.
	Call(ctx *CallbackContext, id CallbackID, arg any) bool

	base() *elementBase
}

type elementBase struct {
	id           ElementID
	widget       Widget
	self         Element
	lifecycle    Lifecycle
	renderObject layout.RenderObjectID

	// Reset at the start of every build; ids are positional.
	callbacks     []func(ctx *CallbackContext, arg any)
	sizeListeners []func(size layout.Size)

	// Inherited elements this element depends on.
	dependencies map[ElementID]struct{}
}

func (e *elementBase) base() *elementBase { return e }

func (e *elementBase) Widget() Widget { return e.widget }

func (e *elementBase) Lifecycle() Lifecycle { return e.lifecycle }

func (e *elementBase) RenderObjectID() layout.RenderObjectID { return e.renderObject }

// ID returns the element's id.
func (e *elementBase) ID() ElementID { return e.id }

func (e *elementBase) Mount(*MountContext) {
	e.lifecycle = Mounted
}

func (e *elementBase) Unmount(ctx *UnmountContext) {
	e.lifecycle = Unmounted
	e.releaseDependencies(ctx)
	e.callbacks = nil
	e.sizeListeners = nil
}

// Update accepts newWidget when it is compatible. Kinds that need to react
// to the old widget wrap this.
func (e *elementBase) Update(newWidget Widget) UpdateResult {
	if identical(e.widget, newWidget) {
		return Noop
	}
	if !canUpdateWidget(e.widget, newWidget) {
		return Invalid
	}
	e.widget = newWidget
	return RebuildNecessary
}

func (e *elementBase) Call(ctx *CallbackContext, id CallbackID, arg any) bool {
	if int(id.Index) >= len(e.callbacks) {
		ctx.logger.Warn("callback slot does not exist",
			"callback", id.String(),
			"widget", widgetName(e.widget),
			"slots", len(e.callbacks))
		return false
	}
	e.callbacks[id.Index](ctx, arg)
	return ctx.changed
}

// beginBuild clears per-build registrations.
func (e *elementBase) beginBuild() {
	e.callbacks = e.callbacks[:0]
	e.sizeListeners = e.sizeListeners[:0]
}

func (e *elementBase) releaseDependencies(ctx *UnmountContext) {
	for dep := range e.dependencies {
		el, ok := ctx.tree.Node(dep)
		if !ok {
			continue
		}
		if inherited, ok := el.Value().(*InheritedElement); ok {
			delete(inherited.dependents, e.id)
		}
	}
	e.dependencies = nil
}

// safeBuild runs buildFn with panic recovery. A panic is reported to the
// error handler and raised again as *errors.BuildError; builds are expected
// to be total, so there is no fallback widget.
func (e *elementBase) safeBuild(buildFn func() Widget) Widget {
	var built Widget
	var buildErr *errors.BuildError

	func() {
		defer func() {
			if r := recover(); r != nil {
				if be, ok := r.(*errors.BuildError); ok {
					// Already reported by a nested build.
					buildErr = be
					return
				}
				buildErr = &errors.BuildError{
					Widget:     widgetName(e.widget),
					Element:    reflect.TypeOf(e.self).String(),
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				}
				if err, ok := r.(error); ok {
					buildErr.Err = err
				}
				errors.ReportBuildError(buildErr)
			}
		}()
		built = buildFn()
	}()

	if buildErr != nil {
		panic(buildErr)
	}
	return built
}

func single(w Widget) []Widget {
	if w == nil {
		return nil
	}
	return []Widget{w}
}

// StatelessElement hosts a StatelessWidget.
type StatelessElement struct {
	elementBase
}

func (e *StatelessElement) Build(ctx *BuildContext) []Widget {
	widget := e.widget.(StatelessWidget)
	return single(e.safeBuild(func() Widget {
		return widget.Build(ctx)
	}))
}

// StatefulElement hosts a StatefulWidget and its State.
type StatefulElement struct {
	elementBase
	state State
}

// State returns the element's state, or nil before mount.
func (e *StatefulElement) State() State {
	return e.state
}

func (e *StatefulElement) Mount(ctx *MountContext) {
	e.elementBase.Mount(ctx)
	widget := e.widget.(StatefulWidget)
	e.state = widget.CreateState()
	if b, ok := e.state.(stateBase); ok {
		b.state().attach(e.id, ctx.dirty)
	}
	e.state.InitState()
}

func (e *StatefulElement) Update(newWidget Widget) UpdateResult {
	oldWidget, _ := e.widget.(StatefulWidget)
	result := e.elementBase.Update(newWidget)
	if result == RebuildNecessary && e.state != nil {
		e.state.DidUpdateWidget(oldWidget)
	}
	return result
}

func (e *StatefulElement) Unmount(ctx *UnmountContext) {
	e.elementBase.Unmount(ctx)
	if e.state != nil {
		e.state.Dispose()
	}
}

func (e *StatefulElement) Build(ctx *BuildContext) []Widget {
	return single(e.safeBuild(func() Widget {
		return e.state.Build(ctx)
	}))
}

// RenderObjectElement hosts a RenderObjectWidget. It is the only element
// kind that owns a render object.
type RenderObjectElement struct {
	elementBase
}

func (e *RenderObjectElement) Build(*BuildContext) []Widget {
	switch typed := e.widget.(type) {
	case interface{ Children() []Widget }:
		children := typed.Children()
		out := make([]Widget, 0, len(children))
		for _, child := range children {
			if child != nil {
				out = append(out, child)
			}
		}
		return out
	case interface{ ChildWidget() Widget }:
		return single(typed.ChildWidget())
	}
	return nil
}

// BuilderElement hosts a [Builder].
type BuilderElement struct {
	elementBase
}

func (e *BuilderElement) Build(ctx *BuildContext) []Widget {
	builder := e.widget.(*Builder)
	if builder.Fn == nil {
		return nil
	}
	return single(e.safeBuild(func() Widget {
		return builder.Fn(ctx)
	}))
}

// inflate creates the element for widget.
func inflate(widget Widget) Element {
	element := widget.CreateElement()
	b := element.base()
	b.widget = widget
	b.self = element
	return element
}

// ownsRenderObject reports whether element is of a kind that owns a render
// object.
func ownsRenderObject(element Element) bool {
	_, ok := element.(*RenderObjectElement)
	return ok
}
