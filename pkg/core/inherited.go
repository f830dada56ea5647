package core

import "reflect"

// dependOnAllAspects marks a dependent that registered without an aspect.
var dependOnAllAspects = &struct{}{}

// AspectAwareInheritedWidget narrows notifications to the dependents whose
// registered aspects changed.
type AspectAwareInheritedWidget interface {
	InheritedWidget
	UpdateShouldNotifyDependent(oldWidget InheritedWidget, aspects map[any]struct{}) bool
}

// InheritedElement hosts an [InheritedWidget] and tracks the elements that
// depend on it.
//
// When the widget is replaced and UpdateShouldNotify returns true, every
// dependent is marked dirty during the element's next build.
//
// Aspect sets only grow during an element's lifetime. A dependent that stops
// reading an aspect keeps it registered and may rebuild more than needed.
type InheritedElement struct {
	elementBase
	dependents map[ElementID]map[any]struct{}
	notify     []ElementID
}

func (e *InheritedElement) Update(newWidget Widget) UpdateResult {
	oldWidget, _ := e.widget.(InheritedWidget)
	result := e.elementBase.Update(newWidget)
	if result != RebuildNecessary || oldWidget == nil {
		return result
	}

	next := newWidget.(InheritedWidget)
	if !next.UpdateShouldNotify(oldWidget) {
		return result
	}
	aspectAware, hasAspects := next.(AspectAwareInheritedWidget)
	for dependent, aspects := range e.dependents {
		if hasAspects {
			if _, all := aspects[dependOnAllAspects]; !all && len(aspects) > 0 &&
				!aspectAware.UpdateShouldNotifyDependent(oldWidget, aspects) {
				continue
			}
		}
		e.notify = append(e.notify, dependent)
	}
	return result
}

func (e *InheritedElement) Build(ctx *BuildContext) []Widget {
	for _, dependent := range e.notify {
		ctx.MarkDirty(dependent)
	}
	e.notify = e.notify[:0]
	return single(e.widget.(InheritedWidget).ChildWidget())
}

func (e *InheritedElement) Unmount(ctx *UnmountContext) {
	e.elementBase.Unmount(ctx)
	e.dependents = nil
	e.notify = nil
}

// Dependents returns the number of registered dependents.
func (e *InheritedElement) Dependents() int {
	return len(e.dependents)
}

func (e *InheritedElement) addDependent(id ElementID, aspect any) {
	if e.dependents == nil {
		e.dependents = make(map[ElementID]map[any]struct{})
	}
	aspects := e.dependents[id]
	if aspects == nil {
		aspects = make(map[any]struct{})
		e.dependents[id] = aspects
	}
	if aspect == nil {
		aspect = dependOnAllAspects
	}
	aspects[aspect] = struct{}{}
}

// DependOn returns the nearest ancestor inherited widget of type W and
// registers the building element as its dependent, so it rebuilds when the
// widget changes. It returns false if no such ancestor exists.
func DependOn[W InheritedWidget](ctx *BuildContext) (W, bool) {
	return DependOnAspect[W](ctx, nil)
}

// DependOnAspect is [DependOn] with a specific aspect. A nil aspect depends
// on every change.
func DependOnAspect[W InheritedWidget](ctx *BuildContext, aspect any) (W, bool) {
	var zero W
	inherited := findInherited(ctx, reflect.TypeFor[W]())
	if inherited == nil {
		return zero, false
	}
	inherited.addDependent(ctx.id, aspect)
	self := ctx.element.base()
	if self.dependencies == nil {
		self.dependencies = make(map[ElementID]struct{})
	}
	self.dependencies[inherited.id] = struct{}{}
	return inherited.widget.(W), true
}

// FindInherited returns the nearest ancestor inherited widget of type W
// without registering a dependency.
func FindInherited[W InheritedWidget](ctx *BuildContext) (W, bool) {
	var zero W
	inherited := findInherited(ctx, reflect.TypeFor[W]())
	if inherited == nil {
		return zero, false
	}
	return inherited.widget.(W), true
}

func findInherited(ctx *BuildContext, typ reflect.Type) *InheritedElement {
	for ancestor := range ctx.tree.Ancestors(ctx.id) {
		el, ok := ctx.tree.Get(ancestor)
		if !ok {
			continue
		}
		inherited, ok := el.(*InheritedElement)
		if !ok {
			continue
		}
		if reflect.TypeOf(inherited.widget) == typ {
			return inherited
		}
	}
	return nil
}
