package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/widgets"
)

// Finder locates elements in the element tree.
type Finder interface {
	// Evaluate returns all matching elements under root (depth-first pre-order).
	Evaluate(elements core.Elements, root core.ElementID) []core.ElementID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	ids    []core.ElementID
	finder Finder
	engine *core.Engine
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.ElementID {
	if len(r.ids) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.ids[0]
}

// FirstOK returns the first match and whether there was one.
func (r FinderResult) FirstOK() (core.ElementID, bool) {
	if len(r.ids) == 0 {
		return core.ElementID(0), false
	}
	return r.ids[0], true
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.ElementID {
	if index < 0 || index >= len(r.ids) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.ids), r.describe()))
	}
	return r.ids[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.ElementID {
	return r.ids
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.ids)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.ids) > 0
}

// Element returns the first matched element. Panics if no matches.
func (r FinderResult) Element() core.Element {
	el, _ := r.engine.Elements().Get(r.First())
	return el
}

// Widget returns the widget of the first matched element. Panics if no matches.
func (r FinderResult) Widget() core.Widget {
	return r.Element().Widget()
}

// RenderNode returns the render node owned by the first matched element.
// It reports false if the element does not own a render object.
func (r FinderResult) RenderNode() (layout.Node, bool) {
	ro := r.Element().RenderObjectID()
	if ro == 0 {
		return layout.Node{}, false
	}
	return r.engine.RenderObjects().Get(ro)
}

// --- Concrete finders ---

// typeFinder matches elements whose widget is of the specified type.
type typeFinder struct {
	widgetType reflect.Type
	typeName   string
}

func (f *typeFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	return collectMatches(elements, root, func(w core.Widget) bool {
		return reflect.TypeOf(w) == f.widgetType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.typeName)
}

// ByType returns a finder that matches elements whose widget is type T.
func ByType[T core.Widget]() Finder {
	t := reflect.TypeFor[T]()
	return &typeFinder{widgetType: t, typeName: t.String()}
}

// keyFinder matches elements whose widget key equals the given key.
type keyFinder struct {
	key any
}

func (f *keyFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	return collectMatches(elements, root, func(w core.Widget) bool {
		k := w.Key()
		if k == nil || f.key == nil {
			return k == nil && f.key == nil
		}
		// Values holding slices, maps or funcs cannot be compared with ==.
		if !reflect.ValueOf(k).Comparable() || !reflect.ValueOf(f.key).Comparable() {
			return reflect.DeepEqual(k, f.key)
		}
		return k == f.key
	})
}

func (f *keyFinder) Description() string {
	return fmt.Sprintf("ByKey(%v)", f.key)
}

// ByKey returns a finder that matches elements whose widget key equals key.
func ByKey(key any) Finder {
	return &keyFinder{key: key}
}

// textFinder matches widgets.Text elements by exact content.
type textFinder struct {
	text string
}

func (f *textFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	return collectMatches(elements, root, func(w core.Widget) bool {
		t, ok := w.(widgets.Text)
		return ok && t.Content == f.text
	})
}

func (f *textFinder) Description() string {
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByText returns a finder that matches [widgets.Text] with exact content.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

// textContainingFinder matches widgets.Text elements containing substring.
type textContainingFinder struct {
	substring string
}

func (f *textContainingFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	return collectMatches(elements, root, func(w core.Widget) bool {
		t, ok := w.(widgets.Text)
		return ok && strings.Contains(t.Content, f.substring)
	})
}

func (f *textContainingFinder) Description() string {
	return fmt.Sprintf("ByTextContaining(%q)", f.substring)
}

// ByTextContaining returns a finder that matches [widgets.Text] containing
// the given substring.
func ByTextContaining(substring string) Finder {
	return &textContainingFinder{substring: substring}
}

// predicateFinder matches elements whose widget satisfies a predicate.
type predicateFinder struct {
	fn   func(core.Widget) bool
	desc string
}

func (f *predicateFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	return collectMatches(elements, root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches elements whose widget satisfies fn.
func ByPredicate(fn func(core.Widget) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	var results []core.ElementID
	seen := make(map[core.ElementID]bool)
	for _, ancestor := range f.of.Evaluate(elements, root) {
		// Search within each ancestor's subtree (skip the ancestor itself)
		for _, child := range elements.Children(ancestor) {
			for _, match := range f.matching.Evaluate(elements, child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying 'matching'
// that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds elements matching 'matching' that are ancestors
// of elements matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(elements core.Elements, root core.ElementID) []core.ElementID {
	ancestors := make(map[core.ElementID]bool)
	for _, desc := range f.of.Evaluate(elements, root) {
		for id := range elements.Ancestors(desc) {
			ancestors[id] = true
		}
	}
	if len(ancestors) == 0 {
		return nil
	}
	// Keep traversal order of the matching finder.
	var results []core.ElementID
	for _, candidate := range f.matching.Evaluate(elements, root) {
		if ancestors[candidate] {
			results = append(results, candidate)
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches elements satisfying 'matching'
// that are ancestors of elements matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// elements whose widget satisfies the predicate.
func collectMatches(elements core.Elements, root core.ElementID, predicate func(core.Widget) bool) []core.ElementID {
	var results []core.ElementID
	for id := range elements.Subtree(root) {
		el, ok := elements.Get(id)
		if ok && predicate(el.Widget()) {
			results = append(results, id)
		}
	}
	return results
}
