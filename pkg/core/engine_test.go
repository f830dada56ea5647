package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/retained/pkg/config"
	"github.com/go-drift/retained/pkg/errors"
	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/layout"
)

func TestEngineBuildsRootOnFirstUpdate(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{&label{text: "a"}, &label{text: "b"}}})

	if got := e.Elements().Len(); got != 1 {
		t.Fatalf("elements before update = %d, want 1", got)
	}
	if e.Stats().Builds != 0 {
		t.Fatal("root should not build before the first update")
	}
	if !e.HasChanges() {
		t.Fatal("a fresh engine should have pending changes")
	}

	e.Update()

	root := mustRoot(t, e)
	if got := len(e.Elements().Children(root)); got != 2 {
		t.Errorf("root children = %d, want 2", got)
	}
	if got := e.RenderObjects().Len(); got != 1 {
		t.Errorf("render objects = %d, want 1", got)
	}
	if e.HasChanges() {
		t.Error("no changes expected after update")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{&label{}, &counter{}}})
	e.Update()
	before := e.Stats()

	e.Update()
	after := e.Stats()

	if after.Builds != before.Builds || after.Spawns != before.Spawns || after.Destroys != before.Destroys {
		t.Errorf("second update did work: before %+v after %+v", before, after)
	}
	if after.LayoutPasses != before.LayoutPasses {
		t.Errorf("second update ran layout")
	}
	if after.OuterIterations-before.OuterIterations != 1 {
		t.Errorf("outer iterations = %d, want 1", after.OuterIterations-before.OuterIterations)
	}
}

func TestKeyedReorderPreservesIdentity(t *testing.T) {
	a, b, c := &label{key: 1, text: "a"}, &label{key: 2, text: "b"}, &label{key: 3, text: "c"}
	e := newTestEngine(t, &column{children: []Widget{a, b, c}})

	destroyed := 0
	sub := events.Subscribe(e.Events(), func(ElementDestroyedEvent) { destroyed++ })
	defer sub.Cancel()

	e.Update()
	root := mustRoot(t, e)
	ids := e.Elements().Children(root)
	before := e.Stats()

	e.SetRoot(&column{children: []Widget{
		&label{key: 3, text: "c"},
		&label{key: 1, text: "a"},
		&label{key: 2, text: "b"},
	}})
	e.Update()

	want := []ElementID{ids[2], ids[0], ids[1]}
	if diff := cmp.Diff(want, e.Elements().Children(root)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	after := e.Stats()
	if after.Spawns != before.Spawns {
		t.Errorf("spawned %d elements, want 0", after.Spawns-before.Spawns)
	}
	if destroyed != 0 {
		t.Errorf("destroyed %d elements, want 0", destroyed)
	}
}

func TestUnkeyedMiddleIsReplaced(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{&label{text: "x"}, &spacer{n: 1}, &label{text: "z"}}})
	e.Update()
	root := mustRoot(t, e)
	ids := e.Elements().Children(root)
	before := e.Stats()

	e.SetRoot(&column{children: []Widget{&label{text: "x"}, &counter{}, &label{text: "z"}}})
	e.Update()

	got := e.Elements().Children(root)
	if len(got) != 3 {
		t.Fatalf("children = %d, want 3", len(got))
	}
	if got[0] != ids[0] || got[2] != ids[2] {
		t.Errorf("outer children changed identity: %v -> %v", ids, got)
	}
	if got[1] == ids[1] {
		t.Error("middle child should be a new element")
	}
	if e.Contains(ids[1]) {
		t.Error("replaced element should be removed")
	}

	after := e.Stats()
	if n := after.Spawns - before.Spawns; n != 1 {
		t.Errorf("spawns = %d, want 1", n)
	}
	if n := after.Destroys - before.Destroys; n != 1 {
		t.Errorf("destroys = %d, want 1", n)
	}
}

func TestUnkeyedSameTypeUpdatesInPlace(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{&label{text: "a"}}})
	e.Update()
	root := mustRoot(t, e)
	id := e.Elements().Children(root)[0]

	e.SetRoot(&column{children: []Widget{&label{text: "b"}}})
	e.Update()

	if got := e.Elements().Children(root)[0]; got != id {
		t.Fatalf("child id = %s, want %s", got, id)
	}
	w, ok := WidgetOf[*label](e, id)
	if !ok || w.text != "b" {
		t.Errorf("widget = %+v, want text b", w)
	}
}

func TestIdenticalWidgetSkipsRebuild(t *testing.T) {
	child := &counter{}
	e := newTestEngine(t, &column{children: []Widget{child}})
	e.Update()
	id := e.Elements().Children(mustRoot(t, e))[0]
	state, _ := StateOf[*counterState](e, id)

	e.SetRoot(&column{children: []Widget{child}})
	e.Update()

	if state.builds != 1 {
		t.Errorf("identical child rebuilt: builds = %d", state.builds)
	}
	if state.updates != 0 {
		t.Errorf("DidUpdateWidget called %d times", state.updates)
	}
}

func TestRemovalDestroysWholeTree(t *testing.T) {
	const n = 5
	children := make([]Widget, n)
	for i := range children {
		children[i] = &counter{}
	}
	e := newTestEngine(t, &column{children: children})

	var destroyed []ElementID
	sub := events.Subscribe(e.Events(), func(ev ElementDestroyedEvent) {
		destroyed = append(destroyed, ev.Element)
	})
	defer sub.Cancel()

	e.Update()
	total := e.Elements().Len()
	states := QueryByType[*counter](e)
	if len(states) != n {
		t.Fatalf("counters = %d, want %d", len(states), n)
	}
	var kept []*counterState
	for _, id := range states {
		s, _ := StateOf[*counterState](e, id)
		kept = append(kept, s)
	}

	e.SetRoot(nil)
	e.Update()

	if len(destroyed) != total {
		t.Errorf("destroy events = %d, want %d", len(destroyed), total)
	}
	if e.Elements().Len() != 0 || e.RenderObjects().Len() != 0 {
		t.Errorf("trees not empty: %d elements, %d render objects", e.Elements().Len(), e.RenderObjects().Len())
	}
	if _, ok := e.Root(); ok {
		t.Error("root should be gone")
	}
	for i, s := range kept {
		if s.disposes != 1 || !s.IsDisposed() {
			t.Errorf("state %d: disposes = %d", i, s.disposes)
		}
	}
}

func TestSetRootWithIncompatibleWidgetReplacesTree(t *testing.T) {
	e := newTestEngine(t, &column{})
	e.Update()
	old := mustRoot(t, e)

	e.SetRoot(&counter{})
	e.Update()

	root := mustRoot(t, e)
	if root == old || e.Contains(old) {
		t.Errorf("old root %s still present, new root %s", old, root)
	}
	if e.RenderObjects().Len() != 0 {
		t.Errorf("render objects = %d, want 0", e.RenderObjects().Len())
	}
}

func TestStatefulLifecycle(t *testing.T) {
	e := newTestEngine(t, &counter{step: 1})
	e.Update()
	root := mustRoot(t, e)
	state, ok := StateOf[*counterState](e, root)
	if !ok {
		t.Fatal("no state")
	}
	if state.inits != 1 || state.builds != 1 {
		t.Fatalf("inits = %d, builds = %d", state.inits, state.builds)
	}
	if state.ElementID() != root {
		t.Errorf("state element = %s, want %s", state.ElementID(), root)
	}

	e.SetRoot(&counter{step: 2})
	e.Update()
	same, _ := StateOf[*counterState](e, root)
	if same != state {
		t.Fatal("state was recreated")
	}
	if state.updates != 1 || state.builds != 2 {
		t.Errorf("updates = %d, builds = %d", state.updates, state.builds)
	}

	state.SetState(func() { state.count = 7 })
	if !e.HasChanges() {
		t.Fatal("SetState should schedule a rebuild")
	}
	e.Update()
	if state.builds != 3 {
		t.Errorf("builds = %d, want 3", state.builds)
	}

	e.SetRoot(nil)
	e.Update()
	if state.disposes != 1 {
		t.Errorf("disposes = %d, want 1", state.disposes)
	}
	state.SetState(nil)
	if e.HasChanges() {
		t.Error("SetState after dispose should be ignored")
	}
}

func TestRenderTreeMirrorsElementTree(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{
		&Builder{Fn: func(*BuildContext) Widget {
			return &column{key: "inner", height: 3}
		}},
		&label{},
		&column{key: "b", height: 4},
	}})
	e.Update()

	ros := e.RenderObjects()
	roots := ros.Roots()
	if len(roots) != 1 {
		t.Fatalf("render roots = %d, want 1", len(roots))
	}
	children := ros.Children(roots[0])
	if len(children) != 2 {
		t.Fatalf("render children = %d, want 2", len(children))
	}
	first, _ := ros.Get(children[0])
	second, _ := ros.Get(children[1])
	if first.Object.(*columnRender).height != 3 || second.Object.(*columnRender).height != 4 {
		t.Errorf("render children out of order")
	}
	if second.Offset.Y != 3 {
		t.Errorf("second child offset = %v, want 3", second.Offset.Y)
	}
	rootNode, _ := ros.Get(roots[0])
	if rootNode.Size.Height != 7 {
		t.Errorf("root height = %v, want 7", rootNode.Size.Height)
	}
}

func TestRenderObjectsFollowKeyedReorder(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{
		&column{key: "a", height: 1},
		&column{key: "b", height: 2},
	}})
	e.Update()
	rootRO := e.RenderObjects().Roots()[0]
	before := e.RenderObjects().Children(rootRO)
	created := e.Stats().RenderCreated

	e.SetRoot(&column{children: []Widget{
		&column{key: "b", height: 2},
		&column{key: "a", height: 1},
	}})
	e.Update()

	want := []layout.RenderObjectID{before[1], before[0]}
	if diff := cmp.Diff(want, e.RenderObjects().Children(rootRO)); diff != "" {
		t.Errorf("render order mismatch (-want +got):\n%s", diff)
	}
	if e.Stats().RenderCreated != created {
		t.Error("reorder should not create render objects")
	}
}

func TestUpdateRenderObjectInPlace(t *testing.T) {
	e := newTestEngine(t, &column{height: 1})
	e.Update()
	rootRO := e.RenderObjects().Roots()[0]

	e.SetRoot(&column{height: 5})
	e.Update()

	node, _ := e.RenderObjects().Get(rootRO)
	r := node.Object.(*columnRender)
	if r.height != 5 || r.updates != 1 {
		t.Errorf("height = %v, updates = %d", r.height, r.updates)
	}
	if node.Size.Height != 5 {
		t.Errorf("size = %v, want height 5", node.Size)
	}
}

func TestSizeListenerReachesFixedPoint(t *testing.T) {
	e := newTestEngine(t, &Builder{Fn: func(*BuildContext) Widget {
		return &sizeWatcher{}
	}})
	before := e.Stats()
	e.Update()
	after := e.Stats()

	watcher := QueryByType[*sizeWatcher](e)
	s, _ := StateOf[*sizeWatcherState](e, watcher[0])
	if s.size != (layout.Size{Height: 10}) {
		t.Errorf("size = %v, want height 10", s.size)
	}
	if n := after.OuterIterations - before.OuterIterations; n < 2 || n > 3 {
		t.Errorf("outer iterations = %d, want 2 or 3", n)
	}
	if e.HasChanges() {
		t.Error("engine should be at a fixed point")
	}
}

type sizeWatcher struct {
	StatefulBase
}

func (*sizeWatcher) CreateState() State { return &sizeWatcherState{} }

type sizeWatcherState struct {
	StateBase
	size layout.Size
}

func (s *sizeWatcherState) Build(ctx *BuildContext) Widget {
	ctx.OnSizeChanged(func(size layout.Size) {
		if size != s.size {
			s.SetState(func() { s.size = size })
		}
	})
	return &column{height: 10}
}

func TestBuildPanicReportsBuildError(t *testing.T) {
	collector := &errors.Collector{}
	prev := errors.SetHandler(collector)
	defer errors.SetHandler(prev)

	e := newTestEngine(t, &Builder{Fn: func(*BuildContext) Widget { panic("boom") }})
	err := mustPanic[*errors.BuildError](t, e.Update)

	if err.Recovered != "boom" {
		t.Errorf("recovered = %v", err.Recovered)
	}
	if err.Widget != "*core.Builder" {
		t.Errorf("widget = %q", err.Widget)
	}
	if len(collector.BuildErrors) != 1 {
		t.Errorf("reported %d build errors, want 1", len(collector.BuildErrors))
	}
}

func TestDuplicateWidgetIsInvariantViolation(t *testing.T) {
	prev := errors.SetHandler(&errors.Collector{})
	defer errors.SetHandler(prev)

	w := &label{text: "shared"}
	e := newTestEngine(t, &column{children: []Widget{w, w}})
	mustPanic[*errors.InvariantError](t, e.Update)
}

func TestWithConfigSetsViewport(t *testing.T) {
	e := newTestEngine(t, &column{height: 3}, WithConfig(config.EngineConfig{
		Viewport: &config.Viewport{Width: 100, Height: 50},
	}))
	e.Update()

	node, _ := e.RenderObjects().Get(e.RenderObjects().Roots()[0])
	if node.Size != (layout.Size{Width: 100, Height: 50}) {
		t.Errorf("root size = %v, want viewport", node.Size)
	}
}

func TestFormatShowsTree(t *testing.T) {
	e := newTestEngine(t, &column{children: []Widget{&label{}}})
	e.Update()

	want := "*core.column #" + mustRoot(t, e).String() + "\n" +
		"  *core.label #" + e.Elements().Children(mustRoot(t, e))[0].String() + "\n"
	if got := e.Elements().Format(); got != want {
		t.Errorf("Format =\n%s\nwant\n%s", got, want)
	}
}
