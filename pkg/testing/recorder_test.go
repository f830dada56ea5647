package testing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/events"
	"github.com/go-drift/retained/pkg/testing/internal/testbed"
	"github.com/go-drift/retained/pkg/widgets"
)

func TestEventRecorder_FirstBuild(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.Counter{Initial: 0})

	root, _ := tester.Root()
	box := tester.Find(ByType[widgets.ColoredBox]()).First()
	text := tester.Find(ByType[widgets.Text]()).First()

	want := []Event{
		{Kind: Spawned, Element: root},
		{Kind: Rebuilt, Element: root},
		{Kind: Spawned, Element: box, Parent: root},
		{Kind: Rebuilt, Element: box},
		{Kind: Spawned, Element: text, Parent: box},
		{Kind: Rebuilt, Element: text},
	}
	if diff := cmp.Diff(want, tester.Events().All()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEventRecorder_StateChangeRebuildsWithoutSpawning(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.Counter{Initial: 0})
	tester.Events().Reset()

	counterState(t, tester).Increment.Call(1)
	tester.Pump()

	if got := tester.Events().Count(Spawned); got != 0 {
		t.Errorf("expected no spawns, got %d", got)
	}
	if got := tester.Events().Count(Rebuilt); got != 3 {
		t.Errorf("expected 3 rebuilds, got %d", got)
	}
	if got := tester.Events().Count(Destroyed); got != 0 {
		t.Errorf("expected no destroys, got %d", got)
	}
}

func TestEventRecorder_Close(t *testing.T) {
	bus := events.NewBus()
	r := NewEventRecorder(bus)
	events.Emit(bus, core.ElementDestroyedEvent{Element: 7})
	r.Close()
	events.Emit(bus, core.ElementDestroyedEvent{Element: 8})

	if diff := cmp.Diff([]core.ElementID{7}, r.Of(Destroyed)); diff != "" {
		t.Errorf("destroyed mismatch (-want +got):\n%s", diff)
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Kind: Rebuilt, Element: 1}, "rebuilt " + core.ElementID(1).String()},
		{Event{Kind: Spawned, Element: 2, Parent: 1}, "spawned " + core.ElementID(2).String() + " (parent " + core.ElementID(1).String() + ")"},
		{Event{Kind: EventKind(9), Element: 3}, "EventKind(9) " + core.ElementID(3).String()},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
