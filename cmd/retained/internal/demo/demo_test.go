package demo

import (
	"testing"
	"time"

	"github.com/go-drift/retained/pkg/core"
	rtest "github.com/go-drift/retained/pkg/testing"
	"github.com/go-drift/retained/pkg/widgets"
)

func TestApp_Builds(t *testing.T) {
	tester := rtest.NewWidgetTesterWithT(t)
	if err := tester.PumpWidget(App{Title: "demo"}); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"demo", "ticks: 0", "clicks: 0"} {
		if !tester.Find(rtest.ByText(text)).Exists() {
			t.Errorf("expected text %q", text)
		}
	}
	if got := tester.Find(rtest.ByType[widgets.Text]()).Count(); got != 3 {
		t.Errorf("expected 3 texts, got %d", got)
	}
}

func TestCounter_Click(t *testing.T) {
	tester := rtest.NewWidgetTesterWithT(t)
	tester.PumpWidget(App{Title: "demo"})

	click := ClickCallback(tester.Engine())
	click.Call(2)
	click.Call(3)
	if err := tester.Pump(); err != nil {
		t.Fatal(err)
	}

	if !tester.Find(rtest.ByText("clicks: 5")).Exists() {
		t.Error("expected 'clicks: 5'")
	}
	if !tester.Find(rtest.ByText("ticks: 0")).Exists() {
		t.Error("expected clock text to survive")
	}
}

func TestClickCallback_NoCounter(t *testing.T) {
	tester := rtest.NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.Text{Content: "none"})

	// The zero callback is a no-op.
	ClickCallback(tester.Engine()).Call(1)
	if tester.Engine().HasChanges() {
		t.Error("zero callback should not queue work")
	}
}

func TestClock_Ticks(t *testing.T) {
	tester := rtest.NewWidgetTesterWithT(t)
	tester.PumpWidget(Clock{Interval: time.Millisecond})

	deadline := time.Now().Add(5 * time.Second)
	for !tester.Find(rtest.ByTextContaining("ticks: ")).Exists() ||
		tester.Find(rtest.ByText("ticks: 0")).Exists() {
		if time.Now().After(deadline) {
			t.Fatal("clock never ticked")
		}
		time.Sleep(time.Millisecond)
		if err := tester.Pump(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestClock_StopsOnDispose(t *testing.T) {
	tester := rtest.NewWidgetTester()
	tester.PumpWidget(Clock{Interval: time.Hour})
	id := tester.Find(rtest.ByType[Clock]()).First()
	state, ok := core.StateOf[*ClockState](tester.Engine(), id)
	if !ok {
		t.Fatal("expected clock state")
	}
	if state.ticker == nil || state.ticker.stopped() {
		t.Fatal("expected running ticker")
	}

	tester.Cleanup()

	if !state.ticker.stopped() {
		t.Error("expected ticker stopped after dispose")
	}
}

func TestClock_IntervalChangeRestartsTicker(t *testing.T) {
	tester := rtest.NewWidgetTesterWithT(t)
	tester.PumpWidget(Clock{Interval: time.Hour})
	state, _ := core.StateOf[*ClockState](tester.Engine(), tester.Find(rtest.ByType[Clock]()).First())
	first := state.ticker

	tester.PumpWidget(Clock{})

	if !first.stopped() {
		t.Error("expected old ticker stopped")
	}
	if state.ticker != nil {
		t.Error("zero interval should not start a ticker")
	}
}
