// Package demo contains the widget tree run by the retained CLI.
package demo

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/widgets"
)

// App is the demo root: a title, a ticking clock and a click counter.
type App struct {
	core.StatelessBase
	Title string
	// TickInterval is the clock period. Zero stops the clock.
	TickInterval time.Duration
}

func (a App) Build(*core.BuildContext) core.Widget {
	return widgets.Padding{
		Padding: layout.All(16),
		Child: widgets.ColumnOf(widgets.MainAxisAlignmentStart, widgets.CrossAxisAlignmentStart, widgets.MainAxisSizeMax,
			widgets.Text{Content: a.Title, Color: 0xff212121},
			widgets.VSpace(8),
			Clock{Interval: a.TickInterval},
			widgets.VSpace(8),
			Counter{},
			widgets.Expanded{Child: widgets.ColoredBox{Color: 0xffeeeeee}},
		),
	}
}

// Clock shows how many times its ticker fired. The ticker goroutine marks
// the element dirty directly.
type Clock struct {
	core.StatefulBase
	Interval time.Duration
}

func (Clock) CreateState() core.State { return &ClockState{} }

// ClockState is the state of a [Clock].
type ClockState struct {
	core.StateBase
	ticks    atomic.Int64
	ticker   *ticker
	interval time.Duration
}

// Ticks returns the number of ticks so far.
func (s *ClockState) Ticks() int64 { return s.ticks.Load() }

func (s *ClockState) Build(ctx *core.BuildContext) core.Widget {
	interval := ctx.Widget().(Clock).Interval
	if interval != s.interval {
		if s.ticker != nil {
			s.ticker.Dispose()
			s.ticker = nil
		}
		s.interval = interval
		if interval > 0 {
			s.ticker = core.UseController(s, func() *ticker {
				return startTicker(interval, s.tick)
			})
		}
	}
	return widgets.Text{Content: fmt.Sprintf("ticks: %d", s.ticks.Load())}
}

func (s *ClockState) tick() {
	s.SetState(func() { s.ticks.Add(1) })
}

type ticker struct {
	stop chan struct{}
	once sync.Once
}

func startTicker(d time.Duration, fn func()) *ticker {
	t := &ticker{stop: make(chan struct{})}
	go func() {
		tk := time.NewTicker(d)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

func (t *ticker) Dispose() {
	t.once.Do(func() { close(t.stop) })
}

func (t *ticker) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// Counter shows a click count, bumped through [CounterState.Click].
type Counter struct {
	core.StatefulBase
}

func (Counter) CreateState() core.State { return &CounterState{} }

// CounterState is the state of a [Counter].
type CounterState struct {
	core.StateBase
	clicks int

	// Click adds its argument to the count. Safe to call from any goroutine.
	Click core.Callback[int]
}

// Clicks returns the current count. Only read it on the frame goroutine.
func (s *CounterState) Clicks() int { return s.clicks }

func (s *CounterState) Build(ctx *core.BuildContext) core.Widget {
	s.Click = core.NewCallback(ctx, func(ctx *core.CallbackContext, n int) {
		ctx.SetState(func() { s.clicks += n })
	})
	return widgets.ColoredBox{
		Color: 0xff2196f3,
		Child: widgets.Padding{
			Padding: layout.All(4),
			Child:   widgets.Text{Content: fmt.Sprintf("clicks: %d", s.clicks), Color: 0xffffffff},
		},
	}
}

// ClickCallback returns the click callback of the first counter in e's tree.
// The zero callback is returned when there is none.
func ClickCallback(e *core.Engine) core.Callback[int] {
	for _, id := range core.QueryByType[Counter](e) {
		if s, ok := core.StateOf[*CounterState](e, id); ok {
			return s.Click
		}
	}
	return core.Callback[int]{}
}
