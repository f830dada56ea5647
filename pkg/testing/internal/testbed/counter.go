// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"fmt"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/widgets"
)

// Counter is a stateful widget that displays a count. The count is bumped
// through [CounterState.Increment].
type Counter struct {
	core.StatefulBase
	Initial  int
	OnChange func(count int)
}

func (c Counter) CreateState() core.State {
	return &CounterState{count: c.Initial}
}

// CounterState is the state of a [Counter].
type CounterState struct {
	core.StateBase
	count    int
	onChange func(int)

	// Increment adds its argument to the count. It is re-registered on
	// every build.
	Increment core.Callback[int]
}

// Count returns the current count.
func (s *CounterState) Count() int { return s.count }

func (s *CounterState) Build(ctx *core.BuildContext) core.Widget {
	s.onChange = ctx.Widget().(Counter).OnChange
	s.Increment = core.NewCallback(ctx, func(ctx *core.CallbackContext, n int) {
		ctx.SetState(func() {
			s.count += n
		})
		if s.onChange != nil {
			s.onChange(s.count)
		}
	})
	return widgets.ColoredBox{
		Color: 0xff2196f3,
		Child: widgets.Text{Content: fmt.Sprintf("%d", s.count)},
	}
}
