package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/retained/cmd/retained/internal/demo"
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/engine"
	"github.com/go-drift/retained/pkg/logging"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run the demo application",
		Long: `Run the demo application until interrupted.

The demo tree holds a clock that ticks from its own goroutine and a counter
that is clicked from outside the frame loop. Frames are produced only when
something changed.

Flags:
  --dir DIR            Directory holding retained.yaml (default: .)
  --debug ADDR         Serve the HTTP debug endpoints on ADDR (overrides debug.addr)
  --tick DURATION      Clock period (default: 1s, 0 stops the clock)
  --click DURATION     Click the counter this often (default: 500ms, 0 disables)
  --duration DURATION  Stop after this long (default: run until interrupted)

Debug endpoints:
  /widget-tree  /render-tree  /frames  /runtime  /health`,
		Usage: "retained run [--dir DIR] [--debug ADDR] [--tick D] [--click D] [--duration D]",
		Run:   runRun,
	})
}

type runOptions struct {
	dir      string
	debug    string
	tick     time.Duration
	click    time.Duration
	duration time.Duration
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{dir: ".", tick: time.Second, click: 500 * time.Millisecond}

	var err error
	var value string
	var found bool
	if value, found, args, err = flagValue(args, "dir"); err != nil {
		return opts, err
	} else if found {
		opts.dir = value
	}
	if value, found, args, err = flagValue(args, "debug"); err != nil {
		return opts, err
	} else if found {
		opts.debug = value
	}
	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"tick", &opts.tick},
		{"click", &opts.click},
		{"duration", &opts.duration},
	} {
		if value, found, args, err = flagValue(args, d.name); err != nil {
			return opts, err
		} else if found {
			if *d.dst, err = time.ParseDuration(value); err != nil {
				return opts, fmt.Errorf("--%s: %w", d.name, err)
			}
		}
	}
	if len(args) > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", args)
	}
	return opts, nil
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.dir)
	if err != nil {
		return err
	}
	addr := cfg.Debug.Addr
	if opts.debug != "" {
		addr = opts.debug
	}

	var runnerOpts []engine.RunnerOption
	if addr != "" {
		runnerOpts = append(runnerOpts, engine.WithRuntimeSampling(time.Minute, time.Second))
	}
	runner := engine.NewRunner(newEngine(cfg, opts.tick), cfg.Runner, runnerOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	logger := logging.Logger()
	logger.Info("running", "app", cfg.App.Name, "interval", cfg.Runner.FrameInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(ctx) })
	if addr != "" {
		g.Go(func() error { return engine.NewDebugServer(runner).Serve(ctx, addr) })
	}
	if opts.click > 0 {
		g.Go(func() error { return clickLoop(ctx, runner, opts.click) })
	}
	err = g.Wait()
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	// Tear the tree down so that states stop their goroutines.
	if runner.Err() == nil {
		runner.Dispatch(func(e *core.Engine) { e.SetRoot(nil) })
		if _, perr := runner.PumpFrame(); perr != nil && err == nil {
			err = perr
		}
	}

	timeline := runner.Snapshot()
	fmt.Fprintf(stdout, "%d frames recorded, %d dropped\n", len(timeline.Samples), timeline.DroppedFrames)
	return err
}

// clickLoop clicks the demo counter from outside the frame goroutine.
func clickLoop(ctx context.Context, r *engine.Runner, every time.Duration) error {
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
		}
		var click core.Callback[int]
		r.View(func(e *core.Engine) { click = demo.ClickCallback(e) })
		click.Call(1)
	}
}
