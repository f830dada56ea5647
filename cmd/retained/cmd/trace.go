package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-drift/retained/cmd/retained/internal/demo"
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "trace",
		Short: "Pump frames and print what each did",
		Long: `Pump a fixed number of frames synchronously and print per-frame counts,
then the final element and render trees.

Before every frame after the first the counter is clicked once, so each
frame rebuilds only the counter subtree. The clock is stopped.

Flags:
  --dir DIR      Directory holding retained.yaml (default: .)
  --frames N     Number of frames to pump (default: 3)
  --json         Print the frame timeline as JSON instead of a table`,
		Usage: "retained trace [--dir DIR] [--frames N] [--json]",
		Run:   runTrace,
	})
}

func runTrace(args []string) error {
	dir := "."
	frames := 3
	asJSON := false

	value, found, args, err := flagValue(args, "dir")
	if err != nil {
		return err
	} else if found {
		dir = value
	}
	if value, found, args, err = flagValue(args, "frames"); err != nil {
		return err
	} else if found {
		if frames, err = strconv.Atoi(value); err != nil || frames < 1 {
			return fmt.Errorf("--frames must be a positive integer, got %q", value)
		}
	}
	var rest []string
	for _, arg := range args {
		if arg == "--json" {
			asJSON = true
			continue
		}
		rest = append(rest, arg)
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	runner := engine.NewRunner(newEngine(cfg, 0), cfg.Runner)

	for i := range frames {
		if i > 0 {
			runner.Dispatch(func(e *core.Engine) { demo.ClickCallback(e).Call(1) })
		}
		if _, err := runner.PumpFrame(); err != nil {
			return err
		}
	}

	timeline := runner.Snapshot()
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(timeline)
	}

	fmt.Fprintf(stdout, "%-6s %8s %7s %7s %9s %9s %9s\n", "frame", "ms", "builds", "spawns", "destroys", "callbacks", "elements")
	for _, s := range timeline.Samples {
		fmt.Fprintf(stdout, "%-6d %8.3f %7d %7d %9d %9d %9d\n",
			s.Frame, s.FrameMs, s.Counts.Builds, s.Counts.Spawns, s.Counts.Destroys, s.Counts.Callbacks, s.Counts.ElementCount)
	}
	runner.View(func(e *core.Engine) {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Elements:")
		fmt.Fprint(stdout, e.Elements().Format())
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Render objects:")
		fmt.Fprint(stdout, e.RenderObjects().Format())
	})
	return nil
}
