package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-drift/retained/cmd/retained/internal/demo"
	"github.com/go-drift/retained/pkg/config"
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/logging"
)

// defaultViewport is used when retained.yaml does not set engine.viewport.
var defaultViewport = config.Viewport{Width: 400, Height: 300}

// loadConfig resolves retained.yaml in dir and installs the configured
// logger.
func loadConfig(dir string) (*config.Resolved, error) {
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Engine.Viewport == nil {
		vp := defaultViewport
		cfg.Engine.Viewport = &vp
	}

	level, err := logging.ParseLevel(cfg.Engine.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logging.ReplaceLevel,
	})))
	return cfg, nil
}

// newEngine mounts the demo application.
func newEngine(cfg *config.Resolved, tick time.Duration) *core.Engine {
	return core.NewEngine(demo.App{Title: cfg.App.Name, TickInterval: tick}, core.WithConfig(cfg.Engine))
}
