// Package config loads the optional retained.yaml configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/retained/pkg/logging"
)

// FileName is the configuration file looked up by [LoadOptional].
const FileName = "retained.yaml"

// SchemaMajor is the only configuration schema major version understood.
const SchemaMajor = "v1"

// Config represents retained.yaml.
type Config struct {
	Version string       `yaml:"version,omitempty"`
	App     AppConfig    `yaml:"app"`
	Engine  EngineConfig `yaml:"engine"`
	Runner  RunnerConfig `yaml:"runner"`
	Debug   DebugConfig  `yaml:"debug"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig contains reconciliation engine settings.
type EngineConfig struct {
	// LogLevel is one of trace, debug, info, warn, error, off.
	LogLevel string `yaml:"log_level,omitempty"`
	// VerifyInvariants checks tree bookkeeping after every update.
	VerifyInvariants bool `yaml:"verify_invariants,omitempty"`
	// Viewport, when set, lays out render roots with tight constraints of
	// this size instead of unbounded ones.
	Viewport *Viewport `yaml:"viewport,omitempty"`
}

// Viewport is a fixed root size.
type Viewport struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// RunnerConfig contains frame runner settings.
type RunnerConfig struct {
	// FrameInterval is the minimum time between frames.
	FrameInterval time.Duration `yaml:"frame_interval,omitempty"`
	// TraceSamples is the frame timeline ring buffer capacity.
	TraceSamples int `yaml:"trace_samples,omitempty"`
	// TraceThreshold logs frames slower than this. Zero disables it.
	TraceThreshold time.Duration `yaml:"trace_threshold,omitempty"`
}

// DebugConfig contains debug server settings.
type DebugConfig struct {
	// Addr is the listen address of the HTTP debug server. Empty disables it.
	Addr string `yaml:"addr,omitempty"`
}

// Resolved is a validated configuration with defaults applied.
type Resolved struct {
	Config
	Root       string
	ModulePath string
}

// Defaults.
const (
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultTraceSamples  = 120
	DefaultLogLevel      = "info"
)

// Load reads and parses the configuration file at path. Unknown fields are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// Parse parses configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// LoadOptional reads retained.yaml from dir if present. A missing file yields
// an empty configuration.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Resolve loads retained.yaml from dir (if present), applies defaults and
// validates the result.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	modPath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir, modPath)
}

// Resolve applies defaults to a copy of c and validates it. root and
// modulePath are used to derive a default application name.
func (c *Config) Resolve(root, modulePath string) (*Resolved, error) {
	r := &Resolved{Config: *c, Root: root, ModulePath: modulePath}

	version, err := normalizeVersion(c.Version)
	if err != nil {
		return nil, err
	}
	r.Version = version

	r.App.Name = strings.TrimSpace(r.App.Name)
	if r.App.Name == "" {
		r.App.Name = defaultAppName(modulePath, root)
	}

	if r.Engine.LogLevel == "" {
		r.Engine.LogLevel = DefaultLogLevel
	}
	if _, err := logging.ParseLevel(r.Engine.LogLevel); err != nil {
		return nil, fmt.Errorf("engine.log_level: %w", err)
	}
	if vp := r.Engine.Viewport; vp != nil && (vp.Width <= 0 || vp.Height <= 0) {
		return nil, fmt.Errorf("engine.viewport: width and height must be positive, got %gx%g", vp.Width, vp.Height)
	}

	if r.Runner.FrameInterval < 0 {
		return nil, fmt.Errorf("runner.frame_interval: must not be negative, got %s", r.Runner.FrameInterval)
	}
	if r.Runner.FrameInterval == 0 {
		r.Runner.FrameInterval = DefaultFrameInterval
	}
	if r.Runner.TraceSamples < 0 {
		return nil, fmt.Errorf("runner.trace_samples: must not be negative, got %d", r.Runner.TraceSamples)
	}
	if r.Runner.TraceSamples == 0 {
		r.Runner.TraceSamples = DefaultTraceSamples
	}
	r.Debug.Addr = strings.TrimSpace(r.Debug.Addr)

	return r, nil
}

// normalizeVersion validates the schema version. An empty version means the
// current schema.
func normalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return SchemaMajor, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version: %q is not a semantic version", v)
	}
	if major := semver.Major(v); major != SchemaMajor {
		return "", fmt.Errorf("version: unsupported schema %s (want %s.x)", major, SchemaMajor)
	}
	return semver.Canonical(v), nil
}

// modulePath returns the module path declared by dir/go.mod, or "" when dir
// is not a module root.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "retained_app"
	}
	return base
}
