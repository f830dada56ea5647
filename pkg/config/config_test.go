package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/tools/counter/v2\n\ngo 1.24\n")

	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, "example.com/tools/counter/v2", r.ModulePath)
	assert.Equal(t, "counter", r.App.Name)
	assert.Equal(t, "v1", r.Version)
	assert.Equal(t, DefaultLogLevel, r.Engine.LogLevel)
	assert.Equal(t, DefaultFrameInterval, r.Runner.FrameInterval)
	assert.Equal(t, DefaultTraceSamples, r.Runner.TraceSamples)
	assert.Empty(t, r.Debug.Addr)
}

func TestResolveWithoutModule(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.Mkdir(dir, 0o755))

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Empty(t, r.ModulePath)
	assert.Equal(t, "demo", r.App.Name)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
version: 1.2.0
app:
  name: gallery
engine:
  log_level: trace
  verify_invariants: true
  viewport:
    width: 800
    height: 600
runner:
  frame_interval: 8ms
  trace_samples: 30
  trace_threshold: 20ms
debug:
  addr: " 127.0.0.1:9100 "
`)

	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", r.Version)
	assert.Equal(t, "gallery", r.App.Name)
	assert.Equal(t, "trace", r.Engine.LogLevel)
	assert.True(t, r.Engine.VerifyInvariants)
	require.NotNil(t, r.Engine.Viewport)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, *r.Engine.Viewport)
	assert.Equal(t, 8*time.Millisecond, r.Runner.FrameInterval)
	assert.Equal(t, 30, r.Runner.TraceSamples)
	assert.Equal(t, 20*time.Millisecond, r.Runner.TraceThreshold)
	assert.Equal(t, "127.0.0.1:9100", r.Debug.Addr)
}

func TestResolveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"future schema", "version: v2.0.0\n", "unsupported schema v2"},
		{"garbage version", "version: banana\n", "not a semantic version"},
		{"log level", "engine:\n  log_level: loud\n", "engine.log_level"},
		{"viewport", "engine:\n  viewport:\n    width: 0\n    height: 10\n", "engine.viewport"},
		{"negative interval", "runner:\n  frame_interval: -1s\n", "runner.frame_interval"},
		{"unknown field", "engine:\n  turbo: true\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.content)
			_, err := Resolve(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
