package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/retained/pkg/engine"
	"github.com/go-drift/retained/pkg/logging"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() {
		stdout = prev
		logging.SetLogger(nil)
	})
	return &buf
}

func quietDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "app:\n  name: trace-demo\nengine:\n  log_level: off\n  verify_invariants: true\n"
	if err := os.WriteFile(filepath.Join(dir, "retained.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantValue string
		wantFound bool
		wantRest  []string
		wantErr   bool
	}{
		{"absent", []string{"--json"}, "", false, []string{"--json"}, false},
		{"separate", []string{"--dir", "x", "--json"}, "x", true, []string{"--json"}, false},
		{"equals", []string{"--dir=y"}, "y", true, nil, false},
		{"missing value", []string{"--dir"}, "", false, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found, rest, err := flagValue(tt.args, "dir")
			if (err != nil) != tt.wantErr {
				t.Fatalf("flagValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if value != tt.wantValue || found != tt.wantFound {
				t.Errorf("flagValue() = %q, %v; want %q, %v", value, found, tt.wantValue, tt.wantFound)
			}
			if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestParseRunArgs(t *testing.T) {
	opts, err := parseRunArgs([]string{"--tick", "250ms", "--debug=:0", "--click", "0", "--duration", "1s"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.dir != "." || opts.debug != ":0" {
		t.Errorf("unexpected dir/debug: %+v", opts)
	}
	if opts.tick != 250*time.Millisecond || opts.click != 0 || opts.duration != time.Second {
		t.Errorf("unexpected durations: %+v", opts)
	}

	if _, err := parseRunArgs([]string{"--tick", "soon"}); err == nil {
		t.Error("expected error for invalid duration")
	}
	if _, err := parseRunArgs([]string{"extra"}); err == nil {
		t.Error("expected error for unexpected argument")
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	captureOutput(t)
	if err := Execute([]string{"bogus"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExecute_Version(t *testing.T) {
	out := captureOutput(t)
	if err := Execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "retained version "+Version) {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestExecute_CommandHelp(t *testing.T) {
	out := captureOutput(t)
	if err := Execute([]string{"trace", "--help"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "retained trace [--dir DIR]") {
		t.Errorf("expected trace usage, got %q", out.String())
	}
}

func TestTrace_Table(t *testing.T) {
	out := captureOutput(t)
	if err := Execute([]string{"trace", "--dir", quietDir(t), "--frames", "2"}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"frame", "Elements:", "Render objects:", "App #", "Counter #"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestTrace_JSON(t *testing.T) {
	out := captureOutput(t)
	if err := Execute([]string{"trace", "--dir", quietDir(t), "--frames=3", "--json"}); err != nil {
		t.Fatal(err)
	}

	var timeline engine.FrameTimeline
	if err := json.Unmarshal(out.Bytes(), &timeline); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(timeline.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(timeline.Samples))
	}
	if timeline.Samples[0].Counts.Spawns == 0 {
		t.Error("first frame should spawn the tree")
	}
	for _, s := range timeline.Samples[1:] {
		if s.Counts.Spawns != 0 || s.Counts.Destroys != 0 {
			t.Errorf("frame %d: click should not change structure: %+v", s.Frame, s.Counts)
		}
		if s.Counts.Callbacks != 1 || s.Counts.Dispatched != 1 {
			t.Errorf("frame %d: expected one dispatched click, got %+v", s.Frame, s.Counts)
		}
	}
}

func TestTrace_InvalidFrames(t *testing.T) {
	captureOutput(t)
	if err := Execute([]string{"trace", "--frames", "0"}); err == nil {
		t.Error("expected error for zero frames")
	}
}

func TestRun_Duration(t *testing.T) {
	out := captureOutput(t)
	err := Execute([]string{"run", "--dir", quietDir(t), "--tick", "5ms", "--click", "5ms", "--duration", "100ms"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "frames recorded") {
		t.Errorf("expected summary, got %q", out.String())
	}
}
