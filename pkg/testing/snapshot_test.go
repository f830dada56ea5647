package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/testing/internal/testbed"
	"github.com/go-drift/retained/pkg/widgets"
)

func TestCaptureSnapshot_NotNil(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.LayoutBox{
		Width: 200, Height: 100,
		Color: 0xffff0000,
	})

	snap := tester.CaptureSnapshot()
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if len(snap.RenderTree) != 1 {
		t.Fatalf("expected one render root, got %d", len(snap.RenderTree))
	}
}

func TestCaptureSnapshot_RenderTreeStructure(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.SetSize(layout.Size{Width: 200, Height: 100})
	tester.PumpWidget(testbed.LayoutBox{
		Width: 200, Height: 100,
		Color: 0xff00ff00,
	})

	snap := tester.CaptureSnapshot()
	if len(snap.RenderTree) != 1 {
		t.Fatal("expected render tree root")
	}
	root := snap.RenderTree[0]
	if root.Type != "RenderLayoutBox" {
		t.Errorf("expected type RenderLayoutBox, got %q", root.Type)
	}
	if root.ID != "RenderLayoutBox#0" {
		t.Errorf("expected ID RenderLayoutBox#0, got %q", root.ID)
	}
	if root.Size != [2]float64{200, 100} {
		t.Errorf("expected size 200x100, got %v", root.Size)
	}
}

func TestCaptureSnapshot_PropertiesAndOps(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.SetSize(layout.Size{Width: 100, Height: 40})
	tester.PumpWidget(widgets.Padding{
		Padding: layout.All(5),
		Child:   widgets.ColoredBox{Color: 0xff112233},
	})

	snap := tester.CaptureSnapshot()
	root := snap.RenderTree[0]
	if root.Type != "RenderPadding" {
		t.Fatalf("expected RenderPadding root, got %q", root.Type)
	}
	padding, ok := root.Properties["padding"].(map[string]any)
	if !ok {
		t.Fatalf("expected padding property, got %#v", root.Properties)
	}
	if padding["Left"] != 5.0 {
		t.Errorf("expected left padding 5, got %v", padding["Left"])
	}
	box := root.Children[0]
	if box.Offset != [2]float64{5, 5} {
		t.Errorf("expected child offset (5,5), got %v", box.Offset)
	}
	if box.Properties["color"] != "#ff112233" {
		t.Errorf("expected color property, got %v", box.Properties["color"])
	}

	if len(snap.DisplayOps) != 1 {
		t.Fatalf("expected one display op, got %d", len(snap.DisplayOps))
	}
	op := snap.DisplayOps[0]
	want := DisplayOp{Op: "rect", Layer: "RenderColoredBox#0", Rect: [4]float64{5, 5, 90, 30}, Color: "#ff112233"}
	if op != want {
		t.Errorf("display op = %+v, want %+v", op, want)
	}
}

func TestSnapshot_Diff_Equal(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.LayoutBox{Width: 50, Height: 50})

	a := tester.CaptureSnapshot()
	b := tester.CaptureSnapshot()

	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff for identical snapshots, got:\n%s", diff)
	}
}

func TestSnapshot_Diff_Different(t *testing.T) {
	tester := NewWidgetTesterWithT(t)

	tester.PumpWidget(testbed.LayoutBox{Width: 50, Height: 50, Color: 0xffff0000})
	a := tester.CaptureSnapshot()

	tester.PumpWidget(testbed.LayoutBox{Width: 100, Height: 50, Color: 0xff00ff00})
	b := tester.CaptureSnapshot()

	if diff := a.Diff(b); diff == "" {
		t.Error("expected diff for different snapshots")
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.LayoutBox{Width: 80, Height: 40})

	snap := tester.CaptureSnapshot()

	dir := t.TempDir()
	path := filepath.Join(dir, "testdata", "box.snapshot.json")

	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("snapshot file should exist after UpdateFile")
	}

	// MatchesFile should pass now
	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv("RETAINED_UPDATE_SNAPSHOTS", "")
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.LayoutBox{Width: 50, Height: 50})
	snap := tester.CaptureSnapshot()

	// Use a recorder to intercept the Fatal
	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, "/nonexistent/path/snap.json")

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv("RETAINED_UPDATE_SNAPSHOTS", "")
	tester := NewWidgetTesterWithT(t)

	// Create snapshot for one widget
	tester.PumpWidget(testbed.LayoutBox{Width: 50, Height: 50, Color: 0xffff0000})
	first := tester.CaptureSnapshot()

	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	first.UpdateFile(path)

	// Capture different widget (different color produces different display ops)
	tester.PumpWidget(testbed.LayoutBox{Width: 999, Height: 999, Color: 0xff0000ff})
	second := tester.CaptureSnapshot()

	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	second.MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(testbed.LayoutBox{Width: 60, Height: 30})
	snap := tester.CaptureSnapshot()

	dir := t.TempDir()
	path := filepath.Join(dir, "update.snapshot.json")

	t.Setenv("RETAINED_UPDATE_SNAPSHOTS", "1")
	snap.MatchesFile(t, path)

	// File should now exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
