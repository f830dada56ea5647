// Package testing drives the engine frame by frame for widget tests.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := rtest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(MyWidget{})
//
//	    // Find elements
//	    label := tester.Find(rtest.ByText("Submit")).First()
//
//	    // Trigger callbacks, then run a frame
//	    state.OnSubmit.Call(struct{}{})
//	    tester.Pump()
//
//	    // Assert state
//	    if !tester.Find(rtest.ByText("Submitted")).Exists() {
//	        t.Error("expected 'Submitted' text")
//	    }
//	}
//
// # Lifecycle Events
//
// Every tester records the spawned, rebuilt and destroyed events the engine
// emits, in order:
//
//	tester.Events().Reset()
//	tester.Pump()
//	rebuilt := tester.Events().Of(rtest.Rebuilt)
//
// # Snapshot Testing
//
// Capture and compare render tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/my_widget.snapshot.json")
//
// Update snapshots with:
//
//	RETAINED_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import rtest "github.com/go-drift/retained/pkg/testing"
package testing
