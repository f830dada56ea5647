// Package widgets provides a small set of layout and display widgets built
// on the core engine.
//
// Widgets are plain structs. Layout widgets take their children through
// ChildrenWidgets or Child:
//
//	widgets.Column{
//	    CrossAxisAlignment: widgets.CrossAxisAlignmentCenter,
//	    ChildrenWidgets: []core.Widget{
//	        widgets.Text{Content: "Title"},
//	        widgets.SizedBox{Height: 8},
//	        widgets.Padding{Padding: layout.All(4), Child: body},
//	    },
//	}
//
// Text is measured with the 7x13 bitmap face from golang.org/x/image, so
// layout is deterministic across hosts.
package widgets
