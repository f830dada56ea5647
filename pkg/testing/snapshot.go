package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the render tree structure and display operations.
type Snapshot struct {
	RenderTree []*RenderNode `json:"renderTree"`
	DisplayOps []DisplayOp   `json:"displayOps,omitempty"`
}

// RenderNode represents a node in the serialized render tree.
type RenderNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Size       [2]float64     `json:"size"`
	Offset     [2]float64     `json:"offset"`
	Properties map[string]any `json:"props,omitempty"`
	Children   []*RenderNode  `json:"children,omitempty"`
}

// DisplayOp is a painted operation in root coordinates.
type DisplayOp struct {
	Op    string     `json:"op"`
	Layer string     `json:"layer"`
	Rect  [4]float64 `json:"rect"`
	Text  string     `json:"text,omitempty"`
	Color string     `json:"color,omitempty"`
}

// propertyWhitelist defines which properties to serialize per render type.
// Types not listed here are serialized with size/offset only.
var propertyWhitelist = map[string][]string{
	"RenderFlex":       {"direction", "alignment", "crossAlignment"},
	"RenderPadding":    {"padding"},
	"RenderColoredBox": {"color"},
	"RenderText":       {"text", "maxLines"},
	"RenderSizedBox":   {"width", "height"},
	"RenderExpanded":   {"flex"},
}

// CaptureSnapshot captures the current render tree and display operations.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.engine == nil {
		return snap
	}
	objects := t.engine.RenderObjects()
	counter := &typeCounter{}
	names := make(map[layout.RenderObjectID]string)
	for _, root := range objects.Roots() {
		snap.RenderTree = append(snap.RenderTree, captureRenderNode(objects, root, counter, names))
	}
	for _, l := range objects.Paint() {
		for _, op := range l.Canvas.Ops {
			snap.DisplayOps = append(snap.DisplayOps, serializeOp(names[l.ID], l.Offset, op))
		}
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When RETAINED_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("RETAINED_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: RETAINED_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: RETAINED_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a human-readable diff between other (expected) and this
// snapshot. Returns empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	// Compare the JSON forms so that property values decoded from a golden
	// file (always float64) match freshly captured ones.
	want, err := normalizeSnapshot(other)
	if err != nil {
		return err.Error()
	}
	got, err := normalizeSnapshot(s)
	if err != nil {
		return err.Error()
	}
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

func normalizeSnapshot(s *Snapshot) (*Snapshot, error) {
	data, err := marshalSnapshot(s)
	if err != nil {
		return nil, err
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Internal ---

// typeCounter assigns stable IDs like "RenderFlex#0", "RenderFlex#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureRenderNode(objects core.RenderObjects, id layout.RenderObjectID, counter *typeCounter, names map[layout.RenderObjectID]string) *RenderNode {
	n, _ := objects.Get(id)
	typeName := renderTypeName(n.Object)

	node := &RenderNode{
		ID:     counter.next(typeName),
		Type:   typeName,
		Size:   [2]float64{round2(float64(n.Size.Width)), round2(float64(n.Size.Height))},
		Offset: [2]float64{round2(float64(n.Offset.X)), round2(float64(n.Offset.Y))},
	}
	names[id] = node.ID

	// Capture whitelisted properties
	if props := captureProperties(n.Object, typeName); len(props) > 0 {
		node.Properties = props
	}

	for _, child := range objects.Children(id) {
		node.Children = append(node.Children, captureRenderNode(objects, child, counter, names))
	}
	return node
}

func serializeOp(layer string, origin layout.Offset, op layout.Op) DisplayOp {
	d := DisplayOp{
		Layer: layer,
		Rect: [4]float64{
			round2(float64(origin.X + op.Rect.X)),
			round2(float64(origin.Y + op.Rect.Y)),
			round2(float64(op.Rect.Width)),
			round2(float64(op.Rect.Height)),
		},
		Text:  op.Text,
		Color: serializeColor(op.Color),
	}
	switch op.Kind {
	case layout.OpRect:
		d.Op = "rect"
	case layout.OpText:
		d.Op = "text"
	default:
		d.Op = fmt.Sprintf("op(%d)", int(op.Kind))
	}
	return d
}

func serializeColor(c layout.Color) string {
	return fmt.Sprintf("#%08x", uint32(c))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func renderTypeName(ro layout.RenderObject) string {
	t := reflect.TypeOf(ro)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	// Capitalize first letter so unexported types like renderFlex
	// match whitelist entries like RenderFlex.
	if len(name) > 0 {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

func captureProperties(ro layout.RenderObject, typeName string) map[string]any {
	whitelist, ok := propertyWhitelist[typeName]
	if !ok {
		return nil
	}

	props := make(map[string]any)
	v := reflect.ValueOf(ro)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for _, fieldName := range whitelist {
		field := v.FieldByName(fieldName)
		if !field.IsValid() {
			// Try exported version (capitalize first letter)
			exported := strings.ToUpper(fieldName[:1]) + fieldName[1:]
			field = v.FieldByName(exported)
		}
		if !field.IsValid() {
			continue
		}
		if val := serializeFieldValue(field); val != nil {
			props[fieldName] = val
		}
	}

	if len(props) == 0 {
		return nil
	}
	return props
}

func serializeFieldValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Type() == reflect.TypeOf(layout.Color(0)) {
			return serializeColor(layout.Color(v.Uint()))
		}
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return round2(v.Float())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Struct:
		if !v.CanInterface() {
			// Unexported struct field â€” serialize exported fields individually.
			return serializeStruct(v)
		}
		return fmt.Sprintf("%v", v.Interface())
	default:
		return nil
	}
}

// serializeStruct handles unexported struct fields by iterating exported
// sub-fields and collecting their values into a map.
func serializeStruct(v reflect.Value) any {
	t := v.Type()
	m := make(map[string]any)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if val := serializeFieldValue(v.Field(i)); val != nil {
			m[f.Name] = val
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
