package core

import "testing"

func TestCanUpdateWidget(t *testing.T) {
	tests := []struct {
		name string
		a, b Widget
		want bool
	}{
		{"same type no key", &label{}, &label{text: "x"}, true},
		{"same type same key", &label{key: 1}, &label{key: 1}, true},
		{"same type different key", &label{key: 1}, &label{key: 2}, false},
		{"different type", &label{}, &spacer{}, false},
		{"nil", &label{}, nil, false},
		{"slice keys compare deeply", &label{key: []int{1}}, &label{key: []int{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canUpdateWidget(tt.a, tt.b); got != tt.want {
				t.Errorf("canUpdateWidget = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentical(t *testing.T) {
	w := &label{}
	if !identical(w, w) {
		t.Error("same pointer should be identical")
	}
	if identical(w, &label{}) {
		t.Error("different pointers should not be identical")
	}
	if identical(w, nil) {
		t.Error("nil is never identical")
	}
}

func TestDistinctIdentity(t *testing.T) {
	if _, ok := distinctIdentity(&label{}); !ok {
		t.Error("pointer to sized struct has identity")
	}
	if _, ok := distinctIdentity(&struct{ StatelessBase }{}); ok {
		t.Error("pointer to zero-size struct may alias")
	}
}

func TestNonComparableKeyIsTreatedAsUnkeyed(t *testing.T) {
	if hashable([]int{1}) {
		t.Fatal("slices are not hashable")
	}
	e := newTestEngine(t, &column{children: []Widget{
		&label{key: []int{1}},
		&spacer{},
		&label{key: []int{2}},
	}})
	e.Update()
	before := e.Stats()

	e.SetRoot(&column{children: []Widget{
		&label{key: []int{2}},
		&label{key: []int{1}},
	}})
	e.Update()

	if n := e.Stats().Spawns - before.Spawns; n != 2 {
		t.Errorf("spawns = %d, want 2", n)
	}
	if got := len(e.Elements().Children(mustRoot(t, e))); got != 2 {
		t.Errorf("children = %d, want 2", got)
	}
}

// sliceHolder has a comparable type but may hold a non-comparable value.
type sliceHolder struct {
	V any
}

func TestInterfaceKeyHoldingSliceIsTreatedAsUnkeyed(t *testing.T) {
	if hashable(sliceHolder{V: []int{1}}) {
		t.Fatal("a struct holding a slice is not hashable")
	}
	if !hashable(sliceHolder{V: 1}) {
		t.Fatal("a struct holding an int is hashable")
	}

	e := newTestEngine(t, &column{children: []Widget{
		&label{key: "x"},
		&label{key: sliceHolder{V: []int{1}}},
	}})
	e.Update()
	kept := e.Elements().Children(mustRoot(t, e))[0]
	before := e.Stats()

	e.SetRoot(&column{children: []Widget{
		&label{key: sliceHolder{V: []int{1}}},
		&label{key: "x"},
	}})
	e.Update()

	children := e.Elements().Children(mustRoot(t, e))
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[1] != kept {
		t.Error("hashable key x should be retained across the move")
	}
	if n := e.Stats().Spawns - before.Spawns; n != 1 {
		t.Errorf("spawns = %d, want 1", n)
	}
	if err := e.Verify(); err != nil {
		t.Error(err)
	}
}

func TestKeysEqual(t *testing.T) {
	a, b := new(int), new(int)
	tests := []struct {
		name string
		x, y any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", "k", nil, false},
		{"same string", "k", "k", true},
		{"different types", 1, int64(1), false},
		{"same pointer", a, a, true},
		{"distinct pointers to equal values", a, b, false},
		{"equal slices", []int{1}, []int{1}, true},
		{"equal interface-held slices", sliceHolder{V: []int{1}}, sliceHolder{V: []int{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keysEqual(tt.x, tt.y); got != tt.want {
				t.Errorf("keysEqual(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPointerKeysMatchByIdentityInEveryPass(t *testing.T) {
	one, two := 1, 1
	e := newTestEngine(t, &column{children: []Widget{
		&label{key: &one},
	}})
	e.Update()
	first := e.Elements().Children(mustRoot(t, e))[0]

	// Equal pointee, different pointer: not the same key positionally.
	e.SetRoot(&column{children: []Widget{
		&label{key: &two},
	}})
	e.Update()
	second := e.Elements().Children(mustRoot(t, e))[0]
	if second == first {
		t.Fatal("distinct pointer keys should not match")
	}

	// The same pointer is matched in the keyed middle pass.
	e.SetRoot(&column{children: []Widget{
		&spacer{},
		&label{key: &two},
		&spacer{n: 1},
	}})
	e.Update()
	if got := e.Elements().Children(mustRoot(t, e))[1]; got != second {
		t.Error("pointer key should be retained across a move")
	}
}

func TestElementIDString(t *testing.T) {
	if got := ElementID(0).String(); got != "none" {
		t.Errorf("zero id = %q", got)
	}
	if got := ElementID(2<<32 | 5).String(); got != "5:2" {
		t.Errorf("id = %q, want 5:2", got)
	}
}
