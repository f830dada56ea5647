package core

import "sync"

// DirtySet tracks elements that must rebuild on the next update.
//
// It is safe for concurrent use, so application code may mark elements
// dirty from any goroutine. The engine drains it on the UI goroutine.
type DirtySet struct {
	mu    sync.Mutex
	order []ElementID
	set   map[ElementID]struct{}

	// OnNeedsUpdate is called, outside the lock, when an element is added
	// to an empty set. Hosts use it to schedule a frame.
	OnNeedsUpdate func()
}

// NewDirtySet creates an empty DirtySet.
func NewDirtySet() *DirtySet {
	return &DirtySet{set: make(map[ElementID]struct{})}
}

// Insert marks id dirty. Duplicate inserts are ignored.
func (d *DirtySet) Insert(id ElementID) {
	wasEmpty, added := func() (bool, bool) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.set[id]; ok {
			return false, false
		}
		if d.set == nil {
			d.set = make(map[ElementID]struct{})
		}
		wasEmpty := len(d.order) == 0
		d.set[id] = struct{}{}
		d.order = append(d.order, id)
		return wasEmpty, true
	}()

	if added && wasEmpty && d.OnNeedsUpdate != nil {
		d.OnNeedsUpdate()
	}
}

// Contains reports whether id is marked dirty.
func (d *DirtySet) Contains(id ElementID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.set[id]
	return ok
}

// Len returns the number of dirty elements.
func (d *DirtySet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// IsEmpty reports whether no element is dirty.
func (d *DirtySet) IsEmpty() bool {
	return d.Len() == 0
}

// drain returns the dirty elements in insertion order and clears the set.
func (d *DirtySet) drain() []ElementID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.order
	d.order = nil
	clear(d.set)
	return out
}
