package core

// ElementSpawnedEvent is emitted after an element is inserted and mounted.
type ElementSpawnedEvent struct {
	Parent  ElementID
	Element ElementID
}

// ElementRebuiltEvent is emitted after an element's build completes.
type ElementRebuiltEvent struct {
	Element ElementID
}

// ElementDestroyedEvent is emitted after an element is unmounted, just
// before it leaves the tree.
type ElementDestroyedEvent struct {
	Element ElementID
}
