// Package tree provides a generational arena tree with stable keys.
//
// Nodes are stored in slots addressed by a key that packs the slot index
// with a generation counter. Removing a node bumps the generation of its
// slot, so stale keys held elsewhere never resolve to a newer node that
// happens to reuse the slot.
//
// Parent, child and depth bookkeeping is maintained eagerly: depth is always
// parent depth + 1 (0 for nodes without a parent), and reparenting a node
// propagates the depth delta to the whole moved subtree.
//
// # Scoped access
//
// [Tree.With] takes a value out of its node, runs a function with mutable
// access to both the value and the tree, then puts it back. This lets a value
// add or remove other nodes (including its own children) while it is being
// operated on. Reading a node whose value is taken panics.
package tree

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Key is the constraint satisfied by tree keys. A key packs a 32-bit slot
// index (low bits) and a 32-bit generation (high bits). The zero key is
// never issued and means "no node".
type Key interface {
	~uint64
}

// Index returns the slot index encoded in key.
func Index[K Key](key K) uint32 {
	return uint32(uint64(key))
}

// Generation returns the slot generation encoded in key.
func Generation[K Key](key K) uint32 {
	return uint32(uint64(key) >> 32)
}

func makeKey[K Key](index, generation uint32) K {
	return K(uint64(generation)<<32 | uint64(index))
}

// Node is a single tree node.
type Node[K Key, V any] struct {
	depth    int
	parent   K
	children []K
	value    V
	taken    bool
}

// Depth returns the node depth (root = 0).
func (n *Node[K, V]) Depth() int {
	return n.depth
}

// Parent returns the parent key, or the zero key for a parentless node.
func (n *Node[K, V]) Parent() K {
	return n.parent
}

// Children returns the ordered child keys. The slice is owned by the tree
// and must not be modified.
func (n *Node[K, V]) Children() []K {
	return n.children
}

// Value returns the node value. It panics if the value is currently taken.
func (n *Node[K, V]) Value() V {
	if n.taken {
		panic("tree: node is currently in use")
	}
	return n.value
}

type slot[K Key, V any] struct {
	generation uint32
	occupied   bool
	node       Node[K, V]
}

// Tree is an arena-backed tree keyed by K.
//
// The zero value is an empty tree ready to use. A Tree is not safe for
// concurrent use.
type Tree[K Key, V any] struct {
	slots []slot[K, V]
	free  []uint32
	len   int
	root  K
}

// New creates an empty tree.
func New[K Key, V any]() *Tree[K, V] {
	return &Tree[K, V]{}
}

func (t *Tree[K, V]) lookup(key K) *Node[K, V] {
	if key == 0 {
		return nil
	}
	index := Index(key)
	if int(index) >= len(t.slots) {
		return nil
	}
	s := &t.slots[index]
	if !s.occupied || s.generation != Generation(key) {
		return nil
	}
	return &s.node
}

// Len returns the number of nodes in the tree.
func (t *Tree[K, V]) Len() int {
	return t.len
}

// IsEmpty reports whether the tree has no nodes.
func (t *Tree[K, V]) IsEmpty() bool {
	return t.len == 0
}

// Contains reports whether key refers to a live node.
func (t *Tree[K, V]) Contains(key K) bool {
	return t.lookup(key) != nil
}

// Root returns the tree root: the first parentless node that was added and
// is still present.
func (t *Tree[K, V]) Root() (K, bool) {
	if t.Contains(t.root) {
		return t.root, true
	}
	var zero K
	return zero, false
}

// Clear removes every node. Outstanding keys become stale.
func (t *Tree[K, V]) Clear() {
	for i := range t.slots {
		s := &t.slots[i]
		if s.occupied {
			s.occupied = false
			s.generation++
			s.node = Node[K, V]{}
			t.free = append(t.free, uint32(i))
		}
	}
	t.len = 0
	t.root = 0
}

// Add inserts value as the last child of parent, or as a parentless node
// when parent is the zero key. It panics if parent is non-zero but does not
// exist.
func (t *Tree[K, V]) Add(parent K, value V) K {
	if parent != 0 && !t.Contains(parent) {
		panic("tree: cannot add a node to a parent that doesn't exist")
	}

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot[K, V]{})
	}

	s := &t.slots[index]
	s.generation++
	if s.generation == 0 {
		// Generation wrapped; zero is reserved for "no node".
		s.generation = 1
	}
	s.occupied = true
	s.node = Node[K, V]{value: value}
	t.len++

	key := makeKey[K](index, s.generation)
	t.attach(parent, key)

	if parent == 0 && !t.Contains(t.root) {
		t.root = key
	}
	return key
}

// Remove detaches the node from its parent and returns its value. Descendants
// are not removed; callers walk and remove a subtree explicitly. It returns
// false if key does not exist.
func (t *Tree[K, V]) Remove(key K) (V, bool) {
	node := t.lookup(key)
	if node == nil {
		var zero V
		return zero, false
	}
	if node.taken {
		panic("tree: cannot remove a node that is currently in use")
	}

	if parent := t.lookup(node.parent); parent != nil {
		idx := slices.Index(parent.children, key)
		if idx < 0 {
			panic("tree: unable to find child in removed node's parent")
		}
		parent.children = slices.Delete(parent.children, idx, idx+1)
	}

	value := node.value
	index := Index(key)
	s := &t.slots[index]
	s.occupied = false
	s.node = Node[K, V]{}
	t.free = append(t.free, index)
	t.len--
	if t.root == key {
		t.root = 0
	}
	return value, true
}

// Reparent moves key to the end of newParent's children (or makes it
// parentless when newParent is zero). It returns false if the node does not
// exist or was already the last child of newParent, and true otherwise.
// The depth delta is propagated to the whole moved subtree.
func (t *Tree[K, V]) Reparent(newParent, key K) bool {
	node := t.lookup(key)
	if node == nil {
		return false
	}
	if newParent == key {
		panic("tree: cannot reparent a node under itself")
	}
	if newParent != 0 && t.HasChild(key, newParent) {
		panic("tree: cannot reparent a node under its own descendant")
	}

	if parent := t.lookup(node.parent); parent != nil {
		idx := slices.Index(parent.children, key)
		if idx < 0 {
			panic("tree: unable to find child in moved node's parent")
		}
		if node.parent == newParent {
			if idx == len(parent.children)-1 {
				return false
			}
			parent.children = slices.Delete(parent.children, idx, idx+1)
			parent.children = append(parent.children, key)
			return true
		}
		parent.children = slices.Delete(parent.children, idx, idx+1)
	} else if node.parent == 0 && newParent == 0 {
		return false
	}

	t.attach(newParent, key)
	return true
}

// attach links key under parent and propagates depth changes.
func (t *Tree[K, V]) attach(parent, key K) {
	newDepth := 0
	if parent != 0 {
		p := t.lookup(parent)
		if p == nil {
			panic("tree: cannot add a node to a parent that doesn't exist")
		}
		newDepth = p.depth + 1
		p.children = append(p.children, key)
	}

	node := t.lookup(key)
	node.parent = parent

	if node.depth == newDepth {
		return
	}
	diff := newDepth - node.depth
	node.depth = newDepth

	queue := slices.Clone(node.children)
	for len(queue) > 0 {
		childKey := queue[0]
		queue = queue[1:]
		child := t.lookup(childKey)
		if child == nil {
			panic("tree: unable to update child's depth, as it's not in the tree")
		}
		child.depth += diff
		queue = append(queue, child.children...)
	}
}

// Take removes the value from its node, leaving the node in place. Reading
// the node panics until [Tree.Replace] is called.
func (t *Tree[K, V]) Take(key K) (V, bool) {
	node := t.lookup(key)
	if node == nil {
		var zero V
		return zero, false
	}
	if node.taken {
		panic("tree: node is currently in use")
	}
	value := node.value
	var zero V
	node.value = zero
	node.taken = true
	return value, true
}

// Replace puts a value back into a node emptied by [Tree.Take].
func (t *Tree[K, V]) Replace(key K, value V) {
	node := t.lookup(key)
	if node == nil {
		return
	}
	node.value = value
	node.taken = false
}

// With takes the value of key out of the tree, calls fn with the tree and
// the value, then puts the value back. It returns false if key does not
// exist. fn may add and remove other nodes, including children of key, but
// must not remove key itself.
func (t *Tree[K, V]) With(key K, fn func(t *Tree[K, V], value *V)) bool {
	_, ok := With(t, key, func(t *Tree[K, V], value *V) struct{} {
		fn(t, value)
		return struct{}{}
	})
	return ok
}

// With is the value-returning form of [Tree.With].
func With[K Key, V, R any](t *Tree[K, V], key K, fn func(t *Tree[K, V], value *V) R) (R, bool) {
	value, ok := t.Take(key)
	if !ok {
		var zero R
		return zero, false
	}
	defer func() {
		if !t.Contains(key) {
			panic("tree: node was removed while its value was taken")
		}
		t.Replace(key, value)
	}()
	return fn(t, &value), true
}

// Get returns the value stored at key.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	node := t.lookup(key)
	if node == nil {
		var zero V
		return zero, false
	}
	return node.Value(), true
}

// MustGet returns the value stored at key and panics if it doesn't exist.
func (t *Tree[K, V]) MustGet(key K) V {
	node := t.lookup(key)
	if node == nil {
		panic(fmt.Sprintf("tree: node %d:%d does not exist", Index(key), Generation(key)))
	}
	return node.Value()
}

// Node returns the node stored at key.
func (t *Tree[K, V]) Node(key K) (*Node[K, V], bool) {
	node := t.lookup(key)
	return node, node != nil
}

// Depth returns the depth of key.
func (t *Tree[K, V]) Depth(key K) (int, bool) {
	node := t.lookup(key)
	if node == nil {
		return 0, false
	}
	return node.depth, true
}

// Parent returns the parent of key. It returns false when key does not exist
// or has no parent.
func (t *Tree[K, V]) Parent(key K) (K, bool) {
	node := t.lookup(key)
	if node == nil || node.parent == 0 {
		var zero K
		return zero, false
	}
	return node.parent, true
}

// Children returns the ordered children of key, or nil if key does not
// exist. The slice is owned by the tree; clone it before mutating the tree.
func (t *Tree[K, V]) Children(key K) []K {
	node := t.lookup(key)
	if node == nil {
		return nil
	}
	return node.children
}

// Child returns the child of key at idx.
func (t *Tree[K, V]) Child(key K, idx int) (K, bool) {
	node := t.lookup(key)
	if node == nil || idx < 0 || idx >= len(node.children) {
		var zero K
		return zero, false
	}
	return node.children[idx], true
}

// NextSibling returns the sibling after key within its parent.
func (t *Tree[K, V]) NextSibling(key K) (K, bool) {
	var zero K
	parent, ok := t.Parent(key)
	if !ok {
		return zero, false
	}
	siblings := t.Children(parent)
	idx := slices.Index(siblings, key)
	if idx < 0 || idx+1 >= len(siblings) {
		return zero, false
	}
	return siblings[idx+1], true
}

// PrevSibling returns the sibling before key within its parent.
func (t *Tree[K, V]) PrevSibling(key K) (K, bool) {
	var zero K
	parent, ok := t.Parent(key)
	if !ok {
		return zero, false
	}
	siblings := t.Children(parent)
	idx := slices.Index(siblings, key)
	if idx <= 0 {
		return zero, false
	}
	return siblings[idx-1], true
}

// IsFirstChild reports whether key is the first child of its parent.
// Parentless nodes are considered first children.
func (t *Tree[K, V]) IsFirstChild(key K) bool {
	parent, ok := t.Parent(key)
	if !ok {
		return true
	}
	siblings := t.Children(parent)
	return len(siblings) == 0 || siblings[0] == key
}

// IsLastChild reports whether key is the last child of its parent.
// Parentless nodes are considered last children.
func (t *Tree[K, V]) IsLastChild(key K) bool {
	parent, ok := t.Parent(key)
	if !ok {
		return true
	}
	siblings := t.Children(parent)
	return len(siblings) == 0 || siblings[len(siblings)-1] == key
}

// DeepestChild follows last children down from key and returns the final node.
func (t *Tree[K, V]) DeepestChild(key K) (K, bool) {
	node := t.lookup(key)
	if node == nil {
		var zero K
		return zero, false
	}
	for len(node.children) > 0 {
		key = node.children[len(node.children)-1]
		node = t.lookup(key)
	}
	return key, true
}

// HasChild reports whether descendant is somewhere below ancestor.
// The walk goes up from descendant and stops once it reaches the depth of
// ancestor.
func (t *Tree[K, V]) HasChild(ancestor, descendant K) bool {
	a := t.lookup(ancestor)
	d := t.lookup(descendant)
	if a == nil || d == nil || a.depth >= d.depth {
		return false
	}
	for d != nil && d.depth > a.depth {
		if d.parent == ancestor {
			return true
		}
		d = t.lookup(d.parent)
	}
	return false
}

// FilterTopmost returns the keys that have no ancestor also in keys,
// preserving input order. Missing keys are dropped.
func (t *Tree[K, V]) FilterTopmost(keys []K) []K {
	type entry struct {
		key   K
		depth int
	}
	topmost := make([]entry, 0, len(keys))

outer:
	for _, key := range keys {
		node := t.lookup(key)
		if node == nil {
			continue
		}
		for i := 0; i < len(topmost); {
			other := topmost[i]
			if other.key == key {
				continue outer
			}
			if node.depth != other.depth {
				if node.depth > other.depth {
					if t.HasChild(other.key, key) {
						continue outer
					}
				} else if t.HasChild(key, other.key) {
					topmost = slices.Delete(topmost, i, i+1)
					continue
				}
			}
			i++
		}
		topmost = append(topmost, entry{key: key, depth: node.depth})
	}

	result := make([]K, len(topmost))
	for i, e := range topmost {
		result[i] = e.key
	}
	return result
}

// All iterates every live node in slot order.
func (t *Tree[K, V]) All() iter.Seq2[K, *Node[K, V]] {
	return func(yield func(K, *Node[K, V]) bool) {
		for i := range t.slots {
			s := &t.slots[i]
			if !s.occupied {
				continue
			}
			if !yield(makeKey[K](uint32(i), s.generation), &s.node) {
				return
			}
		}
	}
}

// Roots iterates every parentless node in slot order.
func (t *Tree[K, V]) Roots() iter.Seq[K] {
	return func(yield func(K) bool) {
		for key, node := range t.All() {
			if node.parent != 0 {
				continue
			}
			if !yield(key) {
				return
			}
		}
	}
}

// Ancestors iterates the parents of key from nearest to furthest.
func (t *Tree[K, V]) Ancestors(key K) iter.Seq[K] {
	return func(yield func(K) bool) {
		node := t.lookup(key)
		for node != nil && node.parent != 0 {
			parent := node.parent
			if !yield(parent) {
				return
			}
			node = t.lookup(parent)
		}
	}
}

// Subtree iterates key and its descendants depth-first in pre-order.
func (t *Tree[K, V]) Subtree(key K) iter.Seq[K] {
	return func(yield func(K) bool) {
		if t.lookup(key) == nil {
			return
		}
		stack := []K{key}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(current) {
				return
			}
			node := t.lookup(current)
			if node == nil {
				continue
			}
			for i := len(node.children) - 1; i >= 0; i-- {
				stack = append(stack, node.children[i])
			}
		}
	}
}

// BreadthFirst iterates key and its descendants level by level.
func (t *Tree[K, V]) BreadthFirst(key K) iter.Seq[K] {
	return func(yield func(K) bool) {
		if t.lookup(key) == nil {
			return
		}
		queue := []K{key}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if !yield(current) {
				return
			}
			if node := t.lookup(current); node != nil {
				queue = append(queue, node.children...)
			}
		}
	}
}

// Format renders every root and its descendants as an indented outline,
// one node per line. label formats a single node; taken nodes are printed
// as "<in use>".
func (t *Tree[K, V]) Format(label func(K, V) string) string {
	var sb strings.Builder
	for root := range t.Roots() {
		base := t.lookup(root).depth
		for key := range t.Subtree(root) {
			node := t.lookup(key)
			sb.WriteString(strings.Repeat("  ", node.depth-base))
			if node.taken {
				sb.WriteString("<in use>")
			} else {
				sb.WriteString(label(key, node.value))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
