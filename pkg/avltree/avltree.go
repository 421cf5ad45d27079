// Package avltree provides an ordered map over float64 keys backed by an AVL
// tree. Besides the usual insert/update/remove/find operations it offers the
// neighbor queries (strict predecessor, floor, strict successor, nearest) and
// ascending range collection needed by breakpoint-style sparse structures.
package avltree

import "math"

// Node is a single key/value entry. Nodes are owned by the tree; the key is
// immutable from the outside.
type Node struct {
	key    float64
	value  float64
	height int
	left   *Node
	right  *Node
}

// Key returns the node key.
func (n *Node) Key() float64 {
	return n.key
}

// Value returns the node value.
func (n *Node) Value() float64 {
	return n.value
}

// Tree is an ordered float64 -> float64 map. The zero value is not usable;
// call New(). Not safe for concurrent use.
type Tree struct {
	root  *Node
	count int
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// NewFromSorted builds a balanced tree from parallel key/value slices in one
// pass. Keys must be strictly increasing; the slices must have equal length.
func NewFromSorted(keys, values []float64) *Tree {
	doAssert(len(keys) == len(values))

	for i := 1; i < len(keys); i++ {
		doAssert(keys[i-1] < keys[i])
	}

	return &Tree{
		root:  buildBalanced(keys, values, 0, len(keys)),
		count: len(keys),
	}
}

func buildBalanced(keys, values []float64, lo, hi int) *Node {
	if lo >= hi {
		return nil
	}

	mid := lo + (hi-lo)/2

	n := &Node{key: keys[mid], value: values[mid]}
	n.left = buildBalanced(keys, values, lo, mid)
	n.right = buildBalanced(keys, values, mid+1, hi)
	n.height = 1 + max(height(n.left), height(n.right))

	return n
}

// Len returns the number of stored keys.
func (t *Tree) Len() int {
	return t.count
}

// Height returns the height of the tree, 0 when empty.
func (t *Tree) Height() int {
	return height(t.root)
}

// Clear removes all entries.
func (t *Tree) Clear() {
	t.root = nil
	t.count = 0
}

// Insert stores value under key, overwriting the value when the key is
// already present.
func (t *Tree) Insert(key, value float64) {
	t.root = t.insert(t.root, key, value)
}

func (t *Tree) insert(n *Node, key, value float64) *Node {
	if n == nil {
		t.count++

		return &Node{key: key, value: value, height: 1}
	}

	switch {
	case key < n.key:
		n.left = t.insert(n.left, key, value)
	case key > n.key:
		n.right = t.insert(n.right, key, value)
	default:
		n.value = value

		return n
	}

	return rebalance(n)
}

// Update sets the value of an existing key and reports whether the key was
// present. It never creates a node.
func (t *Tree) Update(key, value float64) bool {
	n := t.Find(key)
	if n == nil {
		return false
	}

	n.value = value

	return true
}

// Remove deletes the entry at key and reports whether it existed. Deleting a
// node with two children swaps in the in-order successor and removes the
// successor's original node.
func (t *Tree) Remove(key float64) bool {
	root, removed := t.remove(t.root, key)
	t.root = root

	if removed {
		t.count--
	}

	return removed
}

func (t *Tree) remove(n *Node, key float64) (*Node, bool) {
	if n == nil {
		return nil, false
	}

	var removed bool

	switch {
	case key < n.key:
		n.left, removed = t.remove(n.left, key)
	case key > n.key:
		n.right, removed = t.remove(n.right, key)
	default:
		switch {
		case n.left == nil:
			return n.right, true
		case n.right == nil:
			return n.left, true
		default:
			succ := minNode(n.right)
			n.key = succ.key
			n.value = succ.value
			n.right, _ = t.remove(n.right, succ.key)
		}

		removed = true
	}

	return rebalance(n), removed
}

// Find returns the node stored at key, or nil.
func (t *Tree) Find(key float64) *Node {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}

	return nil
}

// FindLT returns the node with the largest key strictly less than key, or
// nil. An exact match is never returned.
func (t *Tree) FindLT(key float64) *Node {
	var best *Node

	n := t.root
	for n != nil {
		if n.key < key {
			best = n
			n = n.right
		} else {
			n = n.left
		}
	}

	return best
}

// FindLE returns the node at key when present, otherwise the result of
// FindLT.
func (t *Tree) FindLE(key float64) *Node {
	var best *Node

	n := t.root
	for n != nil {
		if n.key <= key {
			best = n
			n = n.right
		} else {
			n = n.left
		}
	}

	return best
}

// FindGT returns the node with the smallest key strictly greater than key,
// or nil.
func (t *Tree) FindGT(key float64) *Node {
	var best *Node

	n := t.root
	for n != nil {
		if n.key > key {
			best = n
			n = n.left
		} else {
			n = n.right
		}
	}

	return best
}

// FindNearest returns the exact match when key is present; otherwise the
// closer of the floor and ceiling candidates. A single candidate wins by
// default and the empty tree yields nil. On an exact distance tie the lesser
// key is preferred.
func (t *Tree) FindNearest(key float64) *Node {
	floor := t.FindLE(key)
	if floor != nil && floor.key == key {
		return floor
	}

	ceil := t.FindGT(key)

	switch {
	case floor == nil:
		return ceil
	case ceil == nil:
		return floor
	}

	if key-floor.key <= ceil.key-key {
		return floor
	}

	return ceil
}

// KeysInRange returns all keys k with from <= k <= to in ascending order.
// Both bounds are inclusive.
func (t *Tree) KeysInRange(from, to float64) []float64 {
	if from > to {
		return nil
	}

	var keys []float64

	collectRange(t.root, from, to, &keys)

	return keys
}

func collectRange(n *Node, from, to float64, keys *[]float64) {
	if n == nil {
		return
	}

	if n.key > from {
		collectRange(n.left, from, to, keys)
	}

	if n.key >= from && n.key <= to {
		*keys = append(*keys, n.key)
	}

	if n.key < to {
		collectRange(n.right, from, to, keys)
	}
}

// Walk calls fn for every entry in ascending key order until fn returns
// false.
func (t *Tree) Walk(fn func(key, value float64) bool) {
	walk(t.root, fn)
}

func walk(n *Node, fn func(key, value float64) bool) bool {
	if n == nil {
		return true
	}

	if !walk(n.left, fn) {
		return false
	}

	if !fn(n.key, n.value) {
		return false
	}

	return walk(n.right, fn)
}

// Min returns the node with the smallest key, or nil when empty.
func (t *Tree) Min() *Node {
	if t.root == nil {
		return nil
	}

	return minNode(t.root)
}

// Max returns the node with the largest key, or nil when empty.
func (t *Tree) Max() *Node {
	n := t.root
	if n == nil {
		return nil
	}

	for n.right != nil {
		n = n.right
	}

	return n
}

// Validate panics when a structural invariant is broken: key ordering,
// cached heights, or the AVL balance bound. It is an internal consistency
// check; no public operation sequence can trigger it.
func (t *Tree) Validate() {
	validate(t.root, math.Inf(-1), math.Inf(1))
}

func validate(n *Node, lo, hi float64) int {
	if n == nil {
		return 0
	}

	doAssert(n.key > lo && n.key < hi)

	lh := validate(n.left, lo, n.key)
	rh := validate(n.right, n.key, hi)

	doAssert(n.height == 1+max(lh, rh))

	bf := lh - rh
	doAssert(bf >= -1 && bf <= 1)

	return n.height
}

// Internal definitions.

func height(n *Node) int {
	if n == nil {
		return 0
	}

	return n.height
}

func balanceFactor(n *Node) int {
	return height(n.left) - height(n.right)
}

func updateHeight(n *Node) {
	n.height = 1 + max(height(n.left), height(n.right))
}

// rebalance recomputes the height of n and applies at most one single or
// double rotation to restore the balance bound, returning the subtree root.
func rebalance(n *Node) *Node {
	updateHeight(n)

	bf := balanceFactor(n)

	switch {
	case bf > 1:
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}

		return rotateRight(n)
	case bf < -1:
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}

		return rotateLeft(n)
	}

	return n
}

func rotateRight(n *Node) *Node {
	l := n.left
	n.left = l.right
	l.right = n
	updateHeight(n)
	updateHeight(l)

	return l
}

func rotateLeft(n *Node) *Node {
	r := n.right
	n.right = r.left
	r.left = n
	updateHeight(n)
	updateHeight(r)

	return r
}

func minNode(n *Node) *Node {
	for n.left != nil {
		n = n.left
	}

	return n
}

func doAssert(condition bool) {
	if !condition {
		panic("avltree internal assertion failed")
	}
}
