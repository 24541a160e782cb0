// Package btree implements the tree driver: root-to-leaf traversal over
// pinned pages, insertion with split propagation, and point deletion.
//
// Traversal follows lock coupling: a child is pinned before its parent is
// released, so the path is never unprotected. Reads hold at most one pin at
// a time. Writes additionally retain the most recent ancestor that might
// still have to absorb a separator: once a node with spare capacity is
// reached it becomes the parent of record and everything above it is
// released, because no split can propagate past a node that is not full.
package btree

import (
	"errors"

	"mapledb/internal/base"
	"mapledb/internal/buffer"
	"mapledb/internal/node"
)

// ErrKeyNotFound is returned by Lookup for a key that is not in the tree.
var ErrKeyNotFound = errors.New("key not found")

// Tree is a disk-backed B+Tree index mapping uint64 keys to uint64 values.
// The driver itself is not goroutine-safe: callers serialize writers.
type Tree struct {
	pool   *buffer.Pool
	layout node.Layout

	root base.PageID // InvalidPageID while the tree is empty
	next base.PageID // next unallocated page id, monotonic
}

// New restores a tree from its persisted root and allocation counter.
// A fresh tree passes InvalidPageID and a zero counter; page 0 belongs to
// the meta page so tree pages are numbered from 1.
func New(pool *buffer.Pool, layout node.Layout, root, next base.PageID) *Tree {
	if next == base.InvalidPageID {
		next = 1
	}
	return &Tree{pool: pool, layout: layout, root: root, next: next}
}

// Root returns the current root page id, InvalidPageID if the tree is empty.
func (t *Tree) Root() base.PageID { return t.root }

// NextPageID returns the allocation counter to be persisted alongside Root.
func (t *Tree) NextPageID() base.PageID { return t.next }

func (t *Tree) allocPage() base.PageID {
	id := t.next
	t.next++
	return id
}

// Height returns the number of levels, 0 for an empty tree.
func (t *Tree) Height() (int, error) {
	if t.root == base.InvalidPageID {
		return 0, nil
	}
	h, err := t.pool.Pin(t.root, false)
	if err != nil {
		return 0, err
	}
	height := int(node.Level(h.Data())) + 1
	t.pool.Unpin(h, false)
	return height, nil
}

// Lookup returns the value stored under key, or ErrKeyNotFound.
func (t *Tree) Lookup(key uint64) (uint64, error) {
	if t.root == base.InvalidPageID {
		return 0, ErrKeyNotFound
	}

	cur, err := t.pool.Pin(t.root, false)
	if err != nil {
		return 0, err
	}
	for !node.IsLeaf(cur.Data()) {
		in := node.AsInner(cur.Data(), t.layout)
		child, err := t.pool.Pin(in.ChildAt(in.ChildIndex(key)), false)
		if err != nil {
			t.pool.Unpin(cur, false)
			return 0, err
		}
		t.pool.Unpin(cur, false)
		cur = child
	}

	leaf := node.AsLeaf(cur.Data(), t.layout)
	i, ok := leaf.LowerBound(key)
	if !ok || leaf.KeyAt(i) != key {
		t.pool.Unpin(cur, false)
		return 0, ErrKeyNotFound
	}
	value := leaf.ValueAt(i)
	t.pool.Unpin(cur, false)
	return value, nil
}

// Insert adds key/value to the tree, overwriting the value of an existing
// key. Nodes are split on the way down, so by the time a full node's child
// must promote a separator the parent is guaranteed to have room for it.
func (t *Tree) Insert(key, value uint64) error {
	if t.root == base.InvalidPageID {
		id := t.allocPage()
		h, err := t.pool.Pin(id, true)
		if err != nil {
			return err
		}
		leaf := node.InitLeaf(h.Data(), t.layout)
		leaf.Insert(key, value)
		t.root = id
		t.pool.Unpin(h, true)
		return nil
	}

	cur, err := t.pool.Pin(t.root, true)
	if err != nil {
		return err
	}
	curDirty := false

	var parent buffer.Handle
	hasParent := false
	parentDirty := false

	fail := func(err error) error {
		t.pool.Unpin(cur, curDirty)
		if hasParent {
			t.pool.Unpin(parent, parentDirty)
		}
		return err
	}

	for {
		if node.IsLeaf(cur.Data()) {
			leaf := node.AsLeaf(cur.Data(), t.layout)
			// A full leaf that already holds the key is overwritten in
			// place; only a genuinely new key forces a split.
			if leaf.IsFull() && !leaf.Contains(key) {
				rightID := t.allocPage()
				rh, err := t.pool.Pin(rightID, true)
				if err != nil {
					return fail(err)
				}
				right := node.InitLeaf(rh.Data(), t.layout)
				sep := leaf.Split(right)
				curDirty = true

				if err := t.promote(&parent, &hasParent, &parentDirty, cur.ID(), sep, rightID, 1); err != nil {
					t.pool.Unpin(rh, true)
					return fail(err)
				}
				if key < sep {
					t.pool.Unpin(rh, true)
				} else {
					t.pool.Unpin(cur, true)
					cur = rh
					leaf = right
				}
			}
			leaf.Insert(key, value)
			t.pool.Unpin(cur, true)
			if hasParent {
				t.pool.Unpin(parent, parentDirty)
			}
			return nil
		}

		in := node.AsInner(cur.Data(), t.layout)
		if in.IsFull() {
			rightID := t.allocPage()
			rh, err := t.pool.Pin(rightID, true)
			if err != nil {
				return fail(err)
			}
			right := node.InitInner(rh.Data(), t.layout, in.Level())
			sep := in.Split(right)
			curDirty = true

			if err := t.promote(&parent, &hasParent, &parentDirty, cur.ID(), sep, rightID, in.Level()+1); err != nil {
				t.pool.Unpin(rh, true)
				return fail(err)
			}
			if key < sep {
				t.pool.Unpin(rh, true)
			} else {
				t.pool.Unpin(cur, true)
				cur = rh
			}
			// cur is no longer full, take the safe-node branch below.
			continue
		}

		// Safe node: spare capacity here stops split propagation, so the
		// old parent is released and this node becomes parent of record.
		child, err := t.pool.Pin(in.ChildAt(in.ChildIndex(key)), true)
		if err != nil {
			return fail(err)
		}
		if hasParent {
			t.pool.Unpin(parent, parentDirty)
		}
		parent = cur
		hasParent = true
		parentDirty = curDirty
		cur = child
		curDirty = false
	}
}

// promote hands a freshly split node's separator and right sibling to the
// pinned parent. When the split node was the root there is no parent yet: a
// new root is built one level up and becomes the parent of record, pinned.
func (t *Tree) promote(parent *buffer.Handle, hasParent, parentDirty *bool, left base.PageID, sep uint64, right base.PageID, rootLevel uint16) error {
	if *hasParent {
		node.AsInner(parent.Data(), t.layout).Insert(sep, right)
		*parentDirty = true
		return nil
	}

	id := t.allocPage()
	h, err := t.pool.Pin(id, true)
	if err != nil {
		return err
	}
	root := node.InitInner(h.Data(), t.layout, rootLevel)
	root.InitRoot(left, sep, right)
	t.root = id

	*parent = h
	*hasParent = true
	*parentDirty = true
	return nil
}

// Erase removes key from its leaf if present. Absent keys and the empty
// tree are no-ops. Leaves are not merged or rebalanced on underflow and
// separator keys stay in the ancestors; pages are never reclaimed.
func (t *Tree) Erase(key uint64) error {
	if t.root == base.InvalidPageID {
		return nil
	}

	// Inner nodes are read-only on this path, so the descent pins them
	// shared like Lookup; only the leaf is taken exclusively. The root is
	// pinned exclusively because it may itself be the leaf.
	cur, err := t.pool.Pin(t.root, true)
	if err != nil {
		return err
	}
	for !node.IsLeaf(cur.Data()) {
		in := node.AsInner(cur.Data(), t.layout)
		child, err := t.pool.Pin(in.ChildAt(in.ChildIndex(key)), in.Level() == 1)
		if err != nil {
			t.pool.Unpin(cur, false)
			return err
		}
		t.pool.Unpin(cur, false)
		cur = child
	}

	removed := node.AsLeaf(cur.Data(), t.layout).Erase(key)
	t.pool.Unpin(cur, removed)
	return nil
}
