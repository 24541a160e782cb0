package node

import (
	"fmt"
	"sort"

	"mapledb/internal/base"
)

// Inner is a view over a page interpreted as a routing node. An inner node
// at level L holds count children (each a level L-1 node) and count-1
// separator keys. Child i covers keys strictly below separator i; the last
// child covers everything from the last separator upward. A key equal to a
// separator routes right of it, because a leaf split leaves the separator
// key itself in the right sibling.
type Inner struct {
	page []byte
	l    Layout
}

// AsInner wraps an existing page image. The caller must have dispatched on
// IsLeaf first.
func AsInner(page []byte, l Layout) Inner {
	return Inner{page: page, l: l}
}

// InitInner formats a fresh page as an empty inner node at the given level.
func InitInner(page []byte, l Layout, level uint16) Inner {
	if level == 0 {
		panic("inner: level 0 is a leaf")
	}
	setLevel(page, level)
	setCount(page, 0)
	return Inner{page: page, l: l}
}

func (n Inner) keyOff(i int) int   { return HeaderSize + i*8 }
func (n Inner) childOff(i int) int { return HeaderSize + (n.l.InnerCapacity-1)*8 + i*8 }

// Level returns the node's distance from the leaves.
func (n Inner) Level() uint16 { return Level(n.page) }

// Count returns the number of populated children.
func (n Inner) Count() int { return int(Count(n.page)) }

// KeyCount returns the number of populated separator keys, one fewer than
// the child count.
func (n Inner) KeyCount() int {
	if c := n.Count(); c > 0 {
		return c - 1
	}
	return 0
}

// IsFull reports whether Insert of another child would exceed capacity.
func (n Inner) IsFull() bool { return n.Count() == n.l.InnerCapacity }

// KeyAt returns separator key i. i must be < KeyCount.
func (n Inner) KeyAt(i int) uint64 {
	if i < 0 || i >= n.KeyCount() {
		panic(fmt.Sprintf("inner: key slot %d out of range, count %d", i, n.Count()))
	}
	return getU64(n.page, n.keyOff(i))
}

// ChildAt returns the page id of child i. i must be < Count.
func (n Inner) ChildAt(i int) base.PageID {
	if i < 0 || i >= n.Count() {
		panic(fmt.Sprintf("inner: child slot %d out of range, count %d", i, n.Count()))
	}
	return base.PageID(getU64(n.page, n.childOff(i)))
}

// LowerBound returns the smallest index i such that KeyAt(i) >= key. ok is
// false when key is greater than every separator.
func (n Inner) LowerBound(key uint64) (index int, ok bool) {
	count := n.KeyCount()
	if count < searchThreshold {
		i := 0
		for i < count && n.KeyAt(i) < key {
			i++
		}
		return i, i < count
	}
	i := sort.Search(count, func(i int) bool {
		return n.KeyAt(i) >= key
	})
	return i, i < count
}

// ChildIndex returns the index of the child to descend into for key: the
// first child whose separator is strictly greater than key, or the rightmost
// child when no separator is.
func (n Inner) ChildIndex(key uint64) int {
	count := n.KeyCount()
	if count < searchThreshold {
		i := 0
		for i < count && key >= n.KeyAt(i) {
			i++
		}
		return i
	}
	return sort.Search(count, func(i int) bool {
		return key < n.KeyAt(i)
	})
}

// InitRoot populates a fresh root after a root split: the old root as child
// 0, the promoted separator, and the new right sibling as child 1.
func (n Inner) InitRoot(left base.PageID, separator uint64, right base.PageID) {
	if n.Count() != 0 {
		panic("inner: InitRoot on populated node")
	}
	putU64(n.page, n.childOff(0), uint64(left))
	putU64(n.page, n.keyOff(0), separator)
	putU64(n.page, n.childOff(1), uint64(right))
	setCount(n.page, 2)
}

// Insert places a separator produced by a child split, with the new right
// sibling immediately after the child it split from. Inserting into a full
// node is a caller bug: the driver must split first.
func (n Inner) Insert(separator uint64, right base.PageID) {
	count := n.Count()
	if count == n.l.InnerCapacity {
		panic("inner: insert into full node")
	}
	if count == 0 {
		panic("inner: insert before InitRoot")
	}
	i, _ := n.LowerBound(separator)
	// Shift keys [i, count-1) and children [i+1, count) right by one.
	copy(n.page[n.keyOff(i+1):n.keyOff(count)], n.page[n.keyOff(i):n.keyOff(count-1)])
	copy(n.page[n.childOff(i+2):n.childOff(count+1)], n.page[n.childOff(i+1):n.childOff(count)])
	putU64(n.page, n.keyOff(i), separator)
	putU64(n.page, n.childOff(i+1), uint64(right))
	setCount(n.page, uint16(count+1))
}

// Split moves the upper half of the children into right, a freshly
// initialized empty inner node at the same level, and returns the promoted
// separator. The promoted key is consumed: it appears in neither half.
// The caller must only split a full node.
func (n Inner) Split(right Inner) uint64 {
	count := n.Count()
	if count < 3 {
		panic("inner: split of node with fewer than three children")
	}
	mid := (count + 1) / 2 // children staying left
	promoted := n.KeyAt(mid - 1)
	moved := count - mid

	// Keys after the promoted one move right; the promoted key itself is
	// consumed by the parent.
	copy(right.page[right.keyOff(0):right.keyOff(moved-1)], n.page[n.keyOff(mid):n.keyOff(count-1)])
	copy(right.page[right.childOff(0):right.childOff(moved)], n.page[n.childOff(mid):n.childOff(count)])
	setLevel(right.page, n.Level())
	setCount(right.page, uint16(moved))
	setCount(n.page, uint16(mid))

	return promoted
}

// Keys returns the populated separator keys in order. Test helper.
func (n Inner) Keys() []uint64 {
	keys := make([]uint64, n.KeyCount())
	for i := range keys {
		keys[i] = n.KeyAt(i)
	}
	return keys
}

// Children returns the populated child page ids in order. Test helper.
func (n Inner) Children() []base.PageID {
	children := make([]base.PageID, n.Count())
	for i := range children {
		children[i] = n.ChildAt(i)
	}
	return children
}
