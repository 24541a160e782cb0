package node

import (
	"fmt"
	"sort"
)

// searchThreshold is the count below which a linear scan beats binary search.
const searchThreshold = 32

// Leaf is a view over a page interpreted as a level-0 node holding sorted
// key/value pairs.
type Leaf struct {
	page []byte
	l    Layout
}

// AsLeaf wraps an existing page image. The caller must have dispatched on
// IsLeaf first.
func AsLeaf(page []byte, l Layout) Leaf {
	return Leaf{page: page, l: l}
}

// InitLeaf formats a fresh page as an empty leaf.
func InitLeaf(page []byte, l Layout) Leaf {
	setLevel(page, 0)
	setCount(page, 0)
	return Leaf{page: page, l: l}
}

func (n Leaf) keyOff(i int) int   { return HeaderSize + i*8 }
func (n Leaf) valueOff(i int) int { return HeaderSize + n.l.LeafCapacity*8 + i*8 }

// Count returns the number of populated key/value pairs.
func (n Leaf) Count() int { return int(Count(n.page)) }

// IsFull reports whether Insert of a new key would exceed capacity.
func (n Leaf) IsFull() bool { return n.Count() == n.l.LeafCapacity }

// KeyAt returns the key in slot i. i must be < Count.
func (n Leaf) KeyAt(i int) uint64 {
	n.check(i)
	return getU64(n.page, n.keyOff(i))
}

// ValueAt returns the value in slot i. i must be < Count.
func (n Leaf) ValueAt(i int) uint64 {
	n.check(i)
	return getU64(n.page, n.valueOff(i))
}

func (n Leaf) check(i int) {
	if i < 0 || i >= n.Count() {
		panic(fmt.Sprintf("leaf: slot %d out of range, count %d", i, n.Count()))
	}
}

// LowerBound returns the smallest index i such that KeyAt(i) >= key. ok is
// false when key is greater than every stored key, in which case index is
// Count (the append position).
func (n Leaf) LowerBound(key uint64) (index int, ok bool) {
	count := n.Count()
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

// Contains reports whether key is present.
func (n Leaf) Contains(key uint64) bool {
	i, ok := n.LowerBound(key)
	return ok && n.KeyAt(i) == key
}

// Insert adds key/value keeping sort order. An existing key has its value
// overwritten in place and the count is unchanged. Inserting a new key into
// a full leaf is a caller bug: the driver must split first.
func (n Leaf) Insert(key, value uint64) {
	i, ok := n.LowerBound(key)
	if ok && n.KeyAt(i) == key {
		putU64(n.page, n.valueOff(i), value)
		return
	}
	count := n.Count()
	if count == n.l.LeafCapacity {
		panic("leaf: insert into full node")
	}
	// Shift slots [i, count) right by one.
	copy(n.page[n.keyOff(i+1):n.keyOff(count+1)], n.page[n.keyOff(i):n.keyOff(count)])
	copy(n.page[n.valueOff(i+1):n.valueOff(count+1)], n.page[n.valueOff(i):n.valueOff(count)])
	putU64(n.page, n.keyOff(i), key)
	putU64(n.page, n.valueOff(i), value)
	setCount(n.page, uint16(count+1))
}

// Erase removes key if present and reports whether it did. There is no
// rebalancing: an underflowed leaf keeps its remaining entries.
func (n Leaf) Erase(key uint64) bool {
	i, ok := n.LowerBound(key)
	if !ok || n.KeyAt(i) != key {
		return false
	}
	count := n.Count()
	copy(n.page[n.keyOff(i):n.keyOff(count-1)], n.page[n.keyOff(i+1):n.keyOff(count)])
	copy(n.page[n.valueOff(i):n.valueOff(count-1)], n.page[n.valueOff(i+1):n.valueOff(count)])
	setCount(n.page, uint16(count-1))
	return true
}

// Split moves the upper half of the entries into right, a freshly
// initialized empty leaf, and returns the separator key: the first key now
// resident in right. Every key left behind is strictly less than the
// separator. The caller must only split a full node.
func (n Leaf) Split(right Leaf) uint64 {
	count := n.Count()
	if count < 2 {
		panic("leaf: split of node with fewer than two entries")
	}
	mid := (count + 1) / 2 // entries staying left
	moved := count - mid

	copy(right.page[right.keyOff(0):right.keyOff(moved)], n.page[n.keyOff(mid):n.keyOff(count)])
	copy(right.page[right.valueOff(0):right.valueOff(moved)], n.page[n.valueOff(mid):n.valueOff(count)])
	setCount(right.page, uint16(moved))
	setCount(n.page, uint16(mid))

	return right.KeyAt(0)
}

// Keys returns the populated keys in order. Test helper.
func (n Leaf) Keys() []uint64 {
	keys := make([]uint64, n.Count())
	for i := range keys {
		keys[i] = n.KeyAt(i)
	}
	return keys
}

// Values returns the populated values in key order. Test helper.
func (n Leaf) Values() []uint64 {
	values := make([]uint64, n.Count())
	for i := range values {
		values[i] = n.ValueAt(i)
	}
	return values
}
