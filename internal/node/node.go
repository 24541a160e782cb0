// Package node implements the on-page B+Tree node layouts. A node is not a
// decoded copy of a page: Leaf and Inner are views over the pinned page
// buffer itself, and every accessor reads or writes the page bytes in place.
//
// Shared header (8 bytes):
//
//	[Level: 2][Count: 2][Reserved: 4]
//
// Level 0 marks a leaf; higher levels are inner nodes at that distance from
// the leaves. Count is the number of populated keys for a leaf and the
// number of children for an inner node.
package node

import "encoding/binary"

// Level returns the tree level stored in the page header.
func Level(page []byte) uint16 {
	return binary.LittleEndian.Uint16(page[0:2])
}

// Count returns the populated-slot count stored in the page header.
func Count(page []byte) uint16 {
	return binary.LittleEndian.Uint16(page[2:4])
}

// IsLeaf reports whether the page holds a level-0 node.
func IsLeaf(page []byte) bool {
	return Level(page) == 0
}

func setLevel(page []byte, level uint16) {
	binary.LittleEndian.PutUint16(page[0:2], level)
}

func setCount(page []byte, count uint16) {
	binary.LittleEndian.PutUint16(page[2:4], count)
}

func getU64(page []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(page[off : off+8])
}

func putU64(page []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(page[off:off+8], v)
}
