package node

import (
	"fmt"

	"mapledb/internal/base"
)

const (
	// HeaderSize is the shared node header: level (2), count (2), 4 reserved.
	HeaderSize = 8

	// slotSize is one key plus one value or child pointer, both 8 bytes.
	slotSize = 16
)

// Layout carries the capacity math derived from a tree's page size. Every
// node of one tree shares a single Layout.
type Layout struct {
	PageSize int
	// LeafCapacity is the maximum number of key/value pairs in a leaf.
	LeafCapacity int
	// InnerCapacity is the maximum number of children in an inner node.
	// An inner node stores one fewer separator key than children.
	InnerCapacity int
}

// NewLayout validates the page size and derives node capacities.
//
// Leaf:  header | keys[LeafCapacity] | values[LeafCapacity]
// Inner: header | keys[InnerCapacity-1] | children[InnerCapacity]
func NewLayout(pageSize int) (Layout, error) {
	if pageSize < base.MinPageSize {
		return Layout{}, fmt.Errorf("%w: %d is below minimum %d", base.ErrInvalidPageSize, pageSize, base.MinPageSize)
	}
	if pageSize%base.PageAlign != 0 {
		return Layout{}, fmt.Errorf("%w: %d is not a multiple of %d", base.ErrInvalidPageSize, pageSize, base.PageAlign)
	}
	return Layout{
		PageSize:     pageSize,
		LeafCapacity: (pageSize - HeaderSize) / slotSize,
		// header(8) + keys((c-1)*8) + children(c*8) == 16*c <= pageSize
		InnerCapacity: pageSize / slotSize,
	}, nil
}
