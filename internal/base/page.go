// Package base holds the types shared by every layer of the engine: page
// identifiers, page-size constants, and the meta page layout.
package base

const (
	// DefaultPageSize is the page size used when Open is not given one.
	DefaultPageSize = 4096

	// MinPageSize bounds configurable page sizes from below so that even the
	// smallest page can hold the node header plus a handful of entries.
	MinPageSize = 64

	// PageAlign is the required multiple for configurable page sizes. Node
	// slots are 16 bytes (8-byte key + 8-byte value or child), so capacity
	// math stays exact when the page size is a multiple of 16.
	PageAlign = 16

	// MagicNumber for file format identification ("mapl" in hex)
	MagicNumber uint32 = 0x6d61706c

	FormatVersion uint16 = 1
)

// PageID identifies a page within the database file. Page 0 is the meta
// page; tree pages are numbered from 1. The zero PageID therefore doubles
// as "no page" for the tree's root pointer.
type PageID uint64

const InvalidPageID PageID = 0
