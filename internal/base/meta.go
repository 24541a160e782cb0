package base

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// MetaSize is the number of bytes the encoded meta page occupies at the
// start of page 0. The rest of the page is zero.
const MetaSize = 40

// MetaPage is the persisted tree state stored in page 0 of the file.
//
// Layout: [Magic: 4][Version: 2][Reserved: 2][PageSize: 4][Reserved: 4][Root: 8][NextPageID: 8][Checksum: 8]
type MetaPage struct {
	Magic      uint32
	Version    uint16
	PageSize   uint32
	Root       PageID // InvalidPageID means the tree is empty
	NextPageID PageID // next unallocated tree page id, starts at 1
	Checksum   uint64
}

// Encode writes the meta page into buf, which must be at least MetaSize
// bytes. The checksum is computed over the preceding fields.
func (m *MetaPage) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], m.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], m.Version)
	binary.LittleEndian.PutUint16(buf[6:8], 0)
	binary.LittleEndian.PutUint32(buf[8:12], m.PageSize)
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(m.Root))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(m.NextPageID))
	m.Checksum = xxhash.Sum64(buf[:32])
	binary.LittleEndian.PutUint64(buf[32:40], m.Checksum)
}

// DecodeMeta parses and validates the meta page read from page 0.
// pageSize is the size the caller was configured with; a mismatch with the
// persisted size is an error because capacities are derived from it.
func DecodeMeta(buf []byte, pageSize int) (MetaPage, error) {
	if len(buf) < MetaSize {
		return MetaPage{}, fmt.Errorf("%w: %d-byte meta buffer", ErrInvalidPageSize, len(buf))
	}
	m := MetaPage{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint16(buf[4:6]),
		PageSize:   binary.LittleEndian.Uint32(buf[8:12]),
		Root:       PageID(binary.LittleEndian.Uint64(buf[16:24])),
		NextPageID: PageID(binary.LittleEndian.Uint64(buf[24:32])),
		Checksum:   binary.LittleEndian.Uint64(buf[32:40]),
	}

	if m.Magic != MagicNumber {
		return MetaPage{}, fmt.Errorf("%w: got 0x%x", ErrInvalidMagicNumber, m.Magic)
	}
	if m.Version != FormatVersion {
		return MetaPage{}, fmt.Errorf("%w: got %d, want %d", ErrInvalidVersion, m.Version, FormatVersion)
	}
	if int(m.PageSize) != pageSize {
		return MetaPage{}, fmt.Errorf("%w: file uses %d, configured %d", ErrInvalidPageSize, m.PageSize, pageSize)
	}
	if sum := xxhash.Sum64(buf[:32]); sum != m.Checksum {
		return MetaPage{}, fmt.Errorf("%w: got 0x%x, want 0x%x", ErrInvalidChecksum, sum, m.Checksum)
	}
	return m, nil
}
