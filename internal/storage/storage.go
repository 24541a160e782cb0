// Package storage implements the page-granular file backend. It knows
// nothing about node layouts: callers hand it page images and ids, and it
// maps id N to file offset N*pageSize.
package storage

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"mapledb/internal/base"
)

// Storage reads and writes fixed-size pages of a single database file.
type Storage struct {
	file     *os.File
	pageSize int

	// Stats counters
	reads  atomic.Uint64
	writes atomic.Uint64
}

// Open opens or creates the database file at path.
func Open(path string, pageSize int) (*Storage, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	return &Storage{file: file, pageSize: pageSize}, nil
}

// PageSize returns the page size this store was opened with.
func (s *Storage) PageSize() int { return s.pageSize }

// Empty reports whether the file holds no pages yet.
func (s *Storage) Empty() (bool, error) {
	info, err := s.file.Stat()
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

// ReadPage reads page id into buf, which must be pageSize bytes. A page
// that was never written reports base.ErrPageNotFound so the buffer pool
// can materialize a fresh zero image for it.
func (s *Storage) ReadPage(id base.PageID, buf []byte) error {
	if len(buf) != s.pageSize {
		return fmt.Errorf("storage: read buffer is %d bytes, want %d", len(buf), s.pageSize)
	}
	offset := int64(id) * int64(s.pageSize)

	s.reads.Add(1)
	n, err := s.file.ReadAt(buf, offset)
	if err == io.EOF && n == 0 {
		return fmt.Errorf("%w: page %d past end of file", base.ErrPageNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("storage: read page %d: %w", id, err)
	}
	return nil
}

// WritePage writes buf as page id, extending the file as needed.
func (s *Storage) WritePage(id base.PageID, buf []byte) error {
	if len(buf) != s.pageSize {
		return fmt.Errorf("storage: write buffer is %d bytes, want %d", len(buf), s.pageSize)
	}
	offset := int64(id) * int64(s.pageSize)

	s.writes.Add(1)
	if _, err := s.file.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("storage: write page %d: %w", id, err)
	}
	return nil
}

// Reads returns the number of page reads issued.
func (s *Storage) Reads() uint64 { return s.reads.Load() }

// Writes returns the number of page writes issued.
func (s *Storage) Writes() uint64 { return s.writes.Load() }

// Close closes the underlying file without syncing. Callers flush first.
func (s *Storage) Close() error {
	return s.file.Close()
}
