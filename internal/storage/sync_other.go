//go:build !linux

package storage

// Sync flushes written pages to disk.
func (s *Storage) Sync() error {
	return s.file.Sync()
}
