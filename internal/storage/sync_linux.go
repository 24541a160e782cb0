//go:build linux

package storage

import "golang.org/x/sys/unix"

// Sync flushes written pages to disk. fdatasync skips the metadata-only
// flush that a full fsync pays for; file size changes still reach disk.
func (s *Storage) Sync() error {
	return unix.Fdatasync(int(s.file.Fd()))
}
