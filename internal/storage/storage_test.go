package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapledb/internal/base"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), 128)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorageEmpty(t *testing.T) {
	s := openTestStorage(t)

	empty, err := s.Empty()
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, s.WritePage(0, make([]byte, 128)))

	empty, err = s.Empty()
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestStorageReadWriteRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	page := make([]byte, 128)
	for i := range page {
		page[i] = byte(i)
	}
	require.NoError(t, s.WritePage(3, page))

	got := make([]byte, 128)
	require.NoError(t, s.ReadPage(3, got))
	assert.Equal(t, page, got)

	// Pages 0-2 were implicitly zero-extended by the sparse write.
	zero := make([]byte, 128)
	require.NoError(t, s.ReadPage(1, got))
	assert.Equal(t, zero, got)
}

func TestStorageReadPastEOF(t *testing.T) {
	s := openTestStorage(t)

	err := s.ReadPage(5, make([]byte, 128))
	assert.ErrorIs(t, err, base.ErrPageNotFound)

	require.NoError(t, s.WritePage(0, make([]byte, 128)))
	err = s.ReadPage(5, make([]byte, 128))
	assert.ErrorIs(t, err, base.ErrPageNotFound)
}

func TestStorageBufferSizeMismatch(t *testing.T) {
	s := openTestStorage(t)

	assert.Error(t, s.ReadPage(0, make([]byte, 64)))
	assert.Error(t, s.WritePage(0, make([]byte, 64)))
}

func TestStorageSync(t *testing.T) {
	s := openTestStorage(t)

	require.NoError(t, s.WritePage(0, make([]byte, 128)))
	assert.NoError(t, s.Sync())
}
