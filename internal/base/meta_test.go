package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaRoundTrip(t *testing.T) {
	m := MetaPage{
		Magic:      MagicNumber,
		Version:    FormatVersion,
		PageSize:   4096,
		Root:       17,
		NextPageID: 42,
	}
	buf := make([]byte, 4096)
	m.Encode(buf)

	got, err := DecodeMeta(buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestDecodeMetaValidation(t *testing.T) {
	valid := func() []byte {
		m := MetaPage{
			Magic:      MagicNumber,
			Version:    FormatVersion,
			PageSize:   4096,
			Root:       1,
			NextPageID: 2,
		}
		buf := make([]byte, 4096)
		m.Encode(buf)
		return buf
	}

	tests := []struct {
		name    string
		mutate  func([]byte)
		wantErr error
	}{
		{
			name:    "bad_magic",
			mutate:  func(b []byte) { b[0] = 0 },
			wantErr: ErrInvalidMagicNumber,
		},
		{
			name:    "bad_version",
			mutate:  func(b []byte) { b[4] = 0xFF },
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "flipped_root_byte",
			mutate:  func(b []byte) { b[16] ^= 0xFF },
			wantErr: ErrInvalidChecksum,
		},
		{
			name:    "flipped_counter_byte",
			mutate:  func(b []byte) { b[24] ^= 0xFF },
			wantErr: ErrInvalidChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := valid()
			tt.mutate(buf)
			_, err := DecodeMeta(buf, 4096)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeMetaPageSizeMismatch(t *testing.T) {
	m := MetaPage{
		Magic:      MagicNumber,
		Version:    FormatVersion,
		PageSize:   4096,
		Root:       1,
		NextPageID: 2,
	}
	buf := make([]byte, 4096)
	m.Encode(buf)

	_, err := DecodeMeta(buf, 8192)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}
