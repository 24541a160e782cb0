package mapledb

import (
	"errors"

	"mapledb/internal/base"
	"mapledb/internal/btree"
	"mapledb/internal/buffer"
)

var (
	ErrKeyNotFound    = btree.ErrKeyNotFound
	ErrDatabaseClosed = errors.New("database is closed")

	ErrPoolExhausted = buffer.ErrPoolExhausted

	ErrPageNotFound       = base.ErrPageNotFound
	ErrInvalidMagicNumber = base.ErrInvalidMagicNumber
	ErrInvalidVersion     = base.ErrInvalidVersion
	ErrInvalidPageSize    = base.ErrInvalidPageSize
	ErrInvalidChecksum    = base.ErrInvalidChecksum
)
