// Package mapledb is a disk-backed B+Tree index: an ordered map from uint64
// keys to uint64 values stored in fixed-size pages, with point lookup,
// insert-or-update, and delete. It is the indexing layer of a storage
// engine; values are typically row or page references.
package mapledb

import (
	"fmt"
	"sync"

	"mapledb/internal/base"
	"mapledb/internal/btree"
	"mapledb/internal/buffer"
	"mapledb/internal/node"
	"mapledb/internal/storage"
)

// DB is an open index file. Reads run in parallel; writes are serialized.
type DB struct {
	mu     sync.RWMutex
	opts   Options
	store  *storage.Storage
	pool   *buffer.Pool
	tree   *btree.Tree
	log    Logger
	closed bool
}

// Open opens or creates the index file at path.
func Open(path string, options ...Option) (*DB, error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}

	layout, err := node.NewLayout(opts.pageSize)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(path, opts.pageSize)
	if err != nil {
		return nil, err
	}

	pool, err := buffer.NewPool(store, opts.cacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	db := &DB{
		opts:  opts,
		store: store,
		pool:  pool,
		log:   opts.logger,
	}

	empty, err := store.Empty()
	if err != nil {
		store.Close()
		return nil, err
	}

	var meta base.MetaPage
	if empty {
		db.tree = btree.New(pool, layout, base.InvalidPageID, base.InvalidPageID)
		if err := db.writeMeta(); err != nil {
			store.Close()
			return nil, err
		}
		if err := store.Sync(); err != nil {
			store.Close()
			return nil, err
		}
	} else {
		buf := make([]byte, opts.pageSize)
		if err := store.ReadPage(0, buf); err != nil {
			store.Close()
			return nil, fmt.Errorf("reading meta page: %w", err)
		}
		meta, err = base.DecodeMeta(buf, opts.pageSize)
		if err != nil {
			store.Close()
			return nil, err
		}
		db.tree = btree.New(pool, layout, meta.Root, meta.NextPageID)
	}

	db.log.Info("database opened",
		"path", path,
		"pageSize", opts.pageSize,
		"root", uint64(db.tree.Root()),
	)
	return db, nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (db *DB) Get(key uint64) (uint64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return 0, ErrDatabaseClosed
	}
	return db.tree.Lookup(key)
}

// Put inserts key/value, overwriting the value of an existing key.
func (db *DB) Put(key, value uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	if err := db.tree.Insert(key, value); err != nil {
		return err
	}
	return db.commit()
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	if err := db.tree.Erase(key); err != nil {
		return err
	}
	return db.commit()
}

// commit makes the mutation durable under SyncEveryCommit: dirty pages
// first, then the meta page pointing at them.
func (db *DB) commit() error {
	if db.opts.syncMode != SyncEveryCommit {
		return nil
	}
	if err := db.pool.Flush(); err != nil {
		return err
	}
	if err := db.writeMeta(); err != nil {
		return err
	}
	return db.store.Sync()
}

// writeMeta persists the tree's root pointer and allocation counter to
// page 0.
func (db *DB) writeMeta() error {
	meta := base.MetaPage{
		Magic:      base.MagicNumber,
		Version:    base.FormatVersion,
		PageSize:   uint32(db.opts.pageSize),
		Root:       db.tree.Root(),
		NextPageID: db.tree.NextPageID(),
	}
	buf := make([]byte, db.opts.pageSize)
	meta.Encode(buf)
	return db.store.WritePage(0, buf)
}

// Close flushes all state and closes the file. Further calls are no-ops.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	if err := db.pool.Flush(); err != nil {
		return err
	}
	if err := db.writeMeta(); err != nil {
		return err
	}
	if err := db.store.Sync(); err != nil {
		return err
	}
	db.closed = true
	db.log.Info("database closed")
	return db.store.Close()
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Height         int    // tree levels, 0 when empty
	Pages          uint64 // tree pages ever allocated
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
}

// Stats reports tree shape and buffer-pool counters.
func (db *DB) Stats() (Stats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return Stats{}, ErrDatabaseClosed
	}
	height, err := db.tree.Height()
	if err != nil {
		return Stats{}, err
	}
	pool := db.pool.Stats()
	return Stats{
		Height:         height,
		Pages:          uint64(db.tree.NextPageID()) - 1,
		CacheHits:      pool.Hits,
		CacheMisses:    pool.Misses,
		CacheEvictions: pool.Evictions,
	}, nil
}
