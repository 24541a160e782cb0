package mapledb

import "mapledb/internal/base"

// SyncMode controls when writes are fsynced to disk.
type SyncMode int

const (
	// SyncEveryCommit flushes dirty pages and the meta page after every
	// Put and Delete.
	// - Guarantees the tree on disk is consistent after each operation
	// - Limited by fsync latency (typically 1-10ms per operation)
	// - Use for: anything whose loss would hurt
	SyncEveryCommit SyncMode = iota

	// SyncOff only flushes on Close.
	// - Maximum throughput
	// - A crash loses everything since the last Close
	// - Use for: testing, bulk index builds with external durability
	SyncOff
)

// DefaultCacheSize is the default number of buffer-pool frames.
const DefaultCacheSize = 1024

// Options configures database behavior.
type Options struct {
	pageSize  int
	cacheSize int
	syncMode  SyncMode
	logger    Logger
}

func defaultOptions() Options {
	return Options{
		pageSize:  base.DefaultPageSize,
		cacheSize: DefaultCacheSize,
		syncMode:  SyncEveryCommit,
		logger:    DiscardLogger{},
	}
}

// Option configures database options using the functional options pattern.
type Option func(*Options)

// WithPageSize sets the page size for a newly created file. Every node of
// the tree lives in one page of this size; reopening an existing file with
// a different page size fails. Must be a multiple of 16, at least 64.
func WithPageSize(size int) Option {
	return func(opts *Options) {
		opts.pageSize = size
	}
}

// WithCacheSize sets the number of pages the buffer pool keeps in memory.
func WithCacheSize(frames int) Option {
	return func(opts *Options) {
		opts.cacheSize = frames
	}
}

// WithSyncEveryCommit flushes to disk after every mutation.
// This provides maximum durability but lower throughput.
//
//goland:noinspection GoUnusedExportedFunction
func WithSyncEveryCommit() Option {
	return func(opts *Options) {
		opts.syncMode = SyncEveryCommit
	}
}

// WithSyncOff defers all flushing to Close.
// Unflushed mutations are lost on crash. Only use where the index can be
// rebuilt.
//
//goland:noinspection GoUnusedExportedFunction
func WithSyncOff() Option {
	return func(opts *Options) {
		opts.syncMode = SyncOff
	}
}

// WithLogger routes the database's log output through l. The default
// discards everything; *slog.Logger satisfies the interface directly.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}
