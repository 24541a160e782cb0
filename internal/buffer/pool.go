// Package buffer implements the page buffer pool. The tree driver never
// touches storage directly: it pins a page to get exclusive or shared access
// to its in-memory image, mutates it in place, and unpins it with a dirty
// flag. The pool bounds resident pages and writes dirty victims back to
// storage on eviction.
package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"

	"mapledb/internal/base"
	"mapledb/internal/storage"
)

// ErrPoolExhausted is returned by Pin when every frame is pinned and no
// victim can be evicted.
var ErrPoolExhausted = errors.New("buffer pool exhausted")

// MinPoolSize keeps enough frames for one root-to-leaf traversal holding a
// parent, a current node, and a split sibling, with room to spare.
const MinPoolSize = 8

// Frame is one resident page. The latch serializes access to the image
// between concurrent pinners; the pool's own lock only covers bookkeeping.
type Frame struct {
	id    base.PageID
	data  []byte
	latch sync.RWMutex

	// Guarded by the pool mutex. A frame with pins > 0 is never evicted.
	pins  int
	dirty bool
}

// ID returns the page id this frame holds.
func (f *Frame) ID() base.PageID { return f.id }

// Data returns the page image. Valid only between Pin and Unpin.
func (f *Frame) Data() []byte { return f.data }

// Handle is an acquired pin. It remembers the latch mode so Unpin releases
// the right half of the RWMutex.
type Handle struct {
	frame     *Frame
	exclusive bool
}

// ID returns the pinned page id.
func (h Handle) ID() base.PageID { return h.frame.id }

// Data returns the pinned page image.
func (h Handle) Data() []byte { return h.frame.data }

// Pool caches page frames over a storage backend with LRU eviction of
// unpinned frames.
type Pool struct {
	store    *storage.Storage
	capacity int

	mu     sync.Mutex
	frames map[base.PageID]*Frame            // every resident frame
	idle   *freelru.LRU[base.PageID, *Frame] // unpinned frames in eviction order

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func hashPageID(id base.PageID) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(id))
	return uint32(xxhash.Sum64(b[:]))
}

// NewPool creates a pool of at most capacity frames over store.
func NewPool(store *storage.Storage, capacity int) (*Pool, error) {
	capacity = max(capacity, MinPoolSize)

	idle, err := freelru.New[base.PageID, *Frame](uint32(capacity), hashPageID)
	if err != nil {
		return nil, err
	}
	return &Pool{
		store:    store,
		capacity: capacity,
		frames:   make(map[base.PageID]*Frame, capacity),
		idle:     idle,
	}, nil
}

// Pin acquires page id, loading it from storage on a miss. A page id past
// the end of the file yields a fresh zero image: that is how newly allocated
// tree pages come into existence. The returned handle holds the frame latch
// in the requested mode until Unpin.
func (p *Pool) Pin(id base.PageID, exclusive bool) (Handle, error) {
	p.mu.Lock()
	f, ok := p.frames[id]
	if ok {
		p.hits.Add(1)
		if f.pins == 0 {
			p.idle.Remove(id)
		}
		f.pins++
	} else {
		p.misses.Add(1)
		if len(p.frames) >= p.capacity {
			if err := p.evictLocked(); err != nil {
				p.mu.Unlock()
				return Handle{}, err
			}
		}
		f = &Frame{id: id, data: make([]byte, p.store.PageSize())}
		if err := p.store.ReadPage(id, f.data); err != nil && !errors.Is(err, base.ErrPageNotFound) {
			p.mu.Unlock()
			return Handle{}, err
		}
		f.pins = 1
		p.frames[id] = f
	}
	p.mu.Unlock()

	// Block outside the pool lock so other pages stay pinnable while we
	// wait for the frame latch.
	if exclusive {
		f.latch.Lock()
	} else {
		f.latch.RLock()
	}
	return Handle{frame: f, exclusive: exclusive}, nil
}

// evictLocked frees one frame slot, writing the victim back if dirty.
// Called with the pool mutex held.
func (p *Pool) evictLocked() error {
	id, victim, ok := p.idle.RemoveOldest()
	if !ok {
		return fmt.Errorf("%w: all %d frames pinned", ErrPoolExhausted, p.capacity)
	}
	if victim.dirty {
		if err := p.store.WritePage(id, victim.data); err != nil {
			// Keep the victim resident so the dirty image is not lost.
			p.idle.Add(id, victim)
			return err
		}
	}
	delete(p.frames, id)
	p.evictions.Add(1)
	return nil
}

// Unpin releases a pin. dirty marks the image as mutated; it sticks to the
// frame until the page is written back.
func (p *Pool) Unpin(h Handle, dirty bool) {
	f := h.frame

	// Record dirtiness before dropping the latch: once the pin count hits
	// zero the frame is an eviction candidate and must carry the flag.
	p.mu.Lock()
	if dirty {
		f.dirty = true
	}
	p.mu.Unlock()

	if h.exclusive {
		f.latch.Unlock()
	} else {
		f.latch.RUnlock()
	}

	p.mu.Lock()
	f.pins--
	if f.pins == 0 {
		p.idle.Add(f.id, f)
	}
	p.mu.Unlock()
}

// Flush writes every dirty frame back to storage and syncs the file. The
// caller must not hold pins across Flush.
func (p *Pool) Flush() error {
	p.mu.Lock()
	for id, f := range p.frames {
		if !f.dirty {
			continue
		}
		if err := p.store.WritePage(id, f.data); err != nil {
			p.mu.Unlock()
			return err
		}
		f.dirty = false
	}
	p.mu.Unlock()

	return p.store.Sync()
}

// Len returns the number of resident frames.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Hits:      p.hits.Load(),
		Misses:    p.misses.Load(),
		Evictions: p.evictions.Load(),
	}
}
