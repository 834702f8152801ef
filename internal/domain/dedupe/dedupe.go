// Package dedupe defines the interface for assessment job idempotency
// tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the deduper when no option overrides it.
const defaultMaxSize = 50_000

// Deduper records seen job IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if
	// not. Returns true if id was already seen, false if it was newly
	// recorded. This is the only method for deduplication and is safe
	// for concurrent use.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing the job to be
	// resubmitted. Use only when a job was marked seen but could not be
	// processed (e.g., queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// entry is a single id in the eviction list.
type entry struct {
	id   string
	next *entry
}

func (e *entry) reset() {
	e.id = ""
	e.next = nil
}

// memoryDeduper implements Deduper in memory.
// Bounded mode (maxSize > 0) keeps ids on a linked list, evicting the
// oldest entry when full, and recycles entries through a sync.Pool.
// Unbounded mode (maxSize <= 0) is a plain map with no eviction.
type memoryDeduper struct {
	mu      sync.RWMutex
	seen    map[string]*entry // id -> entry in bounded mode, nil values otherwise
	newest  *entry            // most recently recorded id
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration
// options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*entry)
	if d.maxSize > 0 {
		d.pool = sync.Pool{
			New: func() interface{} {
				return &entry{}
			},
		}
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *memoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}

		e := d.pool.Get().(*entry)
		e.id = id
		e.next = d.newest
		d.newest = e
		d.seen[id] = e
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list.
func (d *memoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	if d.maxSize <= 0 {
		return
	}

	// Unlink from the eviction list.
	if d.newest == e {
		d.newest = e.next
	} else {
		cur := d.newest
		for cur != nil && cur.next != e {
			cur = cur.next
		}
		if cur != nil {
			cur.next = e.next
		}
	}
	e.reset()
	d.pool.Put(e)
}

// evictOldest drops the entry at the tail of the list.
// Must be called with d.mu held.
func (d *memoryDeduper) evictOldest() {
	if d.newest == nil {
		return
	}

	var prev *entry
	cur := d.newest
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}

	if prev == nil {
		d.newest = nil
	} else {
		prev.next = nil
	}
	delete(d.seen, cur.id)
	cur.reset()
	d.pool.Put(cur)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *memoryDeduper) Size() int64 {
	return d.size.Load()
}
