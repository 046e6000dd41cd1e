// Package buffer implements the fixed-size paged buffer pool: a Replacer
// policy, a BufferPoolInstance that owns one frame array, and a
// ParallelBufferPool that shards page ids across N instances.
package buffer

import (
	"container/list"
	"sync"
)

// FrameID indexes a frame within a single BufferPoolInstance's array.
type FrameID int

// Replacer selects which unpinned frame to evict next. The buffer pool
// calls Pin when a frame starts being used (removing it from eviction
// candidacy) and Unpin when it stops (making it a candidate again).
//
// Implementations are internally synchronized; the buffer pool's instance
// latch already serializes all calls into a Replacer, but the replacer
// keeps its own lock so it composes correctly if ever called from more than
// one place (spec.md §5: "Replacer latch ... always acquired inside a
// buffer pool call, never held across calls").
type Replacer interface {
	// Victim removes and returns the least-recently-unpinned frame. The
	// second return is false if the replacer is empty.
	Victim() (FrameID, bool)
	// Pin removes frameID from the replacer, if present.
	Pin(frameID FrameID)
	// Unpin inserts frameID as most-recently-used, if not already present
	// and the replacer has spare capacity.
	Unpin(frameID FrameID)
	Size() int
}

// LRUReplacer tracks unpinned frames in recency order using a doubly linked
// list plus a lookup map for O(1) Pin/Unpin, the same shape as a classic
// bustub-style LRU replacer (see other_examples/Adarsh-Kmt-DragonDB__lru_replacer.go).
// Insertion happens at the front (MRU); eviction happens at the back (LRU).
type LRUReplacer struct {
	mu       sync.Mutex
	capacity int
	list     *list.List
	elems    map[FrameID]*list.Element
}

// NewLRUReplacer creates a replacer that holds at most capacity frames.
func NewLRUReplacer(capacity int) *LRUReplacer {
	return &LRUReplacer{
		capacity: capacity,
		list:     list.New(),
		elems:    make(map[FrameID]*list.Element, capacity),
	}
}

// Victim removes and returns the back of the list — the frame unpinned
// longest ago.
func (r *LRUReplacer) Victim() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	back := r.list.Back()
	if back == nil {
		return 0, false
	}
	frameID := back.Value.(FrameID)
	r.list.Remove(back)
	delete(r.elems, frameID)
	return frameID, true
}

// Pin removes frameID from the replacer so it is no longer an eviction
// candidate. A no-op if frameID isn't present (e.g. called twice).
func (r *LRUReplacer) Pin(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.elems[frameID]; ok {
		r.list.Remove(elem)
		delete(r.elems, frameID)
	}
}

// Unpin inserts frameID at the front of the list (most recently unpinned),
// unless it is already present or the replacer is already at capacity.
func (r *LRUReplacer) Unpin(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.elems[frameID]; ok {
		return
	}
	if r.list.Len() >= r.capacity {
		return
	}
	r.elems[frameID] = r.list.PushFront(frameID)
}

// Size returns the number of frames currently tracked.
func (r *LRUReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.Len()
}
