package buffer

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"corebase/logging"
	"corebase/storage/disk"
	"corebase/storage/page"
)

// Sentinel errors surfaced by a BufferPoolInstance, per spec.md §7.
var (
	ErrAllPinned       = errors.New("buffer: all frames pinned")
	ErrPageNotResident = errors.New("buffer: page not resident and all frames pinned")
	ErrInvalidUnpin    = errors.New("buffer: unpin of non-resident or already-unpinned page")
)

// Stats is a read-only snapshot of pool occupancy, supplementing the core
// spec with the kind of introspection the teacher's own BufferPoolStats
// exposes (storage_engine/bufferpool/structs.go) — additive, does not
// change any buffer pool invariant.
type Stats struct {
	Resident int
	Pinned   int
	Dirty    int
	Capacity int
}

// Instance owns one fixed array of frames: a page table, a free list, and a
// Replacer for the unpinned-but-resident frames. All operations are
// serialized by a single instance-wide latch (spec.md §5); I/O happens
// inside that latch, which is a deliberate simplification (no operation
// suspends while holding it).
type Instance struct {
	mu sync.Mutex

	poolSize     int
	numInstances int
	instanceIdx  int
	nextPageID   int64

	disk     *disk.Manager
	replacer Replacer

	frames    []*page.Page
	pageTable map[int64]FrameID
	freeList  []FrameID

	log *logrus.Entry
}

// NewInstance builds one buffer pool shard. numInstances/instanceIndex
// govern page id sharding (spec.md §4.2); pass numInstances=1,
// instanceIndex=0 for a standalone pool.
func NewInstance(poolSize, numInstances, instanceIndex int, dm *disk.Manager) *Instance {
	frames := make([]*page.Page, poolSize)
	freeList := make([]FrameID, poolSize)
	for i := range frames {
		frames[i] = page.New(page.InvalidPageID)
		freeList[i] = FrameID(i)
	}

	return &Instance{
		poolSize:     poolSize,
		numInstances: numInstances,
		instanceIdx:  instanceIndex,
		nextPageID:   int64(instanceIndex),
		disk:         dm,
		replacer:     NewLRUReplacer(poolSize),
		frames:       frames,
		pageTable:    make(map[int64]FrameID, poolSize),
		freeList:     freeList,
		log:          logging.For("bufferpool"),
	}
}

// allocatePageID advances this instance's counter by numInstances, so every
// id it ever returns satisfies id mod numInstances == instanceIdx
// (spec.md §4.2, tested by §8 property 3).
func (bp *Instance) allocatePageID() int64 {
	id := bp.nextPageID
	bp.nextPageID += int64(bp.numInstances)
	return id
}

// victim picks a frame to reuse: free list first, then the replacer.
// Returns ok=false if every frame is pinned. Caller holds bp.mu.
func (bp *Instance) victim() (FrameID, bool) {
	if n := len(bp.freeList); n > 0 {
		fid := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return fid, true
	}
	return bp.replacer.Victim()
}

// evict prepares frame fid for reuse: if it currently holds a resident,
// dirty page, flush it to disk first, then drop it from the page table.
// Caller holds bp.mu.
func (bp *Instance) evict(fid FrameID) error {
	fr := bp.frames[fid]
	if fr.ID == page.InvalidPageID {
		return nil
	}
	if fr.IsDirty {
		if err := bp.disk.WritePage(fr.ID, &fr.Data); err != nil {
			return err
		}
	}
	delete(bp.pageTable, fr.ID)
	return nil
}

// NewPage allocates a fresh page, pins it, and returns it. The zero-filled
// page is written through to disk immediately (spec.md §4.2 table).
func (bp *Instance) NewPage() (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.victim()
	if !ok {
		return nil, ErrAllPinned
	}
	if err := bp.evict(fid); err != nil {
		return nil, err
	}

	id := bp.allocatePageID()
	fr := bp.frames[fid]
	fr.Reset(id)
	fr.PinCount = 1

	if err := bp.disk.WritePage(id, &fr.Data); err != nil {
		return nil, err
	}

	bp.pageTable[id] = fid
	bp.replacer.Pin(fid)
	bp.log.WithField("page_id", id).Debug("new page")
	return fr, nil
}

// FetchPage pins the page identified by id, loading it from disk if it
// isn't already resident.
func (bp *Instance) FetchPage(id int64) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if fid, ok := bp.pageTable[id]; ok {
		fr := bp.frames[fid]
		fr.PinCount++
		bp.replacer.Pin(fid)
		return fr, nil
	}

	fid, ok := bp.victim()
	if !ok {
		return nil, ErrPageNotResident
	}
	if err := bp.evict(fid); err != nil {
		return nil, err
	}

	fr := bp.frames[fid]
	fr.Reset(id)
	if err := bp.disk.ReadPage(id, &fr.Data); err != nil {
		return nil, err
	}
	fr.IsDirty = false
	fr.PinCount = 1

	bp.pageTable[id] = fid
	bp.replacer.Pin(fid)
	return fr, nil
}

// UnpinPage decrements id's pin count and ORs in dirty (dirtiness is
// sticky — see spec.md §8 property 2). When the pin count reaches zero the
// frame becomes an eviction candidate.
func (bp *Instance) UnpinPage(id int64, dirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable[id]
	if !ok {
		return ErrInvalidUnpin
	}
	fr := bp.frames[fid]
	if fr.PinCount <= 0 {
		return ErrInvalidUnpin
	}

	fr.PinCount--
	if dirty {
		fr.IsDirty = true
	}
	if fr.PinCount == 0 {
		bp.replacer.Unpin(fid)
	}
	return nil
}

// FlushPage writes id's frame to disk unconditionally and clears dirty.
// Returns false if id isn't resident.
func (bp *Instance) FlushPage(id int64) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable[id]
	if !ok {
		return false, nil
	}
	fr := bp.frames[fid]
	if err := bp.disk.WritePage(id, &fr.Data); err != nil {
		return false, err
	}
	fr.IsDirty = false
	return true, nil
}

// FlushAllPages flushes every resident page.
func (bp *Instance) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for id, fid := range bp.pageTable {
		fr := bp.frames[fid]
		if err := bp.disk.WritePage(id, &fr.Data); err != nil {
			return err
		}
		fr.IsDirty = false
	}
	return nil
}

// DeletePage removes id from the pool, returning it to the free list. It
// refuses (returns false) while the page is pinned. A page that was never
// resident deletes vacuously (true).
func (bp *Instance) DeletePage(id int64) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable[id]
	if !ok {
		return true, nil
	}
	fr := bp.frames[fid]
	if fr.PinCount > 0 {
		return false, nil
	}

	delete(bp.pageTable, id)
	bp.replacer.Pin(fid)
	fr.Reset(page.InvalidPageID)
	fr.PinCount = 0
	bp.freeList = append(bp.freeList, fid)
	bp.disk.DeallocatePage(id)
	return true, nil
}

// Stats snapshots pool occupancy. Supplemented diagnostic, read-only.
func (bp *Instance) Stats() Stats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	s := Stats{Capacity: bp.poolSize, Resident: len(bp.pageTable)}
	for _, fid := range bp.pageTable {
		fr := bp.frames[fid]
		if fr.PinCount > 0 {
			s.Pinned++
		}
		if fr.IsDirty {
			s.Dirty++
		}
	}
	return s
}
