package heap

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"corebase/logging"
	"corebase/logmgr"
	"corebase/storage/page"
	"corebase/storage/tuple"
)

// ErrRecordNotFound is returned by GetTuple for a RID with no live record
// (never written, or tombstoned).
var ErrRecordNotFound = errors.New("heap: record not found")

// Log record op codes, mirroring txn.WriteKind's Insert/Update/Delete
// split. The WAL itself imposes no schema on a record (same as the
// teacher's WALSegment.Append, which just writes raw bytes) — these are
// this package's own convention for what it appends.
const (
	walInsert byte = 1
	walDelete byte = 2
	walUpdate byte = 3
)

// Pool is the subset of a buffer pool a TableHeap pins pages through.
type Pool interface {
	NewPage() (*page.Page, error)
	FetchPage(id int64) (*page.Page, error)
	UnpinPage(id int64, dirty bool) error
}

// TableHeap is an unordered, singly-linked chain of heap pages holding one
// table's rows as opaque byte records, addressed by RID. Grounded on the
// teacher's HeapFile (storage_engine/access/heapfile_manager/struct.go):
// same four operations (insert/get/update/delete by row pointer), same
// "new page when the last one is full" growth policy, collapsed from the
// teacher's own file-and-catalog bookkeeping since this core has one global
// page-id space instead of per-table files.
type TableHeap struct {
	mu sync.Mutex

	pool         Pool
	firstPageID  int64
	lastPageID   int64
	wal          *logmgr.Manager

	log *logrus.Entry
}

// NewTableHeap allocates a table heap's first (and initially only) page.
// wal may be nil, in which case the heap never emits log records — a
// heap built purely for test scaffolding that never needs WAL hooks.
func NewTableHeap(pool Pool, wal *logmgr.Manager) (*TableHeap, error) {
	pg, err := pool.NewPage()
	if err != nil {
		return nil, errors.Wrap(err, "heap: allocate first page")
	}
	InitHeapPage(pg, page.InvalidPageID)
	if err := pool.UnpinPage(pg.ID, true); err != nil {
		return nil, err
	}
	return &TableHeap{
		pool:        pool,
		firstPageID: pg.ID,
		lastPageID:  pg.ID,
		wal:         wal,
		log:         logging.For("heap"),
	}, nil
}

// logWrite appends an op-code-tagged record of rid's mutation to the WAL,
// at the same points BusTub's InsertTuple/MarkDelete/UpdateTuple do. A nil
// wal is a no-op.
func (h *TableHeap) logWrite(op byte, rid tuple.RID, data []byte) {
	if h.wal == nil {
		return
	}
	record := make([]byte, 13+len(data))
	record[0] = op
	binary.LittleEndian.PutUint64(record[1:], uint64(rid.PageID))
	binary.LittleEndian.PutUint32(record[9:], rid.Slot)
	copy(record[13:], data)
	if _, err := h.wal.AppendRecord(record); err != nil {
		h.log.WithError(err).Warn("wal append failed")
	}
}

// InsertTuple appends data to the heap's last page, allocating a new page
// and linking it in if the last page has no room. Returns the new RID.
func (h *TableHeap) InsertTuple(data []byte) (tuple.RID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pg, err := h.pool.FetchPage(h.lastPageID)
	if err != nil {
		return tuple.InvalidRID, err
	}
	pg.Lock()
	slot, ok := InsertRecord(pg, data)
	pg.Unlock()
	if ok {
		h.pool.UnpinPage(pg.ID, true)
		rid := tuple.RID{PageID: pg.ID, Slot: uint32(slot)}
		h.logWrite(walInsert, rid, data)
		return rid, nil
	}
	h.pool.UnpinPage(pg.ID, false)

	newPg, err := h.pool.NewPage()
	if err != nil {
		return tuple.InvalidRID, errors.Wrap(err, "heap: grow table")
	}
	InitHeapPage(newPg, page.InvalidPageID)

	oldLastID := h.lastPageID
	h.lastPageID = newPg.ID

	oldLast, err := h.pool.FetchPage(oldLastID)
	if err != nil {
		return tuple.InvalidRID, err
	}
	oldLast.Lock()
	setNextPageID(oldLast, newPg.ID)
	oldLast.IsDirty = true
	oldLast.Unlock()
	h.pool.UnpinPage(oldLastID, true)

	newPg.Lock()
	slot, ok = InsertRecord(newPg, data)
	newPg.Unlock()
	if !ok {
		h.pool.UnpinPage(newPg.ID, true)
		return tuple.InvalidRID, errors.New("heap: record too large for an empty page")
	}
	h.pool.UnpinPage(newPg.ID, true)
	rid := tuple.RID{PageID: newPg.ID, Slot: uint32(slot)}
	h.logWrite(walInsert, rid, data)
	return rid, nil
}

// GetTuple returns the live record at rid.
func (h *TableHeap) GetTuple(rid tuple.RID) ([]byte, error) {
	pg, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return nil, err
	}
	pg.RLock()
	data, ok := GetRecord(pg, uint16(rid.Slot))
	pg.RUnlock()
	h.pool.UnpinPage(rid.PageID, false)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return data, nil
}

// MarkDelete tombstones rid's record.
func (h *TableHeap) MarkDelete(rid tuple.RID) error {
	pg, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return err
	}
	pg.Lock()
	ok := MarkDeleted(pg, uint16(rid.Slot))
	pg.Unlock()
	h.pool.UnpinPage(rid.PageID, ok)
	if !ok {
		return ErrRecordNotFound
	}
	h.logWrite(walDelete, rid, nil)
	return nil
}

// UpdateTuple overwrites rid's record in place. data must be the same
// length as the existing record — every tuple of a given schema serializes
// to the same fixed width, so this never needs to relocate a row.
func (h *TableHeap) UpdateTuple(rid tuple.RID, data []byte) error {
	pg, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return err
	}
	pg.Lock()
	ok := UpdateInPlace(pg, uint16(rid.Slot), data)
	pg.Unlock()
	h.pool.UnpinPage(rid.PageID, ok)
	if !ok {
		return ErrRecordNotFound
	}
	h.logWrite(walUpdate, rid, data)
	return nil
}

// Iterator walks every live record in page/slot order.
func (h *TableHeap) Iterator() *Iterator {
	return &Iterator{heap: h, pageID: h.firstPageID}
}

// Iterator is a pull-based cursor over one TableHeap's live records,
// backing SeqScan's table iteration (spec.md §4.6.1).
type Iterator struct {
	heap   *TableHeap
	pageID int64
	slot   uint16

	pg       *page.Page
	numSlots uint16
	loaded   bool
}

func (it *Iterator) ensureLoaded() error {
	if it.loaded {
		return nil
	}
	pg, err := it.heap.pool.FetchPage(it.pageID)
	if err != nil {
		return err
	}
	it.pg = pg
	it.numSlots = getNumSlots(pg)
	it.loaded = true
	return nil
}

// HasNext advances past tombstones and exhausted pages, reporting whether
// Next would return a record.
func (it *Iterator) HasNext() (bool, error) {
	for {
		if it.pageID == page.InvalidPageID {
			return false, nil
		}
		if err := it.ensureLoaded(); err != nil {
			return false, err
		}
		for it.slot < it.numSlots {
			if _, ok := GetRecord(it.pg, it.slot); ok {
				return true, nil
			}
			it.slot++
		}
		next := getNextPageID(it.pg)
		it.heap.pool.UnpinPage(it.pg.ID, false)
		it.pg = nil
		it.loaded = false
		it.pageID = next
		it.slot = 0
	}
}

// Next returns the current live record and its RID, then advances.
func (it *Iterator) Next() (tuple.RID, []byte) {
	data, _ := GetRecord(it.pg, it.slot)
	rid := tuple.RID{PageID: it.pg.ID, Slot: uint32(it.slot)}
	it.slot++
	return rid, data
}

// Close releases the page pin the iterator may still be holding. Callers
// that drain HasNext to false don't need to call this — the last page is
// unpinned internally — but an early-abandoned scan must.
func (it *Iterator) Close() {
	if it.loaded && it.pg != nil {
		it.heap.pool.UnpinPage(it.pg.ID, false)
		it.loaded = false
		it.pg = nil
	}
}
