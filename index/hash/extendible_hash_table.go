package hash

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"corebase/logging"
	"corebase/logmgr"
	"corebase/storage/page"
	"corebase/storage/tuple"
)

// ErrDirectoryOverflow is returned when a split would need global_depth to
// exceed the table's configured ceiling (spec.md §4.5: "directory overflow
// is a fatal error").
var ErrDirectoryOverflow = errors.New("hash: directory would exceed max global depth")

// Log record op codes for this index's mutators, mirroring storage/heap's
// walInsert/walDelete convention.
const (
	walHashInsert byte = 1
	walHashRemove byte = 2
)

// Pool is the subset of a buffer pool an ExtendibleHashTable pins pages
// through. Both buffer.Instance and buffer.ParallelPool satisfy it.
type Pool interface {
	NewPage() (*page.Page, error)
	FetchPage(id int64) (*page.Page, error)
	UnpinPage(id int64, dirty bool) error
	DeletePage(id int64) (bool, error)
}

// ExtendibleHashTable is a dynamically-growable hash index over int64 keys
// and tuple.RID values, backed by one directory page and many bucket
// pages, all pinned through pool. A single table latch serializes
// structural changes (directory growth, split, merge); search and
// non-splitting insert only need a read lock on it, plus the target
// bucket's own per-page latch (spec.md §4.5).
type ExtendibleHashTable struct {
	pool Pool

	tableLatch sync.RWMutex

	directoryPageID int64
	maxGlobalDepth  uint32
	wal             *logmgr.Manager

	log *logrus.Entry
}

// NewExtendibleHashTable allocates a fresh, empty table: one directory page
// at global depth 0, pointing at one empty bucket page. maxGlobalDepth must
// be <= MaxGlobalDepth. wal may be nil, in which case the table never emits
// log records.
func NewExtendibleHashTable(pool Pool, maxGlobalDepth uint32, wal *logmgr.Manager) (*ExtendibleHashTable, error) {
	if maxGlobalDepth > MaxGlobalDepth {
		maxGlobalDepth = MaxGlobalDepth
	}

	bucketPg, err := pool.NewPage()
	if err != nil {
		return nil, errors.Wrap(err, "hash: allocate initial bucket")
	}
	storeBucket(bucketPg, &BucketPage{})
	if err := pool.UnpinPage(bucketPg.ID, true); err != nil {
		return nil, err
	}

	dirPg, err := pool.NewPage()
	if err != nil {
		return nil, errors.Wrap(err, "hash: allocate directory")
	}
	dir := &DirectoryPage{pageID: dirPg.ID}
	dir.SetBucketPageID(0, bucketPg.ID)
	storeDirectory(dirPg.Data[:], dir)
	if err := pool.UnpinPage(dirPg.ID, true); err != nil {
		return nil, err
	}

	return &ExtendibleHashTable{
		pool:            pool,
		directoryPageID: dirPg.ID,
		maxGlobalDepth:  maxGlobalDepth,
		wal:             wal,
		log:             logging.For("hash"),
	}, nil
}

func hashKey(key int64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return xxhash.Sum64(b[:])
}

// logWrite appends an op-code-tagged (key, value) record to the WAL. A nil
// wal is a no-op.
func (t *ExtendibleHashTable) logWrite(op byte, key int64, value tuple.RID) {
	if t.wal == nil {
		return
	}
	record := make([]byte, 21)
	record[0] = op
	binary.LittleEndian.PutUint64(record[1:], uint64(key))
	binary.LittleEndian.PutUint64(record[9:], uint64(value.PageID))
	binary.LittleEndian.PutUint32(record[17:], value.Slot)
	if _, err := t.wal.AppendRecord(record); err != nil {
		t.log.WithError(err).Warn("wal append failed")
	}
}

func (t *ExtendibleHashTable) fetchDirectory() (*page.Page, *DirectoryPage, error) {
	pg, err := t.pool.FetchPage(t.directoryPageID)
	if err != nil {
		return nil, nil, err
	}
	return pg, loadDirectory(pg.Data[:]), nil
}

func (t *ExtendibleHashTable) locate(dir *DirectoryPage, key int64) (slot int, bucketID int64) {
	slot = int(hashKey(key) & dir.GlobalDepthMask())
	return slot, dir.BucketPageID(slot)
}

// GetValue returns every value stored under key.
func (t *ExtendibleHashTable) GetValue(key int64) ([]tuple.RID, error) {
	t.tableLatch.RLock()
	defer t.tableLatch.RUnlock()

	dirPg, dir, err := t.fetchDirectory()
	if err != nil {
		return nil, err
	}
	defer t.pool.UnpinPage(dirPg.ID, false)

	_, bucketID := t.locate(dir, key)
	bucketPg, err := t.pool.FetchPage(bucketID)
	if err != nil {
		return nil, err
	}
	bucketPg.RLock()
	values := loadBucket(bucketPg).GetValue(key)
	bucketPg.RUnlock()
	t.pool.UnpinPage(bucketID, false)
	return values, nil
}

// Insert places (key, value). Returns false if the exact pair already
// exists. A full target bucket triggers SplitInsert.
func (t *ExtendibleHashTable) Insert(key int64, value tuple.RID) (bool, error) {
	t.tableLatch.RLock()

	dirPg, dir, err := t.fetchDirectory()
	if err != nil {
		t.tableLatch.RUnlock()
		return false, err
	}
	_, bucketID := t.locate(dir, key)
	bucketPg, err := t.pool.FetchPage(bucketID)
	if err != nil {
		t.pool.UnpinPage(dirPg.ID, false)
		t.tableLatch.RUnlock()
		return false, err
	}

	bucketPg.Lock()
	bucket := loadBucket(bucketPg)
	if !bucket.IsFull() {
		ok := bucket.Insert(key, value)
		if ok {
			storeBucket(bucketPg, bucket)
		}
		bucketPg.Unlock()
		t.pool.UnpinPage(bucketID, ok)
		t.pool.UnpinPage(dirPg.ID, false)
		t.tableLatch.RUnlock()
		if ok {
			t.logWrite(walHashInsert, key, value)
		}
		return ok, nil
	}
	bucketPg.Unlock()
	t.pool.UnpinPage(bucketID, false)
	t.pool.UnpinPage(dirPg.ID, false)
	t.tableLatch.RUnlock()

	return t.splitInsert(key, value)
}

// splitInsert holds the table write latch and repeatedly splits the target
// bucket until key's insert succeeds (spec.md §4.5's SplitInsert loop).
func (t *ExtendibleHashTable) splitInsert(key int64, value tuple.RID) (bool, error) {
	t.tableLatch.Lock()
	defer t.tableLatch.Unlock()

	for {
		dirPg, dir, err := t.fetchDirectory()
		if err != nil {
			return false, err
		}

		slot, bucketID := t.locate(dir, key)
		bucketPg, err := t.pool.FetchPage(bucketID)
		if err != nil {
			t.pool.UnpinPage(dirPg.ID, false)
			return false, err
		}
		bucketPg.Lock()
		bucket := loadBucket(bucketPg)

		if !bucket.IsFull() {
			ok := bucket.Insert(key, value)
			if ok {
				storeBucket(bucketPg, bucket)
			}
			bucketPg.Unlock()
			t.pool.UnpinPage(bucketID, ok)
			t.pool.UnpinPage(dirPg.ID, false)
			if ok {
				t.logWrite(walHashInsert, key, value)
			}
			return ok, nil
		}

		if dir.LocalDepth(slot) == dir.GlobalDepth() {
			if dir.GlobalDepth()+1 > t.maxGlobalDepth {
				bucketPg.Unlock()
				t.pool.UnpinPage(bucketID, false)
				t.pool.UnpinPage(dirPg.ID, false)
				return false, ErrDirectoryOverflow
			}
			dir.IncrGlobalDepth()
		}

		d := dir.LocalDepth(slot) + 1

		splitPg, err := t.pool.NewPage()
		if err != nil {
			bucketPg.Unlock()
			t.pool.UnpinPage(bucketID, false)
			t.pool.UnpinPage(dirPg.ID, false)
			return false, err
		}

		lowMask := (1 << (d - 1)) - 1
		highBit := 1 << (d - 1)
		for i := 0; i < dir.Size(); i++ {
			if (i & lowMask) != (slot & lowMask) {
				continue
			}
			dir.SetLocalDepth(i, d)
			if (i & highBit) == (slot & highBit) {
				dir.SetBucketPageID(i, bucketID)
			} else {
				dir.SetBucketPageID(i, splitPg.ID)
			}
		}

		splitBucket := &BucketPage{}
		newBucket := &BucketPage{}
		mask := uint64(1<<d) - 1
		for _, e := range bucket.Entries() {
			if hashKey(e.Key)&mask == uint64(slot)&mask {
				newBucket.Insert(e.Key, e.Value)
			} else {
				splitBucket.Insert(e.Key, e.Value)
			}
		}
		storeBucket(bucketPg, newBucket)
		storeBucket(splitPg, splitBucket)

		storeDirectory(dirPg.Data[:], dir)

		bucketPg.Unlock()
		t.pool.UnpinPage(bucketID, true)
		t.pool.UnpinPage(splitPg.ID, true)
		t.pool.UnpinPage(dirPg.ID, true)
		// loop: re-locate and retry the insert, the bucket may still be full
	}
}

// Remove deletes (key, value) and attempts a best-effort merge afterward.
func (t *ExtendibleHashTable) Remove(key int64, value tuple.RID) (bool, error) {
	t.tableLatch.RLock()
	dirPg, dir, err := t.fetchDirectory()
	if err != nil {
		t.tableLatch.RUnlock()
		return false, err
	}
	_, bucketID := t.locate(dir, key)
	bucketPg, err := t.pool.FetchPage(bucketID)
	if err != nil {
		t.pool.UnpinPage(dirPg.ID, false)
		t.tableLatch.RUnlock()
		return false, err
	}

	bucketPg.Lock()
	bucket := loadBucket(bucketPg)
	ok := bucket.Remove(key, value)
	if ok {
		storeBucket(bucketPg, bucket)
	}
	bucketPg.Unlock()
	t.pool.UnpinPage(bucketID, ok)
	t.pool.UnpinPage(dirPg.ID, false)
	t.tableLatch.RUnlock()

	if ok {
		t.logWrite(walHashRemove, key, value)
		if err := t.merge(key); err != nil {
			return true, err
		}
	}
	return ok, nil
}

// merge re-locates key's bucket and, if it is now empty and its local
// depth matches its split image's, folds it into the split image and
// shrinks the directory while every slot's local depth allows it.
func (t *ExtendibleHashTable) merge(key int64) error {
	t.tableLatch.Lock()
	defer t.tableLatch.Unlock()

	dirPg, dir, err := t.fetchDirectory()
	if err != nil {
		return err
	}
	slot, bucketID := t.locate(dir, key)
	localDepth := dir.LocalDepth(slot)
	if localDepth == 0 {
		t.pool.UnpinPage(dirPg.ID, false)
		return nil
	}

	splitImageIdx := slot ^ (1 << (localDepth - 1))
	if dir.LocalDepth(splitImageIdx) != localDepth {
		t.pool.UnpinPage(dirPg.ID, false)
		return nil
	}

	bucketPg, err := t.pool.FetchPage(bucketID)
	if err != nil {
		t.pool.UnpinPage(dirPg.ID, false)
		return err
	}
	bucketPg.RLock()
	empty := loadBucket(bucketPg).IsEmpty()
	bucketPg.RUnlock()
	t.pool.UnpinPage(bucketID, false)
	if !empty {
		t.pool.UnpinPage(dirPg.ID, false)
		return nil
	}

	splitImageID := dir.BucketPageID(splitImageIdx)
	for i := 0; i < dir.Size(); i++ {
		if dir.BucketPageID(i) == bucketID || dir.BucketPageID(i) == splitImageID {
			dir.SetBucketPageID(i, splitImageID)
			dir.SetLocalDepth(i, localDepth-1)
		}
	}

	if _, err := t.pool.DeletePage(bucketID); err != nil {
		return err
	}

	for dir.CanShrink() {
		dir.DecrGlobalDepth()
	}

	storeDirectory(dirPg.Data[:], dir)
	t.pool.UnpinPage(dirPg.ID, true)
	return nil
}
