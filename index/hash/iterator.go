package hash

import "corebase/storage/tuple"

// Iterator drains every (key, value) pair resident in a table, bucket by
// bucket, in no particular order. original_source's table/index iterators
// always expose a HasNext/Next cursor rather than only point lookups; this
// fills the same role for the hash table so EXPLAIN-style tooling and full-
// enumeration tests (spec.md §8's HT scenarios) don't need direct bucket
// access. It does not change Search/Insert/Remove semantics.
type Iterator struct {
	table      *ExtendibleHashTable
	bucketIDs  []int64
	bucketIdx  int
	entries    []struct {
		Key   int64
		Value tuple.RID
	}
	entryIdx int
}

// NewIterator snapshots the current set of distinct bucket page ids under
// a read lock, then releases it — the iteration that follows reflects that
// snapshot, not any splits/merges that happen mid-iteration.
func NewIterator(t *ExtendibleHashTable) (*Iterator, error) {
	t.tableLatch.RLock()
	dirPg, dir, err := t.fetchDirectory()
	if err != nil {
		t.tableLatch.RUnlock()
		return nil, err
	}
	seen := make(map[int64]bool)
	var ids []int64
	for i := 0; i < dir.Size(); i++ {
		id := dir.BucketPageID(i)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	t.pool.UnpinPage(dirPg.ID, false)
	t.tableLatch.RUnlock()

	return &Iterator{table: t, bucketIDs: ids}, nil
}

// HasNext reports whether Next would return another pair, loading the next
// non-empty bucket if the current one is exhausted.
func (it *Iterator) HasNext() (bool, error) {
	for it.entryIdx >= len(it.entries) {
		if it.bucketIdx >= len(it.bucketIDs) {
			return false, nil
		}
		id := it.bucketIDs[it.bucketIdx]
		it.bucketIdx++

		pg, err := it.table.pool.FetchPage(id)
		if err != nil {
			return false, err
		}
		pg.RLock()
		it.entries = loadBucket(pg).Entries()
		pg.RUnlock()
		it.table.pool.UnpinPage(id, false)
		it.entryIdx = 0
	}
	return true, nil
}

// Next returns the next (key, value) pair. Callers must check HasNext
// first.
func (it *Iterator) Next() (int64, tuple.RID) {
	e := it.entries[it.entryIdx]
	it.entryIdx++
	return e.Key, e.Value
}
