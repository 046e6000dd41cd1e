// Package hash implements the extendible hash index: a directory page
// fanning out to fixed-size bucket pages, split on overflow and merged on
// underflow. Keys are int64 (the common case a SQL index key reduces to —
// see DESIGN.md for why this core doesn't generalize over arbitrary
// Value-typed keys) and values are tuple.RID, so the table doubles as the
// index type every executor that touches an index actually uses.
package hash

import (
	"encoding/binary"

	"corebase/storage/page"
	"corebase/storage/tuple"
)

// BucketArraySize is a slot count whose bitmaps-plus-pairs fit in one
// page.PageSize page (spec.md §4.4): two ceil(N/8)-byte bitmaps plus N
// (int64 key, RID value) pairs of 20 bytes each, 4050 bytes in all.
const BucketArraySize = 200

const pairSize = 8 + 8 + 4 // key int64, RID.PageID int64, RID.Slot uint32

const bitmapSize = (BucketArraySize-1)/8 + 1

// bucketPageBytes is the serialized width of a BucketPage; callers that
// build their own directory/bucket layout on a shared page size should
// keep this under page.PageSize.
const bucketPageBytes = 2*bitmapSize + BucketArraySize*pairSize

type bucketPair struct {
	Key   int64
	Value tuple.RID
}

// BucketPage is the typed, in-memory view of one hash bucket: occupancy and
// readability bitmaps plus an open-addressed array of pairs. occupied=1,
// readable=0 is a tombstone; occupied=0 is never-used and terminates a
// probe (spec.md §4.4's option (a): occupied is set only on the slot that
// actually receives a pair, never scanned ahead of it, so tombstones never
// leave a gap a probe could wrongly stop short of).
type BucketPage struct {
	occupied [bitmapSize]byte
	readable [bitmapSize]byte
	array    [BucketArraySize]bucketPair
}

func bitSet(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(uint(i)%8)) != 0
}

func bitOn(bitmap []byte, i int) {
	bitmap[i/8] |= 1 << (uint(i) % 8)
}

func bitOff(bitmap []byte, i int) {
	bitmap[i/8] &^= 1 << (uint(i) % 8)
}

func (b *BucketPage) IsOccupied(i int) bool { return bitSet(b.occupied[:], i) }
func (b *BucketPage) IsReadable(i int) bool { return bitSet(b.readable[:], i) }
func (b *BucketPage) KeyAt(i int) int64     { return b.array[i].Key }
func (b *BucketPage) ValueAt(i int) tuple.RID { return b.array[i].Value }

// GetValue returns every readable value whose key matches, probing from
// slot 0 and stopping at the first never-used slot.
func (b *BucketPage) GetValue(key int64) []tuple.RID {
	var out []tuple.RID
	for i := 0; i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			break
		}
		if b.IsReadable(i) && b.array[i].Key == key {
			out = append(out, b.array[i].Value)
		}
	}
	return out
}

// Insert places (key, value) at the first non-readable slot. Returns false
// if the exact pair is already present (no duplicate pairs) or if the
// bucket has no non-readable slot left (caller must split).
func (b *BucketPage) Insert(key int64, value tuple.RID) bool {
	for i := 0; i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			break
		}
		if b.IsReadable(i) && b.array[i].Key == key && b.array[i].Value == value {
			return false
		}
	}
	for i := 0; i < BucketArraySize; i++ {
		if !b.IsReadable(i) {
			b.array[i] = bucketPair{Key: key, Value: value}
			bitOn(b.occupied[:], i)
			bitOn(b.readable[:], i)
			return true
		}
	}
	return false
}

// Remove clears the readable bit of the first occupied slot matching
// (key, value), leaving a tombstone. Reports whether anything was removed.
func (b *BucketPage) Remove(key int64, value tuple.RID) bool {
	for i := 0; i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			break
		}
		if b.IsReadable(i) && b.array[i].Key == key && b.array[i].Value == value {
			bitOff(b.readable[:], i)
			return true
		}
	}
	return false
}

// NumReadable counts present pairs.
func (b *BucketPage) NumReadable() int {
	n := 0
	for i := 0; i < BucketArraySize; i++ {
		if b.IsReadable(i) {
			n++
		}
	}
	return n
}

func (b *BucketPage) IsFull() bool  { return b.NumReadable() == BucketArraySize }
func (b *BucketPage) IsEmpty() bool { return b.NumReadable() == 0 }

// Clear zeros both bitmaps and the payload array.
func (b *BucketPage) Clear() {
	*b = BucketPage{}
}

// Entries returns every readable (key, value) pair, in slot order — used by
// split's redistribution and by Iterator.
func (b *BucketPage) Entries() []struct {
	Key   int64
	Value tuple.RID
} {
	var out []struct {
		Key   int64
		Value tuple.RID
	}
	for i := 0; i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			break
		}
		if b.IsReadable(i) {
			out = append(out, struct {
				Key   int64
				Value tuple.RID
			}{b.array[i].Key, b.array[i].Value})
		}
	}
	return out
}

// loadBucket decodes a BucketPage out of a page's raw payload.
func loadBucket(pg *page.Page) *BucketPage {
	b := &BucketPage{}
	buf := pg.Data[:]
	copy(b.occupied[:], buf[:bitmapSize])
	copy(b.readable[:], buf[bitmapSize:2*bitmapSize])
	pos := 2 * bitmapSize
	for i := 0; i < BucketArraySize; i++ {
		b.array[i].Key = int64(binary.LittleEndian.Uint64(buf[pos:]))
		b.array[i].Value.PageID = int64(binary.LittleEndian.Uint64(buf[pos+8:]))
		b.array[i].Value.Slot = binary.LittleEndian.Uint32(buf[pos+16:])
		pos += pairSize
	}
	return b
}

// storeBucket encodes b into a page's raw payload.
func storeBucket(pg *page.Page, b *BucketPage) {
	buf := pg.Data[:]
	for i := range buf {
		buf[i] = 0
	}
	copy(buf[:bitmapSize], b.occupied[:])
	copy(buf[bitmapSize:2*bitmapSize], b.readable[:])
	pos := 2 * bitmapSize
	for i := 0; i < BucketArraySize; i++ {
		binary.LittleEndian.PutUint64(buf[pos:], uint64(b.array[i].Key))
		binary.LittleEndian.PutUint64(buf[pos+8:], uint64(b.array[i].Value.PageID))
		binary.LittleEndian.PutUint32(buf[pos+16:], b.array[i].Value.Slot)
		pos += pairSize
	}
}
