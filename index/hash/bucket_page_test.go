package hash

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/page"
	"corebase/storage/tuple"
)

func rid(page int64, slot uint32) tuple.RID { return tuple.RID{PageID: page, Slot: slot} }

func TestBucketInsertAndGetValue(t *testing.T) {
	b := &BucketPage{}
	require.True(t, b.Insert(1, rid(1, 0)))
	require.True(t, b.Insert(1, rid(2, 0)))
	require.True(t, b.Insert(2, rid(3, 0)))

	require.ElementsMatch(t, []tuple.RID{rid(1, 0), rid(2, 0)}, b.GetValue(1))
	require.Equal(t, []tuple.RID{rid(3, 0)}, b.GetValue(2))
}

func TestBucketInsertDuplicateRejected(t *testing.T) {
	b := &BucketPage{}
	require.True(t, b.Insert(5, rid(1, 0)))
	require.False(t, b.Insert(5, rid(1, 0)))
	require.Equal(t, []tuple.RID{rid(1, 0)}, b.GetValue(5))
}

func TestBucketRemoveLeavesTombstone(t *testing.T) {
	b := &BucketPage{}
	b.Insert(5, rid(1, 0))
	require.True(t, b.Remove(5, rid(1, 0)))
	require.Empty(t, b.GetValue(5))
	require.False(t, b.Remove(5, rid(1, 0)))

	// the freed slot is reusable.
	require.True(t, b.Insert(6, rid(2, 0)))
	require.Equal(t, []tuple.RID{rid(2, 0)}, b.GetValue(6))
}

func TestBucketFullRefusesInsert(t *testing.T) {
	b := &BucketPage{}
	for i := 0; i < BucketArraySize; i++ {
		require.True(t, b.Insert(int64(i), rid(int64(i), 0)))
	}
	require.True(t, b.IsFull())
	require.False(t, b.Insert(int64(BucketArraySize), rid(0, 0)))
}

func TestBucketSerializeRoundTrip(t *testing.T) {
	b := &BucketPage{}
	b.Insert(1, rid(10, 1))
	b.Insert(2, rid(20, 2))
	b.Remove(1, rid(10, 1))

	pg := page.New(7)
	storeBucket(pg, b)
	got := loadBucket(pg)

	require.Empty(t, got.GetValue(1))
	require.Equal(t, []tuple.RID{rid(20, 2)}, got.GetValue(2))
}
