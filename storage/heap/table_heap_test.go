package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/buffer"
	"corebase/storage/disk"
)

func newTestHeap(t *testing.T) *TableHeap {
	t.Helper()
	dm, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	pool := buffer.NewInstance(16, 1, 0, dm)
	h, err := NewTableHeap(pool, nil)
	require.NoError(t, err)
	return h
}

func TestInsertAndGetTuple(t *testing.T) {
	h := newTestHeap(t)

	rid, err := h.InsertTuple([]byte("hello world"))
	require.NoError(t, err)

	got, err := h.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestMarkDeleteThenGetFails(t *testing.T) {
	h := newTestHeap(t)
	rid, err := h.InsertTuple([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, h.MarkDelete(rid))
	_, err = h.GetTuple(rid)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateInPlace(t *testing.T) {
	h := newTestHeap(t)
	rid, err := h.InsertTuple([]byte("aaaa"))
	require.NoError(t, err)

	require.NoError(t, h.UpdateTuple(rid, []byte("bbbb")))
	got, err := h.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, "bbbb", string(got))
}

func TestIteratorSkipsTombstonesAcrossPages(t *testing.T) {
	h := newTestHeap(t)

	record := make([]byte, 500)
	inserted := 0
	for i := 0; i < 40; i++ {
		r, err := h.InsertTuple(record)
		require.NoError(t, err)
		inserted++
		if i%3 == 0 {
			require.NoError(t, h.MarkDelete(r))
			inserted--
		}
	}

	it := h.Iterator()
	count := 0
	for {
		has, err := it.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		_, data := it.Next()
		require.Len(t, data, 500)
		count++
	}
	require.Equal(t, inserted, count)
}
