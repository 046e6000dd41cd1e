package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/page"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	m, err := NewManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestAllocatePageMonotonic(t *testing.T) {
	m := newTestManager(t)

	ids := make([]int64, 5)
	for i := range ids {
		ids[i] = m.AllocatePage()
	}
	for i := 1; i < len(ids); i++ {
		require.Equal(t, ids[i-1]+1, ids[i])
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	id := m.AllocatePage()

	var buf [page.PageSize]byte
	copy(buf[:], "hello disk manager")
	require.NoError(t, m.WritePage(id, &buf))

	var got [page.PageSize]byte
	require.NoError(t, m.ReadPage(id, &got))
	require.Equal(t, buf, got)
}

func TestReadUnwrittenPageIsZero(t *testing.T) {
	m := newTestManager(t)
	id := m.AllocatePage()

	var got [page.PageSize]byte
	require.NoError(t, m.ReadPage(id, &got))
	for _, b := range got {
		require.Equal(t, byte(0), b)
	}
}

func TestDeallocatePageTracked(t *testing.T) {
	m := newTestManager(t)
	id := m.AllocatePage()

	require.False(t, m.IsDeallocated(id))
	m.DeallocatePage(id)
	require.True(t, m.IsDeallocated(id))
}
