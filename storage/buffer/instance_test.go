package buffer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/disk"
)

func newTestInstance(t *testing.T, poolSize int) *Instance {
	t.Helper()
	dm, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	return NewInstance(poolSize, 1, 0, dm)
}

func TestNewPageExhaustion(t *testing.T) {
	bp := newTestInstance(t, 2)

	p1, err := bp.NewPage()
	require.NoError(t, err)
	_, err = bp.NewPage()
	require.NoError(t, err)

	_, err = bp.NewPage()
	require.ErrorIs(t, err, ErrAllPinned)

	require.NoError(t, bp.UnpinPage(p1.ID, false))
	p3, err := bp.NewPage()
	require.NoError(t, err)
	require.NotNil(t, p3)
}

func TestEvictionFlushesDirtyPage(t *testing.T) {
	bp := newTestInstance(t, 1)

	p, err := bp.NewPage()
	require.NoError(t, err)
	pID := p.ID // p's frame is reused below, so its ID field will change
	p.Data[0] = 'a'
	require.NoError(t, bp.UnpinPage(pID, true))

	// Forces eviction of p's sole frame.
	q, err := bp.NewPage()
	require.NoError(t, err)
	require.NoError(t, bp.UnpinPage(q.ID, false))

	got, err := bp.FetchPage(pID)
	require.NoError(t, err)
	require.Equal(t, byte('a'), got.Data[0])
}

func TestFetchAfterEvictionFailsWhenAllPinned(t *testing.T) {
	bp := newTestInstance(t, 2)

	p1, err := bp.NewPage()
	require.NoError(t, err)
	p2, err := bp.NewPage()
	require.NoError(t, err)

	p1ID := p1.ID // p1's frame is reused below, so its ID field will change
	require.NoError(t, bp.UnpinPage(p1ID, false))
	p3, err := bp.NewPage() // evicts p1's frame
	require.NoError(t, err)
	require.NotNil(t, p3)

	// p1 no longer resident; p2 and p3 both pinned so no frame available.
	_, err = bp.FetchPage(p1ID)
	require.ErrorIs(t, err, ErrPageNotResident)
	_ = p2
}

func TestUnpinStickyDirty(t *testing.T) {
	bp := newTestInstance(t, 1)

	p, err := bp.NewPage()
	require.NoError(t, err)
	require.NoError(t, bp.UnpinPage(p.ID, true))

	got, err := bp.FetchPage(p.ID)
	require.NoError(t, err)
	require.True(t, got.IsDirty)

	require.NoError(t, bp.UnpinPage(p.ID, false))
	require.True(t, got.IsDirty, "dirty must stay sticky across a non-dirty unpin")
}

func TestDeletePageRefusesWhilePinned(t *testing.T) {
	bp := newTestInstance(t, 1)

	p, err := bp.NewPage()
	require.NoError(t, err)

	ok, err := bp.DeletePage(p.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, bp.UnpinPage(p.ID, false))
	ok, err = bp.DeletePage(p.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeletePageVacuousWhenAbsent(t *testing.T) {
	bp := newTestInstance(t, 1)
	ok, err := bp.DeletePage(999)
	require.NoError(t, err)
	require.True(t, ok)
}
