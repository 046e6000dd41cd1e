package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUReplacerOrder(t *testing.T) {
	r := NewLRUReplacer(4)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	v, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, FrameID(1), v)

	r.Pin(3)
	r.Unpin(4)

	v, ok = r.Victim()
	require.True(t, ok)
	require.Equal(t, FrameID(2), v)

	v, ok = r.Victim()
	require.True(t, ok)
	require.Equal(t, FrameID(4), v)

	// 3 was pinned (removed from the replacer) at line 20 and never
	// unpinned again, so it only becomes a victim candidate once more by
	// being unpinned a second time.
	r.Unpin(3)

	v, ok = r.Victim()
	require.True(t, ok)
	require.Equal(t, FrameID(3), v)

	_, ok = r.Victim()
	require.False(t, ok)
}

func TestLRUReplacerCapacity(t *testing.T) {
	r := NewLRUReplacer(2)
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3) // over capacity, dropped

	require.Equal(t, 2, r.Size())
}

func TestLRUReplacerPinAbsentIsNoop(t *testing.T) {
	r := NewLRUReplacer(2)
	r.Pin(99)
	require.Equal(t, 0, r.Size())
}
