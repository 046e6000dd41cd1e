package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

func TestExclusiveLockExcludesOthers(t *testing.T) {
	lm := NewLockManager()
	mgr := NewManager(lm)
	a := mgr.Begin(RepeatableRead)
	b := mgr.Begin(RepeatableRead)
	rid := tuple.RID{PageID: 1, Slot: 0}

	require.True(t, lm.LockExclusive(a, rid))
	require.False(t, lm.LockExclusive(b, rid))
	require.False(t, lm.LockShared(b, rid))
}

func TestUpgradeFailsWithOtherSharedHolder(t *testing.T) {
	lm := NewLockManager()
	mgr := NewManager(lm)
	a := mgr.Begin(RepeatableRead)
	b := mgr.Begin(RepeatableRead)
	rid := tuple.RID{PageID: 1, Slot: 0}

	require.True(t, lm.LockShared(a, rid))
	require.True(t, lm.LockShared(b, rid))
	require.False(t, lm.LockUpgrade(a, rid))
}

func TestUpgradeSucceedsWhenSoleHolder(t *testing.T) {
	lm := NewLockManager()
	mgr := NewManager(lm)
	a := mgr.Begin(RepeatableRead)
	rid := tuple.RID{PageID: 1, Slot: 0}

	require.True(t, lm.LockShared(a, rid))
	require.True(t, lm.LockUpgrade(a, rid))
	require.False(t, a.IsSharedLocked(rid))
}

func TestCommitReleasesHeldLocks(t *testing.T) {
	lm := NewLockManager()
	mgr := NewManager(lm)
	a := mgr.Begin(RepeatableRead)
	b := mgr.Begin(RepeatableRead)
	rid := tuple.RID{PageID: 1, Slot: 0}

	require.True(t, lm.LockExclusive(a, rid))
	mgr.Commit(a)
	require.Equal(t, Committed, a.State)
	require.True(t, lm.LockExclusive(b, rid))
}
