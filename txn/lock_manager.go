package txn

import (
	"sync"

	"corebase/storage/tuple"
)

// LockManager implements the two-phase-locking contract spec.md §6 names:
// lock_shared/lock_exclusive/lock_upgrade/unlock/is_shared_locked, each
// returning false (interpreted as a deadlock abort by the caller) instead
// of blocking — a no-wait variant, grounded on
// original_source/src/execution/insert_executor.cpp and
// delete_executor.cpp's "abort with DEADLOCK on lock failure" calling
// convention, which never shows the executors waiting.
type LockManager struct {
	mu sync.Mutex

	shared    map[tuple.RID]map[uint64]bool
	exclusive map[tuple.RID]uint64 // 0 means unlocked
}

// NewLockManager builds an empty lock table.
func NewLockManager() *LockManager {
	return &LockManager{
		shared:    make(map[tuple.RID]map[uint64]bool),
		exclusive: make(map[tuple.RID]uint64),
	}
}

// LockShared grants t a shared lock on rid. Fails if another transaction
// holds the exclusive lock.
func (lm *LockManager) LockShared(t *Transaction, rid tuple.RID) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if holder, ok := lm.exclusive[rid]; ok && holder != 0 && holder != t.ID {
		return false
	}
	if lm.shared[rid] == nil {
		lm.shared[rid] = make(map[uint64]bool)
	}
	lm.shared[rid][t.ID] = true

	t.mu.Lock()
	t.sharedLocks[rid] = true
	t.mu.Unlock()
	return true
}

// LockExclusive grants t the exclusive lock on rid. Fails if any other
// transaction holds a shared or exclusive lock on it.
func (lm *LockManager) LockExclusive(t *Transaction, rid tuple.RID) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.lockExclusiveLocked(t, rid)
}

func (lm *LockManager) lockExclusiveLocked(t *Transaction, rid tuple.RID) bool {
	if holder, ok := lm.exclusive[rid]; ok && holder != 0 && holder != t.ID {
		return false
	}
	for holderID := range lm.shared[rid] {
		if holderID != t.ID {
			return false
		}
	}
	lm.exclusive[rid] = t.ID
	delete(lm.shared, rid)

	t.mu.Lock()
	delete(t.sharedLocks, rid)
	t.exclusiveLocks[rid] = true
	t.mu.Unlock()
	return true
}

// LockUpgrade converts t's existing shared lock on rid into an exclusive
// one. Fails (like any exclusive acquisition) if another transaction also
// holds a shared lock on rid.
func (lm *LockManager) LockUpgrade(t *Transaction, rid tuple.RID) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.lockExclusiveLocked(t, rid)
}

// Unlock releases every lock t holds on rid.
func (lm *LockManager) Unlock(t *Transaction, rid tuple.RID) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if holders, ok := lm.shared[rid]; ok {
		delete(holders, t.ID)
		if len(holders) == 0 {
			delete(lm.shared, rid)
		}
	}
	if lm.exclusive[rid] == t.ID {
		delete(lm.exclusive, rid)
	}

	t.mu.Lock()
	delete(t.sharedLocks, rid)
	delete(t.exclusiveLocks, rid)
	t.mu.Unlock()
	return true
}

// IsSharedLocked reports whether t holds a shared lock on rid.
func (lm *LockManager) IsSharedLocked(t *Transaction, rid tuple.RID) bool {
	return t.IsSharedLocked(rid)
}
