// Package txn implements the transaction and two-phase locking contract
// spec.md §6 lists as "consumed" — the core has no external lock manager to
// import, so this is the owned implementation the executors in package
// execution actually call. Grounded on the teacher's
// storage_engine/transaction_manager (ID issuance, active-transaction
// table, commit/abort bookkeeping) plus original_source's
// insert_executor.cpp/delete_executor.cpp for the lock-upgrade-or-abort
// and index-write-set semantics spec.md §4.6.2–§4.6.4 name directly.
package txn

import (
	"sync"
	"sync/atomic"

	"corebase/storage/tuple"
)

// State is a transaction's lifecycle stage.
type State uint8

const (
	Active State = iota
	Committed
	Aborted
)

// IsolationLevel controls whether row locks are released as soon as an
// operator is done with a RID (weaker than REPEATABLE_READ) or held until
// commit/abort (REPEATABLE_READ) — spec.md §4.6.2's "release lock under
// weaker isolation".
type IsolationLevel uint8

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
)

// WriteKind distinguishes the kind of write an IndexWriteRecord undoes.
type WriteKind uint8

const (
	WriteInsert WriteKind = iota
	WriteUpdate
	WriteDelete
)

// IndexWriteRecord is one entry of a transaction's rollback bookkeeping:
// enough to undo one index mutation. spec.md §4.6.3 names this explicitly
// for Delete; original_source's insert/update executors append their own
// record kinds too (the distillation only mentioned Delete's).
type IndexWriteRecord struct {
	RID     tuple.RID
	IndexID int64
	Kind    WriteKind
	OldKey  tuple.Value
	NewKey  tuple.Value
}

// Transaction is one query's execution context: its isolation level, its
// lifecycle state, and the bookkeeping needed to release its locks and
// (in a fuller implementation) roll back its index writes.
type Transaction struct {
	ID             uint64
	State          State
	IsolationLevel IsolationLevel

	IndexWriteSet []IndexWriteRecord

	mu             sync.Mutex
	sharedLocks    map[tuple.RID]bool
	exclusiveLocks map[tuple.RID]bool
}

func newTransaction(id uint64, level IsolationLevel) *Transaction {
	return &Transaction{
		ID:             id,
		State:          Active,
		IsolationLevel: level,
		sharedLocks:    make(map[tuple.RID]bool),
		exclusiveLocks: make(map[tuple.RID]bool),
	}
}

// IsSharedLocked reports whether this transaction itself holds a shared
// lock on rid (not whether anyone does).
func (t *Transaction) IsSharedLocked(rid tuple.RID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sharedLocks[rid]
}

func (t *Transaction) heldRIDs() []tuple.RID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]tuple.RID, 0, len(t.sharedLocks)+len(t.exclusiveLocks))
	for rid := range t.sharedLocks {
		out = append(out, rid)
	}
	for rid := range t.exclusiveLocks {
		out = append(out, rid)
	}
	return out
}

// Manager issues transaction ids and tracks the active set, mirroring the
// teacher's TxnManager (storage_engine/transaction_manager/main.go).
type Manager struct {
	mu         sync.RWMutex
	nextID     uint64
	active     map[uint64]*Transaction
	lockMgr    *LockManager
}

// NewManager builds a transaction manager backed by lockMgr — Commit/Abort
// release every lock the finishing transaction still holds.
func NewManager(lockMgr *LockManager) *Manager {
	return &Manager{
		nextID:  1,
		active:  make(map[uint64]*Transaction),
		lockMgr: lockMgr,
	}
}

// Begin starts a new transaction at the given isolation level and
// registers it as active.
func (m *Manager) Begin(level IsolationLevel) *Transaction {
	id := atomic.AddUint64(&m.nextID, 1) - 1
	t := newTransaction(id, level)

	m.mu.Lock()
	m.active[id] = t
	m.mu.Unlock()
	return t
}

// Commit marks t committed and releases any locks it still holds —
// REPEATABLE_READ transactions hold every row lock until exactly this
// point (strict two-phase locking's growing/shrinking boundary).
func (m *Manager) Commit(t *Transaction) {
	m.finish(t, Committed)
}

// Abort marks t aborted and releases its locks. Undoing its writes via
// IndexWriteSet is the caller's responsibility — this core does not
// implement rollback replay (recovery/rollback execution is a non-goal).
func (m *Manager) Abort(t *Transaction) {
	m.finish(t, Aborted)
}

func (m *Manager) finish(t *Transaction, state State) {
	for _, rid := range t.heldRIDs() {
		m.lockMgr.Unlock(t, rid)
	}

	t.mu.Lock()
	t.State = state
	t.mu.Unlock()

	m.mu.Lock()
	delete(m.active, t.ID)
	m.mu.Unlock()
}

// Get returns the active transaction with the given id, or nil.
func (m *Manager) Get(id uint64) *Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[id]
}
