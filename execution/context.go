// Package execution is the Executor Framework of spec.md §4.6: a tree of
// single-threaded, pull-based iterator-model operators (SeqScan, Insert,
// Delete, Update, NestedLoopJoin, HashJoin, Aggregation, Distinct), each
// implementing Init/Next/OutputSchema. Grounded structurally on the
// ExecutorContext pattern in
// _examples/other_examples/ryogrid-SamehadaDB__executor_context.go (a
// small struct bundling the catalog and buffer pool every executor needs),
// generalized with the transaction manager and lock manager every
// mutating operator in spec.md §4.6.2-4.6.4 also needs.
package execution

import (
	"corebase/catalog"
	"corebase/storage/buffer"
	"corebase/txn"
)

// Context bundles the services every Executor needs to run: the catalog
// for table/index lookups, the buffer pool backing table heaps and
// indexes, and the running transaction for locking and write-set
// bookkeeping.
type Context struct {
	Catalog *catalog.Catalog
	Pool    *buffer.Instance
	Txn     *txn.Transaction
	LockMgr *txn.LockManager
}

// NewContext builds an executor context for one statement's execution.
func NewContext(cat *catalog.Catalog, pool *buffer.Instance, t *txn.Transaction, lm *txn.LockManager) *Context {
	return &Context{Catalog: cat, Pool: pool, Txn: t, LockMgr: lm}
}
