package execution

import (
	"corebase/storage/tuple"
	"corebase/txn"
)

// Executor is the pull-based operator contract of spec.md §4.6: Init
// prepares iteration once, Next produces the next row (or reports
// end-of-stream), OutputSchema describes what Next projects into.
type Executor interface {
	// Init prepares iteration. Called once before the first Next.
	Init() error
	// Next produces the next output row. A false second return means the
	// operator is exhausted; out and rid are meaningless in that case.
	Next() (out *tuple.Tuple, rid tuple.RID, ok bool, err error)
	OutputSchema() *tuple.Schema
}

func releaseLock(ctx *Context, rid tuple.RID) {
	if ctx.Txn.IsolationLevel != txn.RepeatableRead {
		ctx.LockMgr.Unlock(ctx.Txn, rid)
	}
}
