package execution

import (
	"github.com/pkg/errors"

	"corebase/catalog"
	"corebase/storage/tuple"
	"corebase/txn"
)

// ErrTxnAborted is returned when a lock upgrade or acquisition fails;
// spec.md §4.6.2 calls for aborting the transaction with DEADLOCK in this
// case, which callers do by calling Context.Txn's manager's Abort.
var ErrTxnAborted = errors.New("execution: lock acquisition failed, transaction must abort")

// InsertExecutor inserts rows into a table, either pulled from Child or
// supplied directly as RawValues (spec.md §4.6.2's raw_values /
// !is_raw_insert split).
type InsertExecutor struct {
	ctx       *Context
	table     *catalog.TableInfo
	indexes   []*catalog.IndexInfo
	Child     Executor
	RawValues []*tuple.Tuple

	rawIdx int
	done   bool
}

// NewInsertExecutor builds an Insert over tableName. Exactly one of child
// or rawValues should be non-nil/non-empty, matching the source plan
// node's is_raw_insert flag.
func NewInsertExecutor(ctx *Context, tableName string, child Executor, rawValues []*tuple.Tuple) (*InsertExecutor, error) {
	table, err := ctx.Catalog.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	indexes, err := ctx.Catalog.GetTableIndexes(tableName)
	if err != nil {
		return nil, err
	}
	return &InsertExecutor{ctx: ctx, table: table, indexes: indexes, Child: child, RawValues: rawValues}, nil
}

func (e *InsertExecutor) Init() error {
	if e.Child != nil {
		return e.Child.Init()
	}
	return nil
}

func (e *InsertExecutor) OutputSchema() *tuple.Schema { return e.table.Schema }

// Next inserts every source row in one call (Insert/Delete/Update never
// emit visible output rows), looping internally rather than recursing to
// skip rows, per spec.md §9's note on the source's tail-recursive Next.
func (e *InsertExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if e.done {
		return nil, tuple.RID{}, false, nil
	}
	for {
		t, ok, err := e.nextSource()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			e.done = true
			return nil, tuple.RID{}, false, nil
		}
		if err := e.insertOne(t); err != nil {
			return nil, tuple.RID{}, false, err
		}
	}
}

func (e *InsertExecutor) nextSource() (*tuple.Tuple, bool, error) {
	if e.Child != nil {
		t, _, ok, err := e.Child.Next()
		return t, ok, err
	}
	if e.rawIdx >= len(e.RawValues) {
		return nil, false, nil
	}
	t := e.RawValues[e.rawIdx]
	e.rawIdx++
	return t, true, nil
}

func (e *InsertExecutor) insertOne(t *tuple.Tuple) error {
	rid, err := e.table.Heap.InsertTuple(t.Serialize(e.table.Schema))
	if err != nil {
		return err
	}
	t.RID = rid

	if !e.ctx.LockMgr.IsSharedLocked(e.ctx.Txn, rid) {
		if !e.ctx.LockMgr.LockExclusive(e.ctx.Txn, rid) {
			return ErrTxnAborted
		}
	} else if !e.ctx.LockMgr.LockUpgrade(e.ctx.Txn, rid) {
		return ErrTxnAborted
	}

	for _, idx := range e.indexes {
		key := idx.KeyFromTuple(t, e.table.Schema)
		if _, err := idx.Index.Insert(key, rid); err != nil {
			return err
		}
		e.ctx.Txn.IndexWriteSet = append(e.ctx.Txn.IndexWriteSet, txn.IndexWriteRecord{
			RID:     rid,
			IndexID: idx.OID,
			Kind:    txn.WriteInsert,
			NewKey:  tuple.NewInteger(key),
		})
	}

	releaseLock(e.ctx, rid)
	return nil
}
