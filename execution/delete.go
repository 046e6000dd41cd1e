package execution

import (
	"corebase/catalog"
	"corebase/storage/tuple"
	"corebase/txn"
)

// DeleteExecutor pulls RIDs from Child (usually a SeqScan) and marks each
// deleted, per spec.md §4.6.3.
type DeleteExecutor struct {
	ctx     *Context
	table   *catalog.TableInfo
	indexes []*catalog.IndexInfo
	Child   Executor

	done bool
}

func NewDeleteExecutor(ctx *Context, tableName string, child Executor) (*DeleteExecutor, error) {
	table, err := ctx.Catalog.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	indexes, err := ctx.Catalog.GetTableIndexes(tableName)
	if err != nil {
		return nil, err
	}
	return &DeleteExecutor{ctx: ctx, table: table, indexes: indexes, Child: child}, nil
}

func (e *DeleteExecutor) Init() error           { return e.Child.Init() }
func (e *DeleteExecutor) OutputSchema() *tuple.Schema { return e.table.Schema }

func (e *DeleteExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if e.done {
		return nil, tuple.RID{}, false, nil
	}
	for {
		t, rid, ok, err := e.Child.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			e.done = true
			return nil, tuple.RID{}, false, nil
		}
		if err := e.deleteOne(t, rid); err != nil {
			return nil, tuple.RID{}, false, err
		}
	}
}

func (e *DeleteExecutor) deleteOne(t *tuple.Tuple, rid tuple.RID) error {
	if !e.ctx.LockMgr.IsSharedLocked(e.ctx.Txn, rid) {
		if !e.ctx.LockMgr.LockExclusive(e.ctx.Txn, rid) {
			return ErrTxnAborted
		}
	} else if !e.ctx.LockMgr.LockUpgrade(e.ctx.Txn, rid) {
		return ErrTxnAborted
	}

	if err := e.table.Heap.MarkDelete(rid); err != nil {
		return err
	}

	for _, idx := range e.indexes {
		key := idx.KeyFromTuple(t, e.table.Schema)
		if _, err := idx.Index.Remove(key, rid); err != nil {
			return err
		}
		e.ctx.Txn.IndexWriteSet = append(e.ctx.Txn.IndexWriteSet, txn.IndexWriteRecord{
			RID:     rid,
			IndexID: idx.OID,
			Kind:    txn.WriteDelete,
			OldKey:  tuple.NewInteger(key),
		})
	}

	releaseLock(e.ctx, rid)
	return nil
}
