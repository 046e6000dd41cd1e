package execution

import (
	"corebase/catalog"
	"corebase/storage/tuple"
	"corebase/txn"
)

// UpdateKind distinguishes UpdateInfo's two forms: replace a column
// outright, or add an integer delta to it — spec.md §4.6.4.
type UpdateKind int

const (
	UpdateSet UpdateKind = iota
	UpdateAdd
)

// UpdateInfo describes one column's mutation.
type UpdateInfo struct {
	ColIndex int
	Kind     UpdateKind
	Value    tuple.Value // replacement (Set) or delta (Add)
}

// UpdateExecutor pulls RIDs from Child, applies Infos to each tuple, and
// rewrites it in place.
type UpdateExecutor struct {
	ctx     *Context
	table   *catalog.TableInfo
	indexes []*catalog.IndexInfo
	Child   Executor
	Infos   []UpdateInfo

	done bool
}

func NewUpdateExecutor(ctx *Context, tableName string, child Executor, infos []UpdateInfo) (*UpdateExecutor, error) {
	table, err := ctx.Catalog.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	indexes, err := ctx.Catalog.GetTableIndexes(tableName)
	if err != nil {
		return nil, err
	}
	return &UpdateExecutor{ctx: ctx, table: table, indexes: indexes, Child: child, Infos: infos}, nil
}

func (e *UpdateExecutor) Init() error                 { return e.Child.Init() }
func (e *UpdateExecutor) OutputSchema() *tuple.Schema { return e.table.Schema }

func (e *UpdateExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
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
		if err := e.updateOne(t, rid); err != nil {
			return nil, tuple.RID{}, false, err
		}
	}
}

func (e *UpdateExecutor) applyInfos(t *tuple.Tuple) *tuple.Tuple {
	values := make([]tuple.Value, len(t.Values))
	copy(values, t.Values)
	for _, info := range e.Infos {
		switch info.Kind {
		case UpdateSet:
			values[info.ColIndex] = info.Value
		case UpdateAdd:
			values[info.ColIndex] = values[info.ColIndex].Add(info.Value)
		}
	}
	return &tuple.Tuple{RID: t.RID, Values: values}
}

func (e *UpdateExecutor) updateOne(t *tuple.Tuple, rid tuple.RID) error {
	if !e.ctx.LockMgr.IsSharedLocked(e.ctx.Txn, rid) {
		if !e.ctx.LockMgr.LockExclusive(e.ctx.Txn, rid) {
			return ErrTxnAborted
		}
	} else if !e.ctx.LockMgr.LockUpgrade(e.ctx.Txn, rid) {
		return ErrTxnAborted
	}

	updated := e.applyInfos(t)
	if err := e.table.Heap.UpdateTuple(rid, updated.Serialize(e.table.Schema)); err != nil {
		return err
	}

	for _, idx := range e.indexes {
		oldKey := idx.KeyFromTuple(t, e.table.Schema)
		newKey := idx.KeyFromTuple(updated, e.table.Schema)
		if _, err := idx.Index.Remove(oldKey, rid); err != nil {
			return err
		}
		if _, err := idx.Index.Insert(newKey, rid); err != nil {
			return err
		}
		e.ctx.Txn.IndexWriteSet = append(e.ctx.Txn.IndexWriteSet, txn.IndexWriteRecord{
			RID:     rid,
			IndexID: idx.OID,
			Kind:    txn.WriteUpdate,
			OldKey:  tuple.NewInteger(oldKey),
			NewKey:  tuple.NewInteger(newKey),
		})
	}

	releaseLock(e.ctx, rid)
	return nil
}
