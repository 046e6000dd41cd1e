package execution

import (
	"corebase/catalog"
	"corebase/storage/heap"
	"corebase/storage/tuple"
)

// SeqScanExecutor walks a table heap end to end, filtering by Predicate
// (if set) and projecting each surviving row through OutSchema — spec.md
// §4.6.1.
type SeqScanExecutor struct {
	ctx       *Context
	table     *catalog.TableInfo
	Predicate tuple.Expression
	OutCols   []int // indices into table schema projected into OutSchema

	it *heap.Iterator
}

// NewSeqScanExecutor scans tableName, emitting the columns at outCols.
func NewSeqScanExecutor(ctx *Context, tableName string, predicate tuple.Expression, outCols []int) (*SeqScanExecutor, error) {
	table, err := ctx.Catalog.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	return &SeqScanExecutor{ctx: ctx, table: table, Predicate: predicate, OutCols: outCols}, nil
}

func (e *SeqScanExecutor) Init() error {
	e.it = e.table.Heap.Iterator()
	return nil
}

func (e *SeqScanExecutor) OutputSchema() *tuple.Schema {
	cols := make([]tuple.Column, len(e.OutCols))
	for i, c := range e.OutCols {
		cols[i] = e.table.Schema.Columns[c]
	}
	return tuple.NewSchema(cols...)
}

func (e *SeqScanExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for {
		has, err := e.it.HasNext()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !has {
			e.it.Close()
			return nil, tuple.RID{}, false, nil
		}
		rid, raw := e.it.Next()
		t, err := tuple.Deserialize(e.table.Schema, raw)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		t.RID = rid

		if e.Predicate != nil && !e.Predicate.Evaluate(t, e.table.Schema).AsBoolean() {
			continue
		}
		return t.Project(e.OutCols), rid, true, nil
	}
}
