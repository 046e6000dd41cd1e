package execution

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/catalog"
	"corebase/storage/buffer"
	"corebase/storage/disk"
	"corebase/storage/tuple"
	"corebase/txn"
)

type testEnv struct {
	cat     *catalog.Catalog
	pool    *buffer.Instance
	lockMgr *txn.LockManager
	txnMgr  *txn.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dm, err := disk.NewManager(filepath.Join(t.TempDir(), "db.pages"))
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	pool := buffer.NewInstance(32, 1, 0, dm)

	cat, err := catalog.NewCatalog()
	require.NoError(t, err)

	lockMgr := txn.NewLockManager()
	txnMgr := txn.NewManager(lockMgr)
	return &testEnv{cat: cat, pool: pool, lockMgr: lockMgr, txnMgr: txnMgr}
}

func (e *testEnv) newContext(t *testing.T) *Context {
	tr := e.txnMgr.Begin(txn.ReadCommitted)
	return NewContext(e.cat, e.pool, tr, e.lockMgr)
}

func singleColSchema() *tuple.Schema {
	return tuple.NewSchema(tuple.Column{Name: "a", Type: tuple.Integer})
}

func seedTable(t *testing.T, env *testEnv, name string, schema *tuple.Schema, rows [][]tuple.Value) *catalog.TableInfo {
	t.Helper()
	info, err := env.cat.CreateTable(name, schema, env.pool)
	require.NoError(t, err)
	for _, vs := range rows {
		tup := tuple.NewTuple(vs...)
		_, err := info.Heap.InsertTuple(tup.Serialize(schema))
		require.NoError(t, err)
	}
	return info
}

func identityExprs(n int) []tuple.Expression {
	out := make([]tuple.Expression, n)
	for i := range out {
		out[i] = &tuple.ColumnValueExpression{TupleIdx: 0, ColIndex: i}
	}
	return out
}

func drain(t *testing.T, ex Executor) []*tuple.Tuple {
	t.Helper()
	require.NoError(t, ex.Init())
	var out []*tuple.Tuple
	for {
		row, _, ok, err := ex.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row)
	}
	return out
}
