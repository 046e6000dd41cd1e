package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/buffer"
	"corebase/storage/disk"
	"corebase/storage/tuple"
)

func newTestPool(t *testing.T) *buffer.Instance {
	t.Helper()
	dm, err := disk.NewManager(filepath.Join(t.TempDir(), "db.pages"))
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	return buffer.NewInstance(16, 1, 0, dm)
}

func testSchema() *tuple.Schema {
	return tuple.NewSchema(
		tuple.Column{Name: "id", Type: tuple.Integer},
		tuple.Column{Name: "name", Type: tuple.Varchar, Length: 32},
	)
}

func TestCreateAndGetTableByName(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)
	pool := newTestPool(t)

	info, err := cat.CreateTable("accounts", testSchema(), pool)
	require.NoError(t, err)
	require.Equal(t, "accounts", info.Name)

	got, err := cat.GetTableByName("accounts")
	require.NoError(t, err)
	require.Equal(t, info.OID, got.OID)

	byOID, err := cat.GetTable(info.OID)
	require.NoError(t, err)
	require.Same(t, info, byOID)
}

func TestCreateTableDuplicateRejected(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)
	pool := newTestPool(t)

	_, err = cat.CreateTable("accounts", testSchema(), pool)
	require.NoError(t, err)
	_, err = cat.CreateTable("accounts", testSchema(), pool)
	require.Error(t, err)
}

func TestCreateIndexAndGetTableIndexes(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)
	pool := newTestPool(t)

	_, err = cat.CreateTable("accounts", testSchema(), pool)
	require.NoError(t, err)

	idx, err := cat.CreateIndex("accounts", "accounts_id_idx", []int{0}, pool, 4)
	require.NoError(t, err)
	require.Equal(t, "accounts_id_idx", idx.Name)

	indexes, err := cat.GetTableIndexes("accounts")
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, idx.OID, indexes[0].OID)
}

func TestGetTableByNameMissing(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)

	_, err = cat.GetTableByName("ghost")
	require.Error(t, err)
}

func TestIndexInfoKeyFromTupleIntegerPassesThrough(t *testing.T) {
	cat, err := NewCatalog()
	require.NoError(t, err)
	pool := newTestPool(t)

	_, err = cat.CreateTable("accounts", testSchema(), pool)
	require.NoError(t, err)
	idx, err := cat.CreateIndex("accounts", "accounts_id_idx", []int{0}, pool, 4)
	require.NoError(t, err)

	tup := &tuple.Tuple{Values: []tuple.Value{tuple.NewInteger(42), tuple.NewVarchar("alice")}}
	require.Equal(t, int64(42), idx.KeyFromTuple(tup, testSchema()))
}
