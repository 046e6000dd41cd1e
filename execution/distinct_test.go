package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

// TestDistinctDropsDuplicates is scenario EXE-1: Distinct(SeqScan(t)) on
// {1,2,2,3} produces {1,2,3} in some order.
func TestDistinctDropsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "t", schema, [][]tuple.Value{
		{tuple.NewInteger(1)},
		{tuple.NewInteger(2)},
		{tuple.NewInteger(2)},
		{tuple.NewInteger(3)},
	})

	ctx := env.newContext(t)
	scan, err := NewSeqScanExecutor(ctx, "t", nil, []int{0})
	require.NoError(t, err)

	distinct := NewDistinctExecutor(scan, schema)
	rows := drain(t, distinct)
	require.Len(t, rows, 3)

	seen := map[int64]bool{}
	for _, r := range rows {
		seen[r.GetValue(0).AsInteger()] = true
	}
	require.True(t, seen[1])
	require.True(t, seen[2])
	require.True(t, seen[3])
}
