package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

func TestSeqScanReturnsAllRows(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "t", schema, [][]tuple.Value{
		{tuple.NewInteger(1)},
		{tuple.NewInteger(2)},
		{tuple.NewInteger(3)},
	})

	ctx := env.newContext(t)
	scan, err := NewSeqScanExecutor(ctx, "t", nil, []int{0})
	require.NoError(t, err)

	rows := drain(t, scan)
	require.Len(t, rows, 3)
}

func TestSeqScanAppliesPredicate(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "t", schema, [][]tuple.Value{
		{tuple.NewInteger(1)},
		{tuple.NewInteger(2)},
		{tuple.NewInteger(3)},
	})

	ctx := env.newContext(t)
	pred := &tuple.ComparisonExpression{
		Left:  &tuple.ColumnValueExpression{ColIndex: 0},
		Right: &tuple.ConstantValueExpression{Val: tuple.NewInteger(2)},
		Op:    tuple.GreaterThanEqual,
	}
	scan, err := NewSeqScanExecutor(ctx, "t", pred, []int{0})
	require.NoError(t, err)

	rows := drain(t, scan)
	require.Len(t, rows, 2)
}
