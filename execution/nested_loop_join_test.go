package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

func TestNestedLoopJoinMatchesOnEquality(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "left", schema, [][]tuple.Value{
		{tuple.NewInteger(1)},
		{tuple.NewInteger(2)},
	})
	seedTable(t, env, "right", schema, [][]tuple.Value{
		{tuple.NewInteger(2)},
		{tuple.NewInteger(3)},
	})

	ctx := env.newContext(t)
	left, err := NewSeqScanExecutor(ctx, "left", nil, []int{0})
	require.NoError(t, err)
	right, err := NewSeqScanExecutor(ctx, "right", nil, []int{0})
	require.NoError(t, err)

	pred := &tuple.ComparisonExpression{
		Left:  &tuple.ColumnValueExpression{TupleIdx: 0, ColIndex: 0},
		Right: &tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 0},
		Op:    tuple.Equal,
	}
	outSchema := tuple.NewSchema(tuple.Column{Name: "a", Type: tuple.Integer})
	outputExprs := []tuple.Expression{&tuple.ColumnValueExpression{TupleIdx: 0, ColIndex: 0}}

	join := NewNestedLoopJoinExecutor(left, right, pred, outputExprs, outSchema)
	rows := drain(t, join)
	require.Len(t, rows, 1)
	require.Equal(t, int64(2), rows[0].GetValue(0).AsInteger())
}
