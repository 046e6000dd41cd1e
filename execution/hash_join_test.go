package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

func TestHashJoinMatchesOnKey(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "left", schema, [][]tuple.Value{
		{tuple.NewInteger(1)},
		{tuple.NewInteger(2)},
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

	leftKey := &tuple.ColumnValueExpression{ColIndex: 0}
	rightKey := &tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 0}
	outSchema := tuple.NewSchema(tuple.Column{Name: "a", Type: tuple.Integer})
	outputExprs := []tuple.Expression{&tuple.ColumnValueExpression{TupleIdx: 0, ColIndex: 0}}

	join := NewHashJoinExecutor(left, right, leftKey, rightKey, outputExprs, outSchema, schema)
	rows := drain(t, join)
	// two left rows with value 2 both match the single right row with value 2
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Equal(t, int64(2), r.GetValue(0).AsInteger())
	}
}
