package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corebase/storage/tuple"
)

// TestGrouplessCountAndSum is scenario EXE-2: Aggregation(SeqScan(t),
// group_by=[], aggregates=[COUNT(*), SUM(a)]) on {1,2,2,3} yields (4, 8).
func TestGrouplessCountAndSum(t *testing.T) {
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

	aggregates := []tuple.Expression{
		&tuple.ColumnValueExpression{ColIndex: 0},
		&tuple.ColumnValueExpression{ColIndex: 0},
	}
	outSchema := tuple.NewSchema(
		tuple.Column{Name: "count", Type: tuple.Integer},
		tuple.Column{Name: "sum", Type: tuple.Integer},
	)
	outputExprs := []tuple.Expression{
		&tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 0},
		&tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 1},
	}

	agg := NewAggregationExecutor(scan, schema, nil, aggregates,
		[]AggregateType{AggCount, AggSum}, nil, outputExprs, outSchema)

	rows := drain(t, agg)
	require.Len(t, rows, 1)
	require.Equal(t, int64(4), rows[0].GetValue(0).AsInteger())
	require.Equal(t, int64(8), rows[0].GetValue(1).AsInteger())
}

func TestMinMaxAggregates(t *testing.T) {
	env := newTestEnv(t)
	schema := singleColSchema()
	seedTable(t, env, "t", schema, [][]tuple.Value{
		{tuple.NewInteger(5)},
		{tuple.NewInteger(1)},
		{tuple.NewInteger(9)},
	})

	ctx := env.newContext(t)
	scan, err := NewSeqScanExecutor(ctx, "t", nil, []int{0})
	require.NoError(t, err)

	aggregates := []tuple.Expression{
		&tuple.ColumnValueExpression{ColIndex: 0},
		&tuple.ColumnValueExpression{ColIndex: 0},
	}
	outSchema := tuple.NewSchema(
		tuple.Column{Name: "min", Type: tuple.Integer},
		tuple.Column{Name: "max", Type: tuple.Integer},
	)
	outputExprs := []tuple.Expression{
		&tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 0},
		&tuple.ColumnValueExpression{TupleIdx: 1, ColIndex: 1},
	}

	agg := NewAggregationExecutor(scan, schema, nil, aggregates,
		[]AggregateType{AggMin, AggMax}, nil, outputExprs, outSchema)

	rows := drain(t, agg)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].GetValue(0).AsInteger())
	require.Equal(t, int64(9), rows[0].GetValue(1).AsInteger())
}
