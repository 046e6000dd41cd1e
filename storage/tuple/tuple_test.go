package tuple

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema(
		Column{Name: "a", Type: Integer},
		Column{Name: "b", Type: Varchar, Length: 16},
		Column{Name: "c", Type: Boolean},
	)
}

func TestSerializeRoundTrip(t *testing.T) {
	schema := testSchema()
	tup := NewTuple(NewInteger(42), NewVarchar("hello"), NewBoolean(true))

	buf := tup.Serialize(schema)
	got, err := Deserialize(schema, buf)
	require.NoError(t, err)

	require.Equal(t, int64(42), got.GetValue(0).AsInteger())
	require.Equal(t, "hello", got.GetValue(1).AsVarchar())
	require.Equal(t, true, got.GetValue(2).AsBoolean())
}

func TestSerializeNull(t *testing.T) {
	schema := testSchema()
	tup := NewTuple(NewNull(Integer), NewVarchar(""), NewBoolean(false))

	buf := tup.Serialize(schema)
	got, err := Deserialize(schema, buf)
	require.NoError(t, err)
	require.True(t, got.GetValue(0).Null)
}

func TestValueCompareOrdering(t *testing.T) {
	require.Equal(t, -1, NewInteger(1).Compare(NewInteger(2)))
	require.Equal(t, 0, NewInteger(5).Compare(NewInteger(5)))
	require.Equal(t, 1, NewInteger(9).Compare(NewInteger(2)))
	require.Equal(t, -1, NewNull(Integer).Compare(NewInteger(0)))
}

func TestComparisonExpression(t *testing.T) {
	schema := testSchema()
	tup := NewTuple(NewInteger(10), NewVarchar("x"), NewBoolean(false))

	expr := &ComparisonExpression{
		Left:  &ColumnValueExpression{ColIndex: 0},
		Right: &ConstantValueExpression{Val: NewInteger(10)},
		Op:    Equal,
	}
	require.True(t, expr.Evaluate(tup, schema).AsBoolean())
}

func TestProject(t *testing.T) {
	tup := NewTuple(NewInteger(1), NewInteger(2), NewInteger(3))
	projected := tup.Project([]int{2, 0})
	require.Equal(t, int64(3), projected.GetValue(0).AsInteger())
	require.Equal(t, int64(1), projected.GetValue(1).AsInteger())
}
