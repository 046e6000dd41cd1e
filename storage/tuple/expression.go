package tuple

// Expression is the evaluation interface spec.md §6 lists as supplied by
// the (absent) SQL layer: something every operator's predicate and output
// schema can call to turn a row (or a pair of rows, for joins, or a
// group's accumulators, for aggregation) into a single Value.
//
// Every expression kind implements all three modes; callers only invoke
// the mode their operator actually uses.
type Expression interface {
	// Evaluate computes this expression against a single tuple.
	Evaluate(t *Tuple, schema *Schema) Value
	// EvaluateJoin computes this expression against a pair of tuples from
	// a join's two children.
	EvaluateJoin(left *Tuple, leftSchema *Schema, right *Tuple, rightSchema *Schema) Value
	// EvaluateAggregate computes this expression against one group's
	// group-by values and accumulated aggregate values.
	EvaluateAggregate(groupBys []Value, aggregates []Value) Value
}

// ConstantValueExpression always evaluates to the same literal.
type ConstantValueExpression struct {
	Val Value
}

func (e *ConstantValueExpression) Evaluate(*Tuple, *Schema) Value { return e.Val }
func (e *ConstantValueExpression) EvaluateJoin(*Tuple, *Schema, *Tuple, *Schema) Value {
	return e.Val
}
func (e *ConstantValueExpression) EvaluateAggregate([]Value, []Value) Value { return e.Val }

// ColumnValueExpression reads one column out of one side of the input.
// TupleIdx selects which child in a join (0 = left/outer, 1 = right/inner)
// and, in aggregate mode, group-by values (0) or aggregate values (1);
// Evaluate ignores it.
type ColumnValueExpression struct {
	TupleIdx int
	ColIndex int
}

func (e *ColumnValueExpression) Evaluate(t *Tuple, _ *Schema) Value {
	return t.GetValue(e.ColIndex)
}

func (e *ColumnValueExpression) EvaluateJoin(left *Tuple, _ *Schema, right *Tuple, _ *Schema) Value {
	if e.TupleIdx == 0 {
		return left.GetValue(e.ColIndex)
	}
	return right.GetValue(e.ColIndex)
}

func (e *ColumnValueExpression) EvaluateAggregate(groupBys []Value, aggregates []Value) Value {
	if e.TupleIdx == 0 {
		return groupBys[e.ColIndex]
	}
	return aggregates[e.ColIndex]
}

// ComparisonType enumerates the comparisons ComparisonExpression supports.
type ComparisonType int

const (
	Equal ComparisonType = iota
	NotEqual
	LessThan
	LessThanEqual
	GreaterThan
	GreaterThanEqual
)

// ComparisonExpression evaluates Left and Right against the same input and
// returns a Boolean Value comparing them.
type ComparisonExpression struct {
	Left, Right Expression
	Op          ComparisonType
}

func (e *ComparisonExpression) compare(l, r Value) Value {
	if l.Null || r.Null {
		return NewNull(Boolean)
	}
	c := l.Compare(r)
	switch e.Op {
	case Equal:
		return NewBoolean(c == 0)
	case NotEqual:
		return NewBoolean(c != 0)
	case LessThan:
		return NewBoolean(c < 0)
	case LessThanEqual:
		return NewBoolean(c <= 0)
	case GreaterThan:
		return NewBoolean(c > 0)
	case GreaterThanEqual:
		return NewBoolean(c >= 0)
	default:
		return NewBoolean(false)
	}
}

func (e *ComparisonExpression) Evaluate(t *Tuple, s *Schema) Value {
	return e.compare(e.Left.Evaluate(t, s), e.Right.Evaluate(t, s))
}

func (e *ComparisonExpression) EvaluateJoin(left *Tuple, ls *Schema, right *Tuple, rs *Schema) Value {
	return e.compare(e.Left.EvaluateJoin(left, ls, right, rs), e.Right.EvaluateJoin(left, ls, right, rs))
}

func (e *ComparisonExpression) EvaluateAggregate(groupBys, aggregates []Value) Value {
	return e.compare(e.Left.EvaluateAggregate(groupBys, aggregates), e.Right.EvaluateAggregate(groupBys, aggregates))
}

// LogicExpression combines two Boolean expressions with AND/OR — needed so
// a NestedLoopJoin or filter predicate can compose more than one
// comparison.
type LogicType int

const (
	And LogicType = iota
	Or
)

type LogicExpression struct {
	Left, Right Expression
	Op          LogicType
}

func (e *LogicExpression) combine(l, r Value) Value {
	if l.Null || r.Null {
		return NewNull(Boolean)
	}
	switch e.Op {
	case And:
		return NewBoolean(l.AsBoolean() && r.AsBoolean())
	default:
		return NewBoolean(l.AsBoolean() || r.AsBoolean())
	}
}

func (e *LogicExpression) Evaluate(t *Tuple, s *Schema) Value {
	return e.combine(e.Left.Evaluate(t, s), e.Right.Evaluate(t, s))
}

func (e *LogicExpression) EvaluateJoin(left *Tuple, ls *Schema, right *Tuple, rs *Schema) Value {
	return e.combine(e.Left.EvaluateJoin(left, ls, right, rs), e.Right.EvaluateJoin(left, ls, right, rs))
}

func (e *LogicExpression) EvaluateAggregate(groupBys, aggregates []Value) Value {
	return e.combine(e.Left.EvaluateAggregate(groupBys, aggregates), e.Right.EvaluateAggregate(groupBys, aggregates))
}

// ArithmeticType enumerates what ArithmeticExpression computes.
type ArithmeticType int

const (
	Add ArithmeticType = iota
)

// ArithmeticExpression backs Update's per-column integer delta
// (spec.md §4.6.4: Set or Add a delta).
type ArithmeticExpression struct {
	Left, Right Expression
	Op          ArithmeticType
}

func (e *ArithmeticExpression) apply(l, r Value) Value {
	switch e.Op {
	case Add:
		return l.Add(r)
	default:
		return l
	}
}

func (e *ArithmeticExpression) Evaluate(t *Tuple, s *Schema) Value {
	return e.apply(e.Left.Evaluate(t, s), e.Right.Evaluate(t, s))
}

func (e *ArithmeticExpression) EvaluateJoin(left *Tuple, ls *Schema, right *Tuple, rs *Schema) Value {
	return e.apply(e.Left.EvaluateJoin(left, ls, right, rs), e.Right.EvaluateJoin(left, ls, right, rs))
}

func (e *ArithmeticExpression) EvaluateAggregate(groupBys, aggregates []Value) Value {
	return e.apply(e.Left.EvaluateAggregate(groupBys, aggregates), e.Right.EvaluateAggregate(groupBys, aggregates))
}
