package execution

import "corebase/storage/tuple"

// NestedLoopJoinExecutor re-initializes Right on every Left advance,
// emitting pairs for which Predicate.EvaluateJoin (if any) is true,
// projecting each with OutputExprs's EvaluateJoin — spec.md §4.6.5.
type NestedLoopJoinExecutor struct {
	Left, Right Executor
	Predicate   tuple.Expression
	OutputExprs []tuple.Expression
	OutSchema   *tuple.Schema

	leftTuple   *tuple.Tuple
	leftRID     tuple.RID
	leftDone    bool
	rightLoaded bool
}

func NewNestedLoopJoinExecutor(left, right Executor, predicate tuple.Expression, outputExprs []tuple.Expression, outSchema *tuple.Schema) *NestedLoopJoinExecutor {
	return &NestedLoopJoinExecutor{Left: left, Right: right, Predicate: predicate, OutputExprs: outputExprs, OutSchema: outSchema}
}

func (e *NestedLoopJoinExecutor) Init() error {
	if err := e.Left.Init(); err != nil {
		return err
	}
	return e.advanceLeft()
}

func (e *NestedLoopJoinExecutor) OutputSchema() *tuple.Schema { return e.OutSchema }

func (e *NestedLoopJoinExecutor) advanceLeft() error {
	t, rid, ok, err := e.Left.Next()
	if err != nil {
		return err
	}
	if !ok {
		e.leftDone = true
		return nil
	}
	e.leftTuple, e.leftRID = t, rid
	if err := e.Right.Init(); err != nil {
		return err
	}
	e.rightLoaded = true
	return nil
}

func (e *NestedLoopJoinExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for !e.leftDone {
		rt, _, ok, err := e.Right.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			if err := e.advanceLeft(); err != nil {
				return nil, tuple.RID{}, false, err
			}
			continue
		}
		if e.Predicate != nil {
			match := e.Predicate.EvaluateJoin(e.leftTuple, nil, rt, nil)
			if !match.AsBoolean() {
				continue
			}
		}
		return joinOutput(e.OutputExprs, e.leftTuple, rt), e.leftRID, true, nil
	}
	return nil, tuple.RID{}, false, nil
}

// joinOutput evaluates each of exprs against (left, right) — the "output
// schema's evaluate_join" projection spec.md §4.6.5/§4.6.6 both describe.
func joinOutput(exprs []tuple.Expression, left, right *tuple.Tuple) *tuple.Tuple {
	values := make([]tuple.Value, len(exprs))
	for i, expr := range exprs {
		values[i] = expr.EvaluateJoin(left, nil, right, nil)
	}
	return tuple.NewTuple(values...)
}
