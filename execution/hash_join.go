package execution

import "corebase/storage/tuple"

// HashJoinExecutor drains Left at Init, bucketing rows by LeftKey's
// evaluation; at Next it pulls Right one row at a time and yields one
// joined row per left-side match, keeping a cursor over the current
// match vector so one right row can span several Next calls — spec.md
// §4.6.6.
type HashJoinExecutor struct {
	Left, Right Executor
	LeftKey     tuple.Expression
	RightKey    tuple.Expression
	OutputExprs []tuple.Expression
	OutSchema   *tuple.Schema
	LeftSchema  *tuple.Schema

	buckets map[string][]*tuple.Tuple

	rightTuple *tuple.Tuple
	matches    []*tuple.Tuple
	matchIdx   int
	rightDone  bool
}

func NewHashJoinExecutor(left, right Executor, leftKey, rightKey tuple.Expression, outputExprs []tuple.Expression, outSchema, leftSchema *tuple.Schema) *HashJoinExecutor {
	return &HashJoinExecutor{
		Left: left, Right: right,
		LeftKey: leftKey, RightKey: rightKey,
		OutputExprs: outputExprs, OutSchema: outSchema, LeftSchema: leftSchema,
	}
}

func (e *HashJoinExecutor) Init() error {
	if err := e.Left.Init(); err != nil {
		return err
	}
	if err := e.Right.Init(); err != nil {
		return err
	}

	e.buckets = make(map[string][]*tuple.Tuple)
	for {
		t, _, ok, err := e.Left.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key := string(e.LeftKey.Evaluate(t, e.LeftSchema).HashKey())
		e.buckets[key] = append(e.buckets[key], t)
	}
	return nil
}

func (e *HashJoinExecutor) OutputSchema() *tuple.Schema { return e.OutSchema }

func (e *HashJoinExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for {
		if e.matchIdx < len(e.matches) {
			left := e.matches[e.matchIdx]
			e.matchIdx++
			return joinOutput(e.OutputExprs, left, e.rightTuple), tuple.RID{}, true, nil
		}
		if e.rightDone {
			return nil, tuple.RID{}, false, nil
		}

		t, _, ok, err := e.Right.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			e.rightDone = true
			continue
		}
		key := string(e.RightKey.EvaluateJoin(nil, nil, t, nil).HashKey())
		e.rightTuple = t
		e.matches = e.buckets[key]
		e.matchIdx = 0
	}
}
