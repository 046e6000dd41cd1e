package execution

import "corebase/storage/tuple"

// DistinctExecutor suppresses rows whose projected key has already been
// seen, per spec.md §4.6.8.
type DistinctExecutor struct {
	Child     Executor
	OutSchema *tuple.Schema

	seen map[string]bool
}

func NewDistinctExecutor(child Executor, outSchema *tuple.Schema) *DistinctExecutor {
	return &DistinctExecutor{Child: child, OutSchema: outSchema}
}

func (e *DistinctExecutor) Init() error {
	e.seen = make(map[string]bool)
	return e.Child.Init()
}

func (e *DistinctExecutor) OutputSchema() *tuple.Schema { return e.OutSchema }

func (e *DistinctExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for {
		t, rid, ok, err := e.Child.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			return nil, tuple.RID{}, false, nil
		}
		key := distinctKey(t)
		if e.seen[key] {
			continue
		}
		e.seen[key] = true
		return t, rid, true, nil
	}
}

func distinctKey(t *tuple.Tuple) string {
	var key []byte
	for _, v := range t.Values {
		key = append(key, v.HashKey()...)
		key = append(key, 0)
	}
	return string(key)
}
