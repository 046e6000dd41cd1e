package execution

import "corebase/storage/tuple"

// AggregateType is the handful of accumulators spec.md §4.6.7 names.
type AggregateType int

const (
	AggCount AggregateType = iota
	AggSum
	AggMin
	AggMax
)

func (a AggregateType) initial() tuple.Value {
	switch a {
	case AggCount, AggSum:
		return tuple.NewInteger(0)
	case AggMin:
		return tuple.PosInfInteger()
	case AggMax:
		return tuple.NegInfInteger()
	default:
		return tuple.NewInteger(0)
	}
}

func (a AggregateType) combine(acc, val tuple.Value) tuple.Value {
	switch a {
	case AggCount:
		return acc.Add(tuple.NewInteger(1))
	case AggSum:
		return acc.Add(val)
	case AggMin:
		if val.Compare(acc) < 0 {
			return val
		}
		return acc
	case AggMax:
		if val.Compare(acc) > 0 {
			return val
		}
		return acc
	default:
		return acc
	}
}

// aggregateHashTable maps a group-by key to its running accumulators —
// spec.md §9's "model as group_key -> [accumulator] with an iterator,
// don't expose pointer stability, iteration order unspecified".
type aggregateHashTable struct {
	types   []AggregateType
	groups  map[string][]tuple.Value
	groupBy map[string][]tuple.Value
	order   []string
}

func newAggregateHashTable(types []AggregateType) *aggregateHashTable {
	return &aggregateHashTable{
		types:   types,
		groups:  make(map[string][]tuple.Value),
		groupBy: make(map[string][]tuple.Value),
	}
}

func groupKey(groupBys []tuple.Value) string {
	var key []byte
	for _, v := range groupBys {
		key = append(key, v.HashKey()...)
		key = append(key, 0)
	}
	return string(key)
}

// insertCombine folds one input row's aggregate inputs into its group's
// accumulators, creating the group on first sight.
func (a *aggregateHashTable) insertCombine(groupBys, inputs []tuple.Value) {
	key := groupKey(groupBys)
	accs, ok := a.groups[key]
	if !ok {
		accs = make([]tuple.Value, len(a.types))
		for i, t := range a.types {
			accs[i] = t.initial()
		}
		a.groups[key] = accs
		a.groupBy[key] = groupBys
		a.order = append(a.order, key)
	}
	for i, t := range a.types {
		accs[i] = t.combine(accs[i], inputs[i])
	}
}

// aggregateIterator walks the hash table's groups in insertion order.
type aggregateIterator struct {
	aht *aggregateHashTable
	idx int
}

func (a *aggregateHashTable) iterator() *aggregateIterator {
	return &aggregateIterator{aht: a}
}

func (it *aggregateIterator) hasNext() bool { return it.idx < len(it.aht.order) }

func (it *aggregateIterator) next() (groupBys, aggregates []tuple.Value) {
	key := it.aht.order[it.idx]
	it.idx++
	return it.aht.groupBy[key], it.aht.groups[key]
}

// AggregationExecutor drains Child at Init into an aggregateHashTable,
// then at Next walks groups, skipping any for which Having evaluates
// false — spec.md §4.6.7. A groupless query (GroupBys empty) aggregates
// into one bucket keyed by the empty slice.
type AggregationExecutor struct {
	Child       Executor
	ChildSchema *tuple.Schema
	GroupBys    []tuple.Expression
	Aggregates  []tuple.Expression
	AggTypes    []AggregateType
	Having      tuple.Expression
	OutputExprs []tuple.Expression
	OutSchema   *tuple.Schema

	aht *aggregateHashTable
	it  *aggregateIterator
}

func NewAggregationExecutor(child Executor, childSchema *tuple.Schema, groupBys, aggregates []tuple.Expression, aggTypes []AggregateType, having tuple.Expression, outputExprs []tuple.Expression, outSchema *tuple.Schema) *AggregationExecutor {
	return &AggregationExecutor{
		Child: child, ChildSchema: childSchema,
		GroupBys: groupBys, Aggregates: aggregates, AggTypes: aggTypes,
		Having: having, OutputExprs: outputExprs, OutSchema: outSchema,
	}
}

func (e *AggregationExecutor) Init() error {
	if err := e.Child.Init(); err != nil {
		return err
	}
	e.aht = newAggregateHashTable(e.AggTypes)

	for {
		t, _, ok, err := e.Child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		groupBys := evalAll(e.GroupBys, t, e.ChildSchema)
		inputs := evalAll(e.Aggregates, t, e.ChildSchema)
		e.aht.insertCombine(groupBys, inputs)
	}
	e.it = e.aht.iterator()
	return nil
}

func evalAll(exprs []tuple.Expression, t *tuple.Tuple, schema *tuple.Schema) []tuple.Value {
	out := make([]tuple.Value, len(exprs))
	for i, expr := range exprs {
		out[i] = expr.Evaluate(t, schema)
	}
	return out
}

func (e *AggregationExecutor) OutputSchema() *tuple.Schema { return e.OutSchema }

func (e *AggregationExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for e.it.hasNext() {
		groupBys, aggregates := e.it.next()
		if e.Having != nil && !e.Having.EvaluateAggregate(groupBys, aggregates).AsBoolean() {
			continue
		}
		values := make([]tuple.Value, len(e.OutputExprs))
		for i, expr := range e.OutputExprs {
			values[i] = expr.EvaluateAggregate(groupBys, aggregates)
		}
		return tuple.NewTuple(values...), tuple.RID{}, true, nil
	}
	return nil, tuple.RID{}, false, nil
}
