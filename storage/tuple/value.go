package tuple

import (
	"fmt"
	"math"
)

// TypeID is the handful of column types this core needs to move rows
// through the executors and compare/hash keys in the extendible hash
// index. Not a real SQL type system — just enough to drive comparisons,
// arithmetic (for Update's Add), and aggregation.
type TypeID uint8

const (
	Invalid TypeID = iota
	Boolean
	Integer
	Varchar
)

// Value is a single typed, possibly-null column value.
type Value struct {
	Type TypeID
	Null bool

	intVal  int64
	boolVal bool
	strVal  string
}

// NewInteger builds a non-null Integer value.
func NewInteger(v int64) Value { return Value{Type: Integer, intVal: v} }

// NewVarchar builds a non-null Varchar value.
func NewVarchar(v string) Value { return Value{Type: Varchar, strVal: v} }

// NewBoolean builds a non-null Boolean value.
func NewBoolean(v bool) Value { return Value{Type: Boolean, boolVal: v} }

// NewNull builds a null value of the given type.
func NewNull(t TypeID) Value { return Value{Type: t, Null: true} }

// NegInfInteger and PosInfInteger back MIN/MAX aggregate initial values.
func NegInfInteger() Value { return NewInteger(math.MinInt64) }
func PosInfInteger() Value { return NewInteger(math.MaxInt64) }

func (v Value) AsInteger() int64  { return v.intVal }
func (v Value) AsBoolean() bool   { return v.boolVal }
func (v Value) AsVarchar() string { return v.strVal }

func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Type {
	case Integer:
		return fmt.Sprintf("%d", v.intVal)
	case Varchar:
		return v.strVal
	case Boolean:
		return fmt.Sprintf("%t", v.boolVal)
	default:
		return "?"
	}
}

// Compare returns -1/0/1 comparing v to other. Nulls sort before every
// non-null value and compare equal to each other — a fixed, total order so
// the hash directory and aggregate hash table never have to special-case
// ordering.
func (v Value) Compare(other Value) int {
	if v.Null || other.Null {
		switch {
		case v.Null && other.Null:
			return 0
		case v.Null:
			return -1
		default:
			return 1
		}
	}
	switch v.Type {
	case Integer:
		switch {
		case v.intVal < other.intVal:
			return -1
		case v.intVal > other.intVal:
			return 1
		default:
			return 0
		}
	case Varchar:
		switch {
		case v.strVal < other.strVal:
			return -1
		case v.strVal > other.strVal:
			return 1
		default:
			return 0
		}
	case Boolean:
		if v.boolVal == other.boolVal {
			return 0
		}
		if !v.boolVal {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (v Value) Equal(other Value) bool { return v.Compare(other) == 0 }

// Add returns a new Integer value holding v + other, used by Update's
// per-column Add delta (spec.md §4.6.4).
func (v Value) Add(other Value) Value {
	return NewInteger(v.intVal + other.intVal)
}

// HashKey returns a stable byte encoding suitable for hashing — used as
// the key fed to the extendible hash table's hash function and as the
// group-by key in the aggregate hash table.
func (v Value) HashKey() []byte {
	if v.Null {
		return []byte{0xff, byte(v.Type)}
	}
	switch v.Type {
	case Integer:
		b := make([]byte, 9)
		b[0] = byte(Integer)
		u := uint64(v.intVal)
		for i := 0; i < 8; i++ {
			b[1+i] = byte(u >> (8 * i))
		}
		return b
	case Varchar:
		return append([]byte{byte(Varchar)}, []byte(v.strVal)...)
	case Boolean:
		b := byte(0)
		if v.boolVal {
			b = 1
		}
		return []byte{byte(Boolean), b}
	default:
		return []byte{byte(Invalid)}
	}
}
