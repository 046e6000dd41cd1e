package tuple

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Tuple is a row: one Value per column of some Schema, plus the RID it
// lives at once inserted (InvalidRID before that).
type Tuple struct {
	RID    RID
	Values []Value
}

// NewTuple builds a Tuple not yet assigned a RID.
func NewTuple(values ...Value) *Tuple {
	return &Tuple{RID: InvalidRID, Values: values}
}

// GetValue returns the value at columnIndex.
func (t *Tuple) GetValue(columnIndex int) Value {
	return t.Values[columnIndex]
}

// Project builds a new Tuple containing only the given column indices, in
// order — the shape every operator's output_schema-driven projection uses.
func (t *Tuple) Project(indices []int) *Tuple {
	out := make([]Value, len(indices))
	for i, idx := range indices {
		out[i] = t.Values[idx]
	}
	return &Tuple{RID: t.RID, Values: out}
}

// Size returns the fixed serialized width of a row of this schema: a
// one-byte null flag per column, then each column's fixed width in order.
func Size(schema *Schema) int {
	n := len(schema.Columns)
	total := n // null flags
	for _, c := range schema.Columns {
		total += c.FixedLength()
	}
	return total
}

// Serialize writes t into a fixed-width record matching schema. Varchar
// values longer than their column's declared length are truncated —
// there is no variable-length overflow area in this core.
func (t *Tuple) Serialize(schema *Schema) []byte {
	buf := make([]byte, Size(schema))
	n := len(schema.Columns)
	pos := n
	for i, col := range schema.Columns {
		v := t.Values[i]
		if v.Null {
			buf[i] = 1
			pos += col.FixedLength()
			continue
		}
		switch col.Type {
		case Integer:
			binary.LittleEndian.PutUint64(buf[pos:], uint64(v.AsInteger()))
		case Boolean:
			if v.AsBoolean() {
				buf[pos] = 1
			}
		case Varchar:
			s := v.AsVarchar()
			if len(s) > col.Length {
				s = s[:col.Length]
			}
			copy(buf[pos:pos+col.Length], s)
		}
		pos += col.FixedLength()
	}
	return buf
}

// Deserialize is the inverse of Serialize.
func Deserialize(schema *Schema, buf []byte) (*Tuple, error) {
	if len(buf) < Size(schema) {
		return nil, errors.Errorf("tuple: buffer too small: have %d want %d", len(buf), Size(schema))
	}
	n := len(schema.Columns)
	values := make([]Value, n)
	pos := n
	for i, col := range schema.Columns {
		if buf[i] == 1 {
			values[i] = NewNull(col.Type)
			pos += col.FixedLength()
			continue
		}
		switch col.Type {
		case Integer:
			values[i] = NewInteger(int64(binary.LittleEndian.Uint64(buf[pos:])))
		case Boolean:
			values[i] = NewBoolean(buf[pos] == 1)
		case Varchar:
			end := pos + col.Length
			raw := buf[pos:end]
			// trim trailing zero padding
			n := len(raw)
			for n > 0 && raw[n-1] == 0 {
				n--
			}
			values[i] = NewVarchar(string(raw[:n]))
		}
		pos += col.FixedLength()
	}
	return &Tuple{RID: InvalidRID, Values: values}, nil
}
