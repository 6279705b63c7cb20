package columnar

import "strings"

// ValueType identifies the dynamic type carried by a Value.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeLong
	TypeString
)

// Value is the dynamic scalar exchanged across the column query surface.
// All integer column kinds widen to a single int64 representation; string
// columns surface the interned string itself. The zero Value is null.
//
// Values are comparable with ==: constructors zero the unused field, so
// equality over the struct matches semantic equality.
type Value struct {
	Type ValueType
	Long int64
	Str  string
}

// NewLongValue creates a numeric value.
func NewLongValue(v int64) Value {
	return Value{Type: TypeLong, Long: v}
}

// NewStringValue creates a string value.
func NewStringValue(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// NullValue creates a null value.
func NullValue() Value {
	return Value{}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// Compare defines a total order over values: null sorts before longs,
// longs before strings, natural order within a type.
func (v Value) Compare(other Value) int {
	if v.Type != other.Type {
		if v.Type < other.Type {
			return -1
		}
		return 1
	}
	switch v.Type {
	case TypeLong:
		return compareLong(v.Long, other.Long)
	case TypeString:
		return strings.Compare(v.Str, other.Str)
	}
	return 0
}

func compareLong(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
