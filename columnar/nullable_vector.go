package columnar

import (
	roaring "github.com/RoaringBitmap/roaring/v2"
)

// integral covers the fixed-width kinds a column can store. StringID
// satisfies it through ~uint32, so string columns reuse the same storage.
type integral interface {
	~int32 | ~uint32 | ~int64
}

// NullableVector is the sparse typed storage backing one column: an
// append-only sequence of optional values addressed by physical offset.
// Values live in a dense slice; a roaring bitmap records which offsets are
// present. The bitmap is only materialized once the first null is
// appended, so fully dense vectors carry no presence overhead at all.
type NullableVector[T integral] struct {
	values  []T
	present *roaring.Bitmap // nil while no null has ever been appended
}

// NewNullableVector creates an empty vector.
func NewNullableVector[T integral]() *NullableVector[T] {
	return &NullableVector[T]{}
}

// Append appends a present value.
func (v *NullableVector[T]) Append(val T) {
	if v.present != nil {
		v.present.Add(uint32(len(v.values)))
	}
	v.values = append(v.values, val)
}

// AppendNull appends an absent slot. The slot holds a zero placeholder so
// present values keep O(1) addressing by physical offset.
func (v *NullableVector[T]) AppendNull() {
	if v.present == nil {
		v.present = roaring.New()
		v.present.AddRange(0, uint64(len(v.values)))
	}
	var zero T
	v.values = append(v.values, zero)
}

// Get returns the value at the given physical offset and whether it is
// present.
func (v *NullableVector[T]) Get(idx uint32) (T, bool) {
	if v.present == nil {
		return v.values[idx], true
	}
	if !v.present.Contains(idx) {
		var zero T
		return zero, false
	}
	return v.values[idx], true
}

// GetNonNull returns the value at the given physical offset, skipping the
// presence check. Callers use this only on columns declared non-null; on
// data that violates that declaration it returns the zero placeholder
// rather than failing.
func (v *NullableVector[T]) GetNonNull(idx uint32) T {
	return v.values[idx]
}

// Len returns the number of slots, present or not.
func (v *NullableVector[T]) Len() uint32 {
	return uint32(len(v.values))
}
