package columnar

import (
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// FilterOp represents the possible filter operations on a column.
type FilterOp uint8

const (
	FilterOpEq FilterOp = iota
	FilterOpNe
	FilterOpGt
	FilterOpLt
	FilterOpGe
	FilterOpLe
	FilterOpIsNull
	FilterOpIsNotNull
	FilterOpLike
)

// Constraint pairs a column with a filter operation and comparison value.
type Constraint struct {
	ColIdx uint32
	Op     FilterOp
	Value  Value
}

// Order pairs a column with a sort direction.
type Order struct {
	ColIdx uint32
	Desc   bool
}

// JoinKey identifies a column usable as an equality join probe.
type JoinKey struct {
	ColIdx uint32
}

// Flags declare properties of the data in a column. They are asserted by
// the caller at construction and used to pick faster evaluation
// strategies; they are never verified against the data.
const (
	FlagNone uint32 = 0

	// FlagSorted declares the column's values non-decreasing across its
	// full logical extent, enabling binary-search filtering.
	FlagSorted uint32 = 1 << 0

	// FlagNonNull declares that no stored slot is absent, letting
	// accessors skip the presence check. Setting it on data that does
	// contain nulls silently reads the zero placeholder instead; the flag
	// trades that unchecked invariant for not paying a presence test per
	// row.
	FlagNonNull uint32 = 1 << 1
)

// ColumnKind identifies the physical representation a column holds.
type ColumnKind uint8

const (
	KindInt32 ColumnKind = iota
	KindUint32
	KindInt64
	KindString

	// KindID is generated on the fly: the value of a row is its physical
	// offset, with no backing storage.
	KindID
)

// Column is a named, strongly typed list of data. It holds non-owning
// references to its storage, string pool and row set; the owning table
// governs their lifetime. Columns are immutable value-wise after
// construction, so concurrent read-only use is safe.
type Column struct {
	name   string
	kind   ColumnKind
	flags  uint32
	table  *Table // back-reference, identity and logging only
	colIdx uint32
	rowSet *RowSet
	data   columnData
}

func newColumn(name string, kind ColumnKind, flags uint32, table *Table, colIdx uint32, rowSet *RowSet, data columnData) *Column {
	return &Column{
		name:   name,
		kind:   kind,
		flags:  flags,
		table:  table,
		colIdx: colIdx,
		rowSet: rowSet,
		data:   data,
	}
}

// Reparent creates a column backed by the same data as c but bound to a
// different table and row set. Used when a table is filtered or
// projected.
func (c *Column) Reparent(table *Table, colIdx uint32, rowSet *RowSet) *Column {
	return newColumn(c.name, c.kind, c.flags, table, colIdx, rowSet, c.data)
}

// Name returns the column's name.
func (c *Column) Name() string { return c.name }

// IsID reports whether this is an identity column.
func (c *Column) IsID() bool { return c.kind == KindID }

// IsNullable reports whether the column may contain absent values.
func (c *Column) IsNullable() bool { return c.flags&FlagNonNull == 0 }

// IsSorted reports whether the column declares its values non-decreasing.
func (c *Column) IsSorted() bool { return c.flags&FlagSorted != 0 }

// RowSet returns the index set the column is iterated through.
func (c *Column) RowSet() *RowSet { return c.rowSet }

// Type returns the declared logical type of the column: long for all
// integer kinds and identity columns, string for string columns.
func (c *Column) Type() ValueType {
	if c.kind == KindString {
		return TypeString
	}
	return TypeLong
}

// Get returns the value of the column at the given logical row, or null.
// Rows at or beyond the row set's size panic.
func (c *Column) Get(row uint32) Value {
	return c.data.getAtIdx(c, c.rowSet.Get(row))
}

// IndexOf returns the first logical row containing the given value.
// Identity columns translate the value through the row set directly
// instead of scanning; a non-numeric query on an identity column is
// simply not found.
func (c *Column) IndexOf(value Value) (uint32, bool) {
	if c.kind == KindID {
		if value.Type != TypeLong || value.Long < 0 || value.Long > maxRowIndex {
			return 0, false
		}
		return c.rowSet.IndexOf(uint32(value.Long))
	}
	for i, n := uint32(0), c.rowSet.Size(); i < n; i++ {
		if c.Get(i) == value {
			return i, true
		}
	}
	return 0, false
}

const maxRowIndex = int64(^uint32(0))

// FilterInto narrows rs in place to the rows where this column satisfies
// the given operation. An equality constraint on an identity column
// resolves to at most one row via IndexOf; a sorted column with a
// type-matching value binary-searches the contiguous satisfying range;
// everything else scans.
func (c *Column) FilterInto(op FilterOp, value Value, rs *RowSet) {
	if c.IsID() && op == FilterOpEq {
		if row, ok := c.IndexOf(value); ok {
			rs.Intersect(SingleRowSet(row))
		} else {
			rs.Intersect(EmptyRowSet())
		}
		return
	}

	if c.IsSorted() && value.Type == c.Type() {
		n := c.rowSet.Size()
		switch op {
		case FilterOpEq:
			rs.Intersect(NewRowSet(c.lowerBound(value), c.upperBound(value)))
			return
		case FilterOpLe:
			rs.Intersect(NewRowSet(0, c.upperBound(value)))
			return
		case FilterOpLt:
			rs.Intersect(NewRowSet(0, c.lowerBound(value)))
			return
		case FilterOpGe:
			rs.Intersect(NewRowSet(c.lowerBound(value), n))
			return
		case FilterOpGt:
			rs.Intersect(NewRowSet(c.upperBound(value), n))
			return
		}
		// ne, null tests and like never use the sorted path.
	}

	c.data.filterSlow(c, op, value, rs)
}

// lowerBound returns the first logical row whose value is >= value,
// assuming the column is sorted across its full extent.
func (c *Column) lowerBound(value Value) uint32 {
	n := int(c.rowSet.Size())
	return uint32(sort.Search(n, func(i int) bool {
		return c.Get(uint32(i)).Compare(value) >= 0
	}))
}

// upperBound returns the first logical row whose value is > value.
func (c *Column) upperBound(value Value) uint32 {
	n := int(c.rowSet.Size())
	return uint32(sort.Search(n, func(i int) bool {
		return c.Get(uint32(i)).Compare(value) > 0
	}))
}

// StableSort reorders idx, a slice of logical rows, into ascending or
// descending order by this column's value. Rows with equal values keep
// their relative order, so multi-column ORDER BY composes as repeated
// passes from least- to most-significant column.
func (c *Column) StableSort(desc bool, idx []uint32) {
	c.data.stableSort(c, desc, idx)
}

// Constraint builders, one per filter operation.

func (c *Column) Eq(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpEq, Value: value}
}
func (c *Column) Ne(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpNe, Value: value}
}
func (c *Column) Gt(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpGt, Value: value}
}
func (c *Column) Lt(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpLt, Value: value}
}
func (c *Column) Ge(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpGe, Value: value}
}
func (c *Column) Le(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpLe, Value: value}
}
func (c *Column) IsNullConstraint() Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpIsNull}
}
func (c *Column) IsNotNullConstraint() Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpIsNotNull}
}
func (c *Column) Like(value Value) Constraint {
	return Constraint{ColIdx: c.colIdx, Op: FilterOpLike, Value: value}
}

// Ascending returns an ascending Order for this column.
func (c *Column) Ascending() Order { return Order{ColIdx: c.colIdx} }

// Descending returns a descending Order for this column.
func (c *Column) Descending() Order { return Order{ColIdx: c.colIdx, Desc: true} }

// JoinKey returns the JoinKey for this column.
func (c *Column) JoinKey() JoinKey { return JoinKey{ColIdx: c.colIdx} }

func (c *Column) logger() log.Logger {
	if c.table != nil && c.table.logger != nil {
		return c.table.logger
	}
	return log.NewNopLogger()
}

// columnData is the closed per-kind dispatch: exactly one variant exists
// per column kind, each carrying its own typed storage reference, so a
// kind/storage mismatch cannot be constructed.
type columnData interface {
	getAtIdx(c *Column, idx uint32) Value
	filterSlow(c *Column, op FilterOp, value Value, rs *RowSet)
	stableSort(c *Column, desc bool, idx []uint32)
}

type int32Data struct{ vec *NullableVector[int32] }
type uint32Data struct{ vec *NullableVector[uint32] }
type int64Data struct{ vec *NullableVector[int64] }

// stringData stores interned string ids densely; nullness is carried by
// the id, not by the vector.
type stringData struct {
	vec  *NullableVector[StringID]
	pool *StringPool
}

type idData struct{}

func (d int32Data) getAtIdx(c *Column, idx uint32) Value {
	return getLongAtIdx(c, d.vec, idx)
}
func (d uint32Data) getAtIdx(c *Column, idx uint32) Value {
	return getLongAtIdx(c, d.vec, idx)
}
func (d int64Data) getAtIdx(c *Column, idx uint32) Value {
	return getLongAtIdx(c, d.vec, idx)
}

func (d stringData) getAtIdx(c *Column, idx uint32) Value {
	s, ok := d.pool.Get(d.vec.GetNonNull(idx))
	if !ok {
		return NullValue()
	}
	return NewStringValue(s)
}

func (d idData) getAtIdx(_ *Column, idx uint32) Value {
	return NewLongValue(int64(idx))
}

func getLongAtIdx[T integral](c *Column, vec *NullableVector[T], idx uint32) Value {
	if !c.IsNullable() {
		return NewLongValue(int64(vec.GetNonNull(idx)))
	}
	v, ok := vec.Get(idx)
	if !ok {
		return NullValue()
	}
	return NewLongValue(int64(v))
}

func (d int32Data) filterSlow(c *Column, op FilterOp, value Value, rs *RowSet) {
	filterLongSlow(c, d.vec, op, value, rs)
}
func (d uint32Data) filterSlow(c *Column, op FilterOp, value Value, rs *RowSet) {
	filterLongSlow(c, d.vec, op, value, rs)
}
func (d int64Data) filterSlow(c *Column, op FilterOp, value Value, rs *RowSet) {
	filterLongSlow(c, d.vec, op, value, rs)
}

// filterLongSlow is the full-scan path for the integer kinds. A null slot
// never satisfies a comparison; null tests check presence, not value, and
// short-circuit on columns declared non-null.
func filterLongSlow[T integral](c *Column, vec *NullableVector[T], op FilterOp, value Value, rs *RowSet) {
	switch op {
	case FilterOpIsNull:
		if !c.IsNullable() {
			rs.Intersect(EmptyRowSet())
			return
		}
		c.rowSet.FilterInto(rs, func(idx uint32) bool {
			_, ok := vec.Get(idx)
			return !ok
		})
		return
	case FilterOpIsNotNull:
		if !c.IsNullable() {
			return // every row matches
		}
		c.rowSet.FilterInto(rs, func(idx uint32) bool {
			_, ok := vec.Get(idx)
			return ok
		})
		return
	case FilterOpLike:
		rs.Intersect(EmptyRowSet())
		return
	}

	if value.Type != TypeLong {
		// A mismatched literal matches nothing.
		rs.Intersect(EmptyRowSet())
		return
	}

	long := value.Long
	matches := matchOp(op)
	if c.IsNullable() {
		c.rowSet.FilterInto(rs, func(idx uint32) bool {
			v, ok := vec.Get(idx)
			if !ok {
				return false
			}
			return matches(compareLong(int64(v), long))
		})
		return
	}
	c.rowSet.FilterInto(rs, func(idx uint32) bool {
		return matches(compareLong(int64(vec.GetNonNull(idx)), long))
	})
}

func (d stringData) filterSlow(c *Column, op FilterOp, value Value, rs *RowSet) {
	switch op {
	case FilterOpIsNull:
		c.rowSet.FilterInto(rs, func(idx uint32) bool {
			_, ok := d.pool.Get(d.vec.GetNonNull(idx))
			return !ok
		})
		return
	case FilterOpIsNotNull:
		c.rowSet.FilterInto(rs, func(idx uint32) bool {
			_, ok := d.pool.Get(d.vec.GetNonNull(idx))
			return ok
		})
		return
	case FilterOpLike:
		// TODO(coldb): delegate LIKE to a glob matcher instead of
		// accepting it as a no-op.
		level.Warn(c.logger()).Log("msg", "ignoring LIKE constraint on string column", "column", c.name)
		return
	}

	if value.Type != TypeString {
		rs.Intersect(EmptyRowSet())
		return
	}

	str := value.Str
	matches := matchOp(op)
	c.rowSet.FilterInto(rs, func(idx uint32) bool {
		s, ok := d.pool.Get(d.vec.GetNonNull(idx))
		if !ok {
			return false
		}
		return matches(strings.Compare(s, str))
	})
}

func (d idData) filterSlow(c *Column, op FilterOp, value Value, rs *RowSet) {
	switch op {
	case FilterOpIsNull:
		rs.Intersect(EmptyRowSet())
		return
	case FilterOpIsNotNull:
		return
	case FilterOpLike:
		rs.Intersect(EmptyRowSet())
		return
	}

	if value.Type != TypeLong {
		rs.Intersect(EmptyRowSet())
		return
	}

	long := value.Long
	matches := matchOp(op)
	c.rowSet.FilterInto(rs, func(idx uint32) bool {
		return matches(compareLong(int64(idx), long))
	})
}

// matchOp maps a comparison operation to a predicate over Compare-style
// results.
func matchOp(op FilterOp) func(cmp int) bool {
	switch op {
	case FilterOpEq:
		return func(cmp int) bool { return cmp == 0 }
	case FilterOpNe:
		return func(cmp int) bool { return cmp != 0 }
	case FilterOpGt:
		return func(cmp int) bool { return cmp > 0 }
	case FilterOpLt:
		return func(cmp int) bool { return cmp < 0 }
	case FilterOpGe:
		return func(cmp int) bool { return cmp >= 0 }
	default: // FilterOpLe
		return func(cmp int) bool { return cmp <= 0 }
	}
}

func (d int32Data) stableSort(c *Column, desc bool, idx []uint32) {
	stableSortLong(c, d.vec, desc, idx)
}
func (d uint32Data) stableSort(c *Column, desc bool, idx []uint32) {
	stableSortLong(c, d.vec, desc, idx)
}
func (d int64Data) stableSort(c *Column, desc bool, idx []uint32) {
	stableSortLong(c, d.vec, desc, idx)
}

// stableSortLong sorts by stored value with null ordered as the minimum.
// Descending reverses the operand order, not the null policy, so null
// placement stays deterministic.
func stableSortLong[T integral](c *Column, vec *NullableVector[T], desc bool, idx []uint32) {
	if c.IsNullable() {
		less := func(a, b uint32) bool {
			av, aok := vec.Get(a)
			bv, bok := vec.Get(b)
			if !aok || !bok {
				return !aok && bok
			}
			return av < bv
		}
		c.rowSet.StableSort(idx, directed(less, desc))
		return
	}
	less := func(a, b uint32) bool {
		return vec.GetNonNull(a) < vec.GetNonNull(b)
	}
	c.rowSet.StableSort(idx, directed(less, desc))
}

func (d stringData) stableSort(c *Column, desc bool, idx []uint32) {
	less := func(a, b uint32) bool {
		as, aok := d.pool.Get(d.vec.GetNonNull(a))
		bs, bok := d.pool.Get(d.vec.GetNonNull(b))
		if !aok || !bok {
			return !aok && bok
		}
		return as < bs
	}
	c.rowSet.StableSort(idx, directed(less, desc))
}

func (d idData) stableSort(c *Column, desc bool, idx []uint32) {
	less := func(a, b uint32) bool { return a < b }
	c.rowSet.StableSort(idx, directed(less, desc))
}

func directed(less func(a, b uint32) bool, desc bool) func(a, b uint32) bool {
	if !desc {
		return less
	}
	return func(a, b uint32) bool { return less(b, a) }
}
