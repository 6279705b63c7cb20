package columnar

import (
	"github.com/go-kit/log"
)

// Table owns a set of columns over a shared row set. It exists to
// construct columns, to re-project them onto narrowed or reordered row
// sets, and to drive multi-column filtering and sorting; all per-column
// semantics live on Column.
type Table struct {
	logger  log.Logger
	pool    *StringPool
	rowSet  *RowSet
	columns []*Column
}

// NewTable creates a table over rowCount physical rows. Every added
// column must hold exactly rowCount slots; that contract is the caller's,
// not checked here.
func NewTable(pool *StringPool, rowCount uint32) *Table {
	return &Table{
		logger: log.NewNopLogger(),
		pool:   pool,
		rowSet: NewRowSet(0, rowCount),
	}
}

// SetLogger installs a logger for accepted-but-inert operation warnings.
func (t *Table) SetLogger(l log.Logger) {
	t.logger = l
}

// RowCount returns the number of rows visible through the table's row set.
func (t *Table) RowCount() uint32 { return t.rowSet.Size() }

// RowSet returns the table's row set.
func (t *Table) RowSet() *RowSet { return t.rowSet }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() uint32 { return uint32(len(t.columns)) }

// Column returns the column at the given index.
func (t *Table) Column(idx uint32) *Column { return t.columns[idx] }

// ColumnByName returns the first column with the given name, or nil.
func (t *Table) ColumnByName(name string) *Column {
	for _, c := range t.columns {
		if c.name == name {
			return c
		}
	}
	return nil
}

// AddInt32Column adds a column backed by a 32-bit signed vector.
func (t *Table) AddInt32Column(name string, vec *NullableVector[int32], flags uint32) *Column {
	return t.add(newColumn(name, KindInt32, flags, t, t.ColumnCount(), t.rowSet, int32Data{vec: vec}))
}

// AddUint32Column adds a column backed by a 32-bit unsigned vector.
func (t *Table) AddUint32Column(name string, vec *NullableVector[uint32], flags uint32) *Column {
	return t.add(newColumn(name, KindUint32, flags, t, t.ColumnCount(), t.rowSet, uint32Data{vec: vec}))
}

// AddInt64Column adds a column backed by a 64-bit signed vector.
func (t *Table) AddInt64Column(name string, vec *NullableVector[int64], flags uint32) *Column {
	return t.add(newColumn(name, KindInt64, flags, t, t.ColumnCount(), t.rowSet, int64Data{vec: vec}))
}

// AddStringColumn adds a column of interned string ids resolved through
// the table's pool. Nullness is carried by NullStringID, so FlagNonNull
// has no effect on string access.
func (t *Table) AddStringColumn(name string, vec *NullableVector[StringID], flags uint32) *Column {
	return t.add(newColumn(name, KindString, flags, t, t.ColumnCount(), t.rowSet, stringData{vec: vec, pool: t.pool}))
}

// AddIDColumn adds an identity column: the value of a row is its physical
// offset. Identity columns are sorted and non-null by construction.
func (t *Table) AddIDColumn(name string) *Column {
	return t.add(newColumn(name, KindID, FlagSorted|FlagNonNull, t, t.ColumnCount(), t.rowSet, idData{}))
}

func (t *Table) add(c *Column) *Column {
	t.columns = append(t.columns, c)
	return c
}

// Filter returns a table narrowed to the rows satisfying every
// constraint, sharing all column storage with the receiver.
func (t *Table) Filter(cs ...Constraint) *Table {
	// Constraints narrow a set of logical rows, which only then composes
	// with the table's own row set into physical offsets.
	rs := NewRowSet(0, t.RowCount())
	for _, cst := range cs {
		t.columns[cst.ColIdx].FilterInto(cst.Op, cst.Value, rs)
	}
	return t.withRowSet(t.rowSet.SelectRows(rs), false)
}

// Sort returns a table reordered by the given orders, most-significant
// first. Built as repeated stable sorts from the least-significant order
// up, so earlier orders dominate and ties preserve input order.
func (t *Table) Sort(orders ...Order) *Table {
	idx := make([]uint32, t.rowSet.Size())
	for i := range idx {
		idx[i] = uint32(i)
	}
	for i := len(orders) - 1; i >= 0; i-- {
		t.columns[orders[i].ColIdx].StableSort(orders[i].Desc, idx)
	}
	physical := make([]uint32, len(idx))
	for j, r := range idx {
		physical[j] = t.rowSet.Get(r)
	}
	// The permutation invalidates any declared sort order.
	return t.withRowSet(NewRowSetFromIndices(physical), true)
}

func (t *Table) withRowSet(rs *RowSet, clearSorted bool) *Table {
	nt := &Table{
		logger: t.logger,
		pool:   t.pool,
		rowSet: rs,
	}
	for _, c := range t.columns {
		flags := c.flags
		if clearSorted {
			flags &^= FlagSorted
		}
		nt.columns = append(nt.columns, newColumn(c.name, c.kind, flags, nt, c.colIdx, rs, c.data))
	}
	return nt
}
