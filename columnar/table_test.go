package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// eventTable builds a three-column table: identity "id", int64 "ts" and
// string "name".
func eventTable() (*Table, *Column, *Column, *Column) {
	pool := NewStringPool()

	ts := NewNullableVector[int64]()
	for _, v := range []int64{30, 10, 20, 10} {
		ts.Append(v)
	}

	name := NewNullableVector[StringID]()
	for _, s := range []string{"c", "a", "b", "a"} {
		name.Append(pool.Intern(s))
	}

	tbl := NewTable(pool, 4)
	idCol := tbl.AddIDColumn("id")
	tsCol := tbl.AddInt64Column("ts", ts, FlagNonNull)
	nameCol := tbl.AddStringColumn("name", name, FlagNone)
	return tbl, idCol, tsCol, nameCol
}

func TestTableFilter(t *testing.T) {
	t.Run("SingleConstraint", func(t *testing.T) {
		tbl, _, tsCol, _ := eventTable()

		out := tbl.Filter(tsCol.Ge(NewLongValue(20)))
		require.Equal(t, uint32(2), out.RowCount())
		require.Equal(t, NewStringValue("c"), out.ColumnByName("name").Get(0))
		require.Equal(t, NewStringValue("b"), out.ColumnByName("name").Get(1))
	})

	t.Run("Conjunction", func(t *testing.T) {
		tbl, idCol, tsCol, nameCol := eventTable()

		out := tbl.Filter(tsCol.Le(NewLongValue(10)), nameCol.Eq(NewStringValue("a")))
		require.Equal(t, uint32(2), out.RowCount())
		require.Equal(t, NewLongValue(1), out.Column(idCol.colIdx).Get(0))
		require.Equal(t, NewLongValue(3), out.Column(idCol.colIdx).Get(1))
	})

	t.Run("IDEquality", func(t *testing.T) {
		tbl, idCol, _, nameCol := eventTable()

		out := tbl.Filter(idCol.Eq(NewLongValue(2)))
		require.Equal(t, uint32(1), out.RowCount())
		require.Equal(t, NewStringValue("b"), out.Column(nameCol.colIdx).Get(0))

		require.Equal(t, uint32(0), tbl.Filter(idCol.Eq(NewLongValue(99))).RowCount())
	})

	t.Run("SourceUnchanged", func(t *testing.T) {
		tbl, _, tsCol, _ := eventTable()

		tbl.Filter(tsCol.Eq(NewLongValue(10)))
		require.Equal(t, uint32(4), tbl.RowCount())
	})

	t.Run("FilterOfFilter", func(t *testing.T) {
		tbl, idCol, tsCol, nameCol := eventTable()

		narrowed := tbl.Filter(tsCol.Le(NewLongValue(20)))
		out := narrowed.Filter(narrowed.Column(nameCol.colIdx).Eq(NewStringValue("a")))
		require.Equal(t, uint32(2), out.RowCount())
		require.Equal(t, NewLongValue(1), out.Column(idCol.colIdx).Get(0))
	})
}

func TestTableSort(t *testing.T) {
	t.Run("SingleDescending", func(t *testing.T) {
		tbl, idCol, tsCol, _ := eventTable()

		out := tbl.Sort(tsCol.Descending())
		got := make([]int64, 0, out.RowCount())
		for i := uint32(0); i < out.RowCount(); i++ {
			got = append(got, out.Column(idCol.colIdx).Get(i).Long)
		}
		// ts values 30, 20, then the tied 10s in input order.
		require.Equal(t, []int64{0, 2, 1, 3}, got)
	})

	t.Run("MultiColumn", func(t *testing.T) {
		tbl, idCol, tsCol, nameCol := eventTable()

		// Most-significant order first: name ascending, then ts
		// descending among equal names.
		out := tbl.Sort(nameCol.Ascending(), tsCol.Descending())
		got := make([]int64, 0, out.RowCount())
		for i := uint32(0); i < out.RowCount(); i++ {
			got = append(got, out.Column(idCol.colIdx).Get(i).Long)
		}
		// (a,10,r1) and (a,10,r3) tie fully and keep input order.
		require.Equal(t, []int64{1, 3, 2, 0}, got)
	})

	t.Run("ClearsSortedFlag", func(t *testing.T) {
		vec := NewNullableVector[int64]()
		for _, v := range []int64{1, 2, 3, 4} {
			vec.Append(v)
		}
		tbl := NewTable(NewStringPool(), 4)
		col := tbl.AddInt64Column("v", vec, FlagSorted|FlagNonNull)

		out := tbl.Sort(col.Descending())
		outCol := out.Column(0)
		require.False(t, outCol.IsSorted())

		// With the flag cleared the filter scans the permuted extent and
		// finds the values at their new logical rows.
		require.Equal(t, []uint32{2, 3}, filterRows(outCol, FilterOpLe, NewLongValue(2)))
	})

	t.Run("SortOfFilter", func(t *testing.T) {
		tbl, idCol, tsCol, nameCol := eventTable()

		out := tbl.Filter(nameCol.Ne(NewStringValue("c"))).Sort(tsCol.Ascending())
		require.Equal(t, uint32(3), out.RowCount())
		require.Equal(t, NewLongValue(1), out.Column(idCol.colIdx).Get(0))
		require.Equal(t, NewLongValue(3), out.Column(idCol.colIdx).Get(1))
		require.Equal(t, NewLongValue(2), out.Column(idCol.colIdx).Get(2))
	})
}

func TestTableIntrospection(t *testing.T) {
	tbl, idCol, tsCol, nameCol := eventTable()

	require.Equal(t, uint32(3), tbl.ColumnCount())
	require.Same(t, tsCol, tbl.ColumnByName("ts"))
	require.Nil(t, tbl.ColumnByName("missing"))
	require.True(t, idCol.IsID())
	require.True(t, idCol.IsSorted())
	require.False(t, nameCol.IsID())
	require.Equal(t, TypeLong, idCol.Type())
}
