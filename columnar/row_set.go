package columnar

import (
	"fmt"
	"sort"

	roaring "github.com/RoaringBitmap/roaring/v2"
)

// rowSetMode selects the active representation of a RowSet.
type rowSetMode uint8

const (
	rowSetRange  rowSetMode = iota // contiguous [start, end)
	rowSetBitmap                   // roaring bitmap, ascending iteration
	rowSetIndex                    // explicit index vector, arbitrary order
)

// RowSet is the lazy index set a column is iterated through: an ordered,
// possibly sparse collection of logical row positions. Freshly built
// tables use the cheap range form; filtering narrows into a roaring
// bitmap; sorting produces an index vector carrying the permutation.
//
// A RowSet is not safe for concurrent mutation; callers serialize
// filter/sort calls targeting the same set.
type RowSet struct {
	mode    rowSetMode
	start   uint32
	end     uint32
	bitmap  *roaring.Bitmap
	indices []uint32
}

// NewRowSet creates a row set over the contiguous range [start, end).
func NewRowSet(start, end uint32) *RowSet {
	if end < start {
		end = start
	}
	return &RowSet{mode: rowSetRange, start: start, end: end}
}

// EmptyRowSet creates a row set containing no rows.
func EmptyRowSet() *RowSet {
	return NewRowSet(0, 0)
}

// SingleRowSet creates a row set containing exactly one row.
func SingleRowSet(row uint32) *RowSet {
	return NewRowSet(row, row+1)
}

// NewRowSetFromBitmap creates a row set over the given bitmap. The row set
// takes ownership of the bitmap.
func NewRowSetFromBitmap(bm *roaring.Bitmap) *RowSet {
	return &RowSet{mode: rowSetBitmap, bitmap: bm}
}

// NewRowSetFromIndices creates a row set over an explicit index vector,
// preserving its order. The row set takes ownership of the slice.
func NewRowSetFromIndices(indices []uint32) *RowSet {
	return &RowSet{mode: rowSetIndex, indices: indices}
}

// Size returns the number of rows in the set.
func (m *RowSet) Size() uint32 {
	switch m.mode {
	case rowSetRange:
		return m.end - m.start
	case rowSetBitmap:
		return uint32(m.bitmap.GetCardinality())
	default:
		return uint32(len(m.indices))
	}
}

// Get translates a logical row position to the physical offset stored at
// that position. Rows at or beyond Size are a contract violation and
// panic.
func (m *RowSet) Get(row uint32) uint32 {
	switch m.mode {
	case rowSetRange:
		if row >= m.end-m.start {
			panic(fmt.Sprintf("row %d out of range for row set of size %d", row, m.end-m.start))
		}
		return m.start + row
	case rowSetBitmap:
		v, err := m.bitmap.Select(row)
		if err != nil {
			panic(fmt.Sprintf("row %d out of range for row set of size %d", row, m.Size()))
		}
		return v
	default:
		if row >= uint32(len(m.indices)) {
			panic(fmt.Sprintf("row %d out of range for row set of size %d", row, len(m.indices)))
		}
		return m.indices[row]
	}
}

// IndexOf returns the logical row position holding the given physical
// offset, if the set contains it.
func (m *RowSet) IndexOf(physical uint32) (uint32, bool) {
	switch m.mode {
	case rowSetRange:
		if physical < m.start || physical >= m.end {
			return 0, false
		}
		return physical - m.start, true
	case rowSetBitmap:
		if !m.bitmap.Contains(physical) {
			return 0, false
		}
		return uint32(m.bitmap.Rank(physical) - 1), true
	default:
		for i, v := range m.indices {
			if v == physical {
				return uint32(i), true
			}
		}
		return 0, false
	}
}

// Contains reports whether the set holds the given physical offset.
func (m *RowSet) Contains(physical uint32) bool {
	switch m.mode {
	case rowSetRange:
		return physical >= m.start && physical < m.end
	case rowSetBitmap:
		return m.bitmap.Contains(physical)
	default:
		for _, v := range m.indices {
			if v == physical {
				return true
			}
		}
		return false
	}
}

// Slice returns the contents of the set, in order, as a fresh slice.
func (m *RowSet) Slice() []uint32 {
	switch m.mode {
	case rowSetRange:
		out := make([]uint32, 0, m.end-m.start)
		for r := m.start; r < m.end; r++ {
			out = append(out, r)
		}
		return out
	case rowSetBitmap:
		return m.bitmap.ToArray()
	default:
		out := make([]uint32, len(m.indices))
		copy(out, m.indices)
		return out
	}
}

// Copy returns an independent copy of the set.
func (m *RowSet) Copy() *RowSet {
	switch m.mode {
	case rowSetRange:
		return NewRowSet(m.start, m.end)
	case rowSetBitmap:
		return NewRowSetFromBitmap(m.bitmap.Clone())
	default:
		return NewRowSetFromIndices(m.Slice())
	}
}

// Intersect narrows the set in place to the rows also present in other,
// preserving the receiver's order.
func (m *RowSet) Intersect(other *RowSet) {
	switch m.mode {
	case rowSetRange:
		if other.mode == rowSetRange {
			start := max(m.start, other.start)
			end := min(m.end, other.end)
			if end < start {
				end = start
			}
			m.start, m.end = start, end
			return
		}
		bm := roaring.New()
		bm.AddRange(uint64(m.start), uint64(m.end))
		bm.And(other.asBitmap())
		*m = RowSet{mode: rowSetBitmap, bitmap: bm}
	case rowSetBitmap:
		m.bitmap.And(other.asBitmap())
	default:
		kept := m.indices[:0]
		for _, r := range m.indices {
			if other.Contains(r) {
				kept = append(kept, r)
			}
		}
		m.indices = kept
	}
}

// asBitmap returns a bitmap view of the set for intersection. The bitmap
// form returns its own bitmap and must only be read.
func (m *RowSet) asBitmap() *roaring.Bitmap {
	switch m.mode {
	case rowSetRange:
		bm := roaring.New()
		bm.AddRange(uint64(m.start), uint64(m.end))
		return bm
	case rowSetBitmap:
		return m.bitmap
	default:
		bm := roaring.New()
		bm.AddMany(m.indices)
		return bm
	}
}

// SelectRows composes the receiver with a selection of its logical rows:
// the result holds, in sel's order, the physical offset the receiver
// stores at each selected row.
func (m *RowSet) SelectRows(sel *RowSet) *RowSet {
	if m.mode == rowSetRange && m.start == 0 {
		// Identity map: logical rows are the physical offsets.
		return sel.Copy()
	}
	n := sel.Size()
	out := make([]uint32, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, m.Get(sel.Get(i)))
	}
	if m.mode != rowSetIndex && sel.mode != rowSetIndex {
		// Both sides iterate ascending, so the composition does too.
		bm := roaring.New()
		bm.AddMany(out)
		return NewRowSetFromBitmap(bm)
	}
	return NewRowSetFromIndices(out)
}

// FilterInto narrows out in place, keeping only the logical rows whose
// physical offset under the receiver satisfies keep. The receiver is the
// column's full-extent row set; out holds a subset of its logical rows.
func (m *RowSet) FilterInto(out *RowSet, keep func(physical uint32) bool) {
	switch out.mode {
	case rowSetRange:
		bm := roaring.New()
		for r := out.start; r < out.end; r++ {
			if keep(m.Get(r)) {
				bm.Add(r)
			}
		}
		*out = RowSet{mode: rowSetBitmap, bitmap: bm}
	case rowSetBitmap:
		kept := roaring.New()
		it := out.bitmap.Iterator()
		for it.HasNext() {
			r := it.Next()
			if keep(m.Get(r)) {
				kept.Add(r)
			}
		}
		out.bitmap = kept
	default:
		kept := out.indices[:0]
		for _, r := range out.indices {
			if keep(m.Get(r)) {
				kept = append(kept, r)
			}
		}
		out.indices = kept
	}
}

// StableSort stable-sorts the logical rows in idx by comparing their
// physical offsets under the receiver with less. Rows comparing equal keep
// their relative order.
func (m *RowSet) StableSort(idx []uint32, less func(a, b uint32) bool) {
	sort.SliceStable(idx, func(i, j int) bool {
		return less(m.Get(idx[i]), m.Get(idx[j]))
	})
}
