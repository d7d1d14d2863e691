// Package bitmatrix provides a dense two dimensional boolean relation.
//
// Rows are stored as go-bitfield Bitlist64 values sized to a shared column
// capacity, so adding columns only reallocates when the capacity is exceeded.
// The number of set bits is maintained incrementally on every mutation.
package bitmatrix

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// BitMatrix is a rows x cols boolean matrix.
type BitMatrix struct {
	rows   []*bitfield.Bitlist64
	cols   int
	colCap int
	count  int
}

// New creates a zeroed matrix with the given dimensions.
func New(rows, cols int) *BitMatrix {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	m := &BitMatrix{cols: cols, colCap: cols}
	m.rows = make([]*bitfield.Bitlist64, rows)
	for i := range m.rows {
		m.rows[i] = newRow(m.colCap)
	}
	return m
}

func newRow(capacity int) *bitfield.Bitlist64 {
	// A zero-length bitlist is valid but cannot hold bits; keep one word around.
	if capacity == 0 {
		capacity = 1
	}
	return bitfield.NewBitlist64(uint64(capacity))
}

// Rows returns the number of rows.
func (m *BitMatrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *BitMatrix) Cols() int { return m.cols }

// Count returns the number of set bits in the whole matrix.
func (m *BitMatrix) Count() int { return m.count }

func (m *BitMatrix) inRange(row, col int) bool {
	return row >= 0 && row < len(m.rows) && col >= 0 && col < m.cols
}

// Get reports the value at (row, col). Out of range positions read as false.
func (m *BitMatrix) Get(row, col int) bool {
	if !m.inRange(row, col) {
		return false
	}
	return m.rows[row].BitAt(uint64(col))
}

// Set stores value at (row, col). It reports false when the position is out of range.
func (m *BitMatrix) Set(row, col int, value bool) bool {
	if !m.inRange(row, col) {
		return false
	}
	r := m.rows[row]
	old := r.BitAt(uint64(col))
	if old == value {
		return true
	}
	r.SetBitAt(uint64(col), value)
	if value {
		m.count++
	} else {
		m.count--
	}
	return true
}

// Toggle flips the value at (row, col) and returns the new value.
func (m *BitMatrix) Toggle(row, col int) bool {
	v := !m.Get(row, col)
	m.Set(row, col, v)
	return v
}

// Clear resets every bit to false while keeping the dimensions.
func (m *BitMatrix) Clear() {
	for i := range m.rows {
		m.rows[i] = newRow(m.colCap)
	}
	m.count = 0
}

// Resize changes the dimensions of the matrix. Bits inside the retained area
// keep their values; everything else reads as false.
func (m *BitMatrix) Resize(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}

	if rows < len(m.rows) {
		for _, r := range m.rows[rows:] {
			m.count -= m.rowBits(r)
		}
		m.rows = m.rows[:rows]
	}

	if cols < m.cols {
		for _, r := range m.rows {
			for c := cols; c < m.cols; c++ {
				if r.BitAt(uint64(c)) {
					r.SetBitAt(uint64(c), false)
					m.count--
				}
			}
		}
	}

	if cols > m.colCap {
		newCap := m.colCap * 2
		if newCap < cols {
			newCap = cols
		}
		for i, r := range m.rows {
			grown := newRow(newCap)
			for c := 0; c < m.cols && c < cols; c++ {
				if r.BitAt(uint64(c)) {
					grown.SetBitAt(uint64(c), true)
				}
			}
			m.rows[i] = grown
		}
		m.colCap = newCap
	}
	m.cols = cols

	for len(m.rows) < rows {
		m.rows = append(m.rows, newRow(m.colCap))
	}
}

// rowBits counts the bits of r that fall inside the visible columns.
func (m *BitMatrix) rowBits(r *bitfield.Bitlist64) int {
	return int(r.Count())
}

// RowCount returns the number of set bits in a row.
func (m *BitMatrix) RowCount(row int) int {
	if row < 0 || row >= len(m.rows) {
		return 0
	}
	return m.rowBits(m.rows[row])
}

// ColumnCount returns the number of set bits in a column.
func (m *BitMatrix) ColumnCount(col int) int {
	if col < 0 || col >= m.cols {
		return 0
	}
	n := 0
	for _, r := range m.rows {
		if r.BitAt(uint64(col)) {
			n++
		}
	}
	return n
}

// Row returns a read-only view of a row. The view shares storage with the matrix.
func (m *BitMatrix) Row(row int) RowView {
	if row < 0 || row >= len(m.rows) {
		return RowView{}
	}
	return RowView{bits: m.rows[row], cols: m.cols}
}

// Column returns a read-only view of a column.
func (m *BitMatrix) Column(col int) ColumnView {
	return ColumnView{m: m, col: col}
}

// Equal reports whether both matrices have the same dimensions and bits.
func (m *BitMatrix) Equal(other *BitMatrix) bool {
	if other == nil {
		return false
	}
	if m.Rows() != other.Rows() || m.cols != other.cols || m.count != other.count {
		return false
	}
	for i := range m.rows {
		if !m.Row(i).Equal(other.Row(i)) {
			return false
		}
	}
	return true
}

// RowView is a view over one row.
type RowView struct {
	bits *bitfield.Bitlist64
	cols int
}

// Len returns the number of columns visible through the view.
func (v RowView) Len() int { return v.cols }

// Get reports the bit at col.
func (v RowView) Get(col int) bool {
	if v.bits == nil || col < 0 || col >= v.cols {
		return false
	}
	return v.bits.BitAt(uint64(col))
}

// Count returns the number of set bits in the row.
func (v RowView) Count() int {
	if v.bits == nil {
		return 0
	}
	return int(v.bits.Count())
}

// Indices returns the columns whose bit is set, in ascending order.
func (v RowView) Indices() []int {
	out := make([]int, 0, v.Count())
	for c := 0; c < v.cols; c++ {
		if v.bits.BitAt(uint64(c)) {
			out = append(out, c)
		}
	}
	return out
}

// Equal compares two row views bit for bit.
func (v RowView) Equal(o RowView) bool {
	if v.cols != o.cols || v.Count() != o.Count() {
		return false
	}
	for c := 0; c < v.cols; c++ {
		if v.Get(c) != o.Get(c) {
			return false
		}
	}
	return true
}

// ColumnView is a view over one column.
type ColumnView struct {
	m   *BitMatrix
	col int
}

// Len returns the number of rows visible through the view.
func (v ColumnView) Len() int {
	if v.m == nil {
		return 0
	}
	return v.m.Rows()
}

// Get reports the bit at row.
func (v ColumnView) Get(row int) bool {
	if v.m == nil {
		return false
	}
	return v.m.Get(row, v.col)
}

// Count returns the number of set bits in the column.
func (v ColumnView) Count() int {
	if v.m == nil {
		return 0
	}
	return v.m.ColumnCount(v.col)
}

// Indices returns the rows whose bit is set, in ascending order.
func (v ColumnView) Indices() []int {
	var out []int
	for r := 0; r < v.Len(); r++ {
		if v.Get(r) {
			out = append(out, r)
		}
	}
	return out
}
