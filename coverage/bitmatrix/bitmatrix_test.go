package bitmatrix

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanCount(m *BitMatrix) int {
	n := 0
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			if m.Get(r, c) {
				n++
			}
		}
	}
	return n
}

func TestSetAndGet(t *testing.T) {
	m := New(3, 70)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 70, m.Cols())

	assert.True(t, m.Set(0, 0, true))
	assert.True(t, m.Set(2, 69, true))
	assert.False(t, m.Set(3, 0, true), "row out of range")
	assert.False(t, m.Set(0, 70, true), "column out of range")

	assert.True(t, m.Get(0, 0))
	assert.True(t, m.Get(2, 69))
	assert.False(t, m.Get(1, 1))
	assert.False(t, m.Get(-1, 0))
	assert.Equal(t, 2, m.Count())

	// Setting the same value twice must not change the count.
	m.Set(0, 0, true)
	assert.Equal(t, 2, m.Count())

	m.Set(0, 0, false)
	assert.Equal(t, 1, m.Count())
}

func TestToggle(t *testing.T) {
	m := New(2, 2)
	assert.True(t, m.Toggle(1, 1))
	assert.Equal(t, 1, m.Count())
	assert.False(t, m.Toggle(1, 1))
	assert.Equal(t, 0, m.Count())
}

func TestCountMatchesScanAfterRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := New(5, 5)

	for i := 0; i < 2000; i++ {
		switch rng.Intn(10) {
		case 0:
			m.Resize(rng.Intn(12), rng.Intn(150))
		case 1, 2:
			if m.Rows() > 0 && m.Cols() > 0 {
				m.Toggle(rng.Intn(m.Rows()), rng.Intn(m.Cols()))
			}
		default:
			if m.Rows() > 0 && m.Cols() > 0 {
				m.Set(rng.Intn(m.Rows()), rng.Intn(m.Cols()), rng.Intn(2) == 0)
			}
		}
		require.Equal(t, scanCount(m), m.Count(), "iteration %d", i)
	}
}

func TestResizeKeepsRetainedBits(t *testing.T) {
	m := New(2, 3)
	m.Set(0, 2, true)
	m.Set(1, 0, true)

	m.Resize(4, 200)
	assert.True(t, m.Get(0, 2))
	assert.True(t, m.Get(1, 0))
	assert.Equal(t, 2, m.Count())

	m.Set(3, 199, true)
	m.Resize(4, 2)
	assert.False(t, m.Get(0, 2))
	assert.Equal(t, 1, m.Count())

	// Growing again must not resurrect cleared bits.
	m.Resize(4, 3)
	assert.False(t, m.Get(0, 2))

	m.Resize(1, 3)
	assert.Equal(t, 0, m.Count())
}

func TestRowAndColumnViews(t *testing.T) {
	m := New(3, 4)
	m.Set(0, 1, true)
	m.Set(0, 3, true)
	m.Set(2, 1, true)

	row := m.Row(0)
	assert.Equal(t, 4, row.Len())
	assert.Equal(t, 2, row.Count())
	assert.Equal(t, []int{1, 3}, row.Indices())

	col := m.Column(1)
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, 2, col.Count())
	assert.Equal(t, []int{0, 2}, col.Indices())

	// Views observe later mutations.
	m.Set(1, 1, true)
	assert.Equal(t, 3, col.Count())
	assert.Equal(t, 1, m.RowCount(1))
	assert.Equal(t, 3, m.ColumnCount(1))
}

func TestEqual(t *testing.T) {
	a := New(2, 2)
	b := New(2, 2)
	assert.True(t, a.Equal(b))

	a.Set(1, 0, true)
	assert.False(t, a.Equal(b))
	b.Set(1, 0, true)
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(New(2, 3)))
	assert.False(t, a.Equal(nil))
}

func TestClear(t *testing.T) {
	m := New(2, 2)
	m.Set(0, 0, true)
	m.Set(1, 1, true)
	m.Clear()
	assert.Equal(t, 0, m.Count())
	assert.False(t, m.Get(0, 0))
	assert.Equal(t, 2, m.Rows())
}
