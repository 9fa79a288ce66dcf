package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterBuild(t *testing.T) {
	c := NewCounter()
	c.Increment("CELL1", "GENE1")
	c.Increment("CELL1", "GENE1")
	c.Increment("CELL1", "GENE2")
	c.Increment("CELL2", "GENE1")

	assert.Equal(t, 2, c.NumCells())
	assert.Equal(t, 2, c.NumGenes())

	m := c.Build()
	assert.Equal(t, 2, m.NRows)
	assert.Equal(t, 2, m.NCols)
	assert.Equal(t, 3, m.NNZ())

	var sum uint64
	for _, v := range m.Values {
		sum += uint64(v)
	}
	assert.Equal(t, uint64(4), sum)

	// Labels are indexed in first-observation order.
	assert.Equal(t, []string{"CELL1", "CELL2"}, m.Barcodes)
	assert.Equal(t, []string{"GENE1", "GENE2"}, m.Genes)

	assert.Equal(t, uint32(2), m.Get(0, 0))
	assert.Equal(t, uint32(1), m.Get(1, 0))
	assert.Equal(t, uint32(1), m.Get(0, 1))
	assert.Equal(t, uint32(0), m.Get(1, 1))
}

func TestCounterLabelOrder(t *testing.T) {
	c := NewCounter()
	c.Increment("Z", "G3")
	c.Increment("A", "G1")
	c.Increment("M", "G2")
	c.Increment("A", "G3")

	m := c.Build()
	assert.Equal(t, []string{"Z", "A", "M"}, m.Barcodes)
	assert.Equal(t, []string{"G3", "G1", "G2"}, m.Genes)
}

func TestCounterMatrixIntegrity(t *testing.T) {
	c := NewCounter()
	obs := []struct{ bc, gene string }{
		{"C1", "G1"}, {"C1", "G2"}, {"C2", "G1"}, {"C3", "G3"},
		{"C1", "G1"}, {"C2", "G1"}, {"C3", "G3"}, {"C3", "G1"},
	}
	for _, o := range obs {
		c.Increment(o.bc, o.gene)
	}
	m := c.Build()

	require.Equal(t, len(m.Rows), len(m.Cols))
	require.Equal(t, len(m.Rows), len(m.Values))
	seen := map[[2]int]bool{}
	for i := range m.Values {
		assert.True(t, m.Values[i] > 0)
		assert.True(t, m.Rows[i] >= 0 && m.Rows[i] < m.NRows)
		assert.True(t, m.Cols[i] >= 0 && m.Cols[i] < m.NCols)
		pair := [2]int{m.Rows[i], m.Cols[i]}
		assert.False(t, seen[pair], "duplicate entry %v", pair)
		seen[pair] = true
	}
}

func TestCounterAdd(t *testing.T) {
	c := NewCounter()
	c.Add("C1", "G1", 10)
	c.Add("C1", "G1", 5)
	m := c.Build()
	assert.Equal(t, uint32(15), m.Get(0, 0))
}

func TestCounterConsumedOnBuild(t *testing.T) {
	c := NewCounter()
	c.Increment("C1", "G1")
	_ = c.Build()

	assert.Equal(t, 0, c.NumCells())
	assert.Equal(t, 0, c.NumGenes())

	// The drained counter is reusable and starts fresh.
	c.Increment("C9", "G9")
	m := c.Build()
	assert.Equal(t, []string{"C9"}, m.Barcodes)
	assert.Equal(t, 1, m.NNZ())
}
