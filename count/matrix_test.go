package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func denseFixture() *Matrix {
	return FromDense(
		[]string{"CELL1", "CELL2"},
		[]string{"GENE1", "GENE2"},
		[][]uint32{{10, 5}, {3, 8}},
	)
}

func TestMatrixReductions(t *testing.T) {
	m := denseFixture()
	assert.Equal(t, []uint64{13, 13}, m.CountsPerCell())
	assert.Equal(t, []uint64{15, 11}, m.CountsPerGene())
	assert.Equal(t, []uint64{2, 2}, m.GenesPerCell())
	assert.Equal(t, []uint64{2, 2}, m.CellsPerGene())
}

func TestMatrixReductionSums(t *testing.T) {
	c := NewCounter()
	obs := []struct{ bc, gene string }{
		{"C1", "G1"}, {"C1", "G1"}, {"C2", "G1"}, {"C2", "G2"},
		{"C3", "G3"}, {"C1", "G2"}, {"C3", "G1"},
	}
	for _, o := range obs {
		c.Increment(o.bc, o.gene)
	}
	m := c.Build()

	var total, perCell, perGene uint64
	for _, v := range m.Values {
		total += uint64(v)
	}
	for _, v := range m.CountsPerCell() {
		perCell += v
	}
	for _, v := range m.CountsPerGene() {
		perGene += v
	}
	assert.Equal(t, total, perCell)
	assert.Equal(t, total, perGene)
}

func TestFromDenseDropsZeros(t *testing.T) {
	m := FromDense(
		[]string{"C1", "C2"},
		[]string{"G1", "G2"},
		[][]uint32{{1, 0}, {0, 2}},
	)
	assert.Equal(t, 2, m.NNZ())
	assert.Equal(t, uint32(0), m.Get(0, 1))
	assert.Equal(t, uint32(2), m.Get(1, 1))
}
