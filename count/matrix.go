package count

// Matrix is a sparse gene-by-cell count matrix in coordinate form. Rows are
// genes, columns are cells. The three parallel slices have equal length,
// every value is strictly positive, and each (row, col) pair appears at most
// once. Genes and Barcodes are the row and column label vectors; a label's
// index is its first-seen position during counting.
type Matrix struct {
	Barcodes []string
	Genes    []string
	Rows     []int
	Cols     []int
	Values   []uint32
	NRows    int
	NCols    int
}

// FromDense builds a Matrix from a dense genes-by-cells table, dropping
// zeros. Intended for small inputs and tests.
func FromDense(barcodes, genes []string, data [][]uint32) *Matrix {
	m := &Matrix{
		Barcodes: barcodes,
		Genes:    genes,
		NRows:    len(genes),
		NCols:    len(barcodes),
	}
	for i, row := range data {
		for j, v := range row {
			if v > 0 {
				m.Rows = append(m.Rows, i)
				m.Cols = append(m.Cols, j)
				m.Values = append(m.Values, v)
			}
		}
	}
	return m
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.Values) }

// Get returns the count at (geneIdx, cellIdx), zero when absent. Linear in
// NNZ; meant for spot checks, not bulk access.
func (m *Matrix) Get(geneIdx, cellIdx int) uint32 {
	for i := range m.Values {
		if m.Rows[i] == geneIdx && m.Cols[i] == cellIdx {
			return m.Values[i]
		}
	}
	return 0
}

// CountsPerCell sums values by column.
func (m *Matrix) CountsPerCell() []uint64 {
	counts := make([]uint64, m.NCols)
	for i, c := range m.Cols {
		counts[c] += uint64(m.Values[i])
	}
	return counts
}

// CountsPerGene sums values by row.
func (m *Matrix) CountsPerGene() []uint64 {
	counts := make([]uint64, m.NRows)
	for i, r := range m.Rows {
		counts[r] += uint64(m.Values[i])
	}
	return counts
}

// GenesPerCell counts distinct rows by column. Since each (row, col) pair
// is stored at most once, distinctness is a per-entry tally.
func (m *Matrix) GenesPerCell() []uint64 {
	genes := make([]uint64, m.NCols)
	for _, c := range m.Cols {
		genes[c]++
	}
	return genes
}

// CellsPerGene counts distinct columns by row.
func (m *Matrix) CellsPerGene() []uint64 {
	cells := make([]uint64, m.NRows)
	for _, r := range m.Rows {
		cells[r]++
	}
	return cells
}
