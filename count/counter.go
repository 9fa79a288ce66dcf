// Package count accumulates per-cell per-gene observations into a sparse
// gene-by-cell matrix in coordinate (COO) form, and serializes it in Matrix
// Market format with barcode and gene sidecar files.
package count

// key identifies one matrix cell: a (gene row, cell column) index pair.
type key struct {
	gene, cell int
}

// Counter ingests a stream of (cell barcode, gene) observations. Barcodes
// and genes are interned in first-seen order: the column index of a barcode
// equals the position of its first observation in the input sequence, and
// likewise for genes and row indices. That order is user-visible, so any
// parallel fan-in must serialize its increments.
//
// A Counter is single-owner and not safe for concurrent use.
type Counter struct {
	cellIdx  map[string]int
	geneIdx  map[string]int
	counts   map[key]uint32
	barcodes []string
	genes    []string
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{
		cellIdx: map[string]int{},
		geneIdx: map[string]int{},
		counts:  map[key]uint32{},
	}
}

// Add accumulates n counts for the (barcode, gene) pair, interning labels
// on first sight. Counts saturate the uint32 range only after ~4e9 reads
// for a single pair, which does not occur in this domain.
func (c *Counter) Add(barcode, gene string, n uint32) {
	cell, ok := c.cellIdx[barcode]
	if !ok {
		cell = len(c.barcodes)
		c.cellIdx[barcode] = cell
		c.barcodes = append(c.barcodes, barcode)
	}
	g, ok := c.geneIdx[gene]
	if !ok {
		g = len(c.genes)
		c.geneIdx[gene] = g
		c.genes = append(c.genes, gene)
	}
	c.counts[key{g, cell}] += n
}

// Increment adds one count for the (barcode, gene) pair.
func (c *Counter) Increment(barcode, gene string) {
	c.Add(barcode, gene, 1)
}

// NumCells returns the number of distinct barcodes observed so far.
func (c *Counter) NumCells() int { return len(c.barcodes) }

// NumGenes returns the number of distinct genes observed so far.
func (c *Counter) NumGenes() int { return len(c.genes) }

// Build drains the accumulator into a finalized Matrix and leaves the
// counter empty. The counter is a one-shot object: consuming it on build
// prevents mutation after a matrix snapshot has been handed out, and
// releases the accumulator map. Triple order within the matrix is
// unspecified but each (row, col) pair appears exactly once.
func (c *Counter) Build() *Matrix {
	m := &Matrix{
		Barcodes: c.barcodes,
		Genes:    c.genes,
		NRows:    len(c.genes),
		NCols:    len(c.barcodes),
		Rows:     make([]int, 0, len(c.counts)),
		Cols:     make([]int, 0, len(c.counts)),
		Values:   make([]uint32, 0, len(c.counts)),
	}
	for k, v := range c.counts {
		m.Rows = append(m.Rows, k.gene)
		m.Cols = append(m.Cols, k.cell)
		m.Values = append(m.Values, v)
	}
	*c = *NewCounter()
	return m
}
