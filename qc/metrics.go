// Package qc aggregates run-level and per-cell quality metrics for a
// single-cell experiment and renders them as a JSON report.
package qc

import "sort"

// Metrics holds run-level counters and derived summary statistics. The
// zero value is valid and reports zero for every rate.
type Metrics struct {
	TotalReads        uint64 `json:"total_reads"`
	ValidBarcodeReads uint64 `json:"valid_barcode_reads"`
	ValidUMIReads     uint64 `json:"valid_umi_reads"`
	MappedReads       uint64 `json:"mapped_reads"`
	AssignedReads     uint64 `json:"assigned_reads"`
	NumCells          uint64 `json:"num_cells"`

	MeanReadsPerCell   float64 `json:"mean_reads_per_cell"`
	MedianReadsPerCell float64 `json:"median_reads_per_cell"`
	MeanGenesPerCell   float64 `json:"mean_genes_per_cell"`
	MedianGenesPerCell float64 `json:"median_genes_per_cell"`
	TotalGenes         uint64  `json:"total_genes"`
	MeanUMIPerCell     float64 `json:"mean_umi_per_cell"`
	MedianUMIPerCell   float64 `json:"median_umi_per_cell"`

	SequencingSaturation float64 `json:"sequencing_saturation"`
	FractionReadsInCells float64 `json:"fraction_reads_in_cells"`
}

// BarcodeValidityRate returns valid barcode reads over total reads, zero
// when no reads were seen.
func (m *Metrics) BarcodeValidityRate() float64 {
	if m.TotalReads == 0 {
		return 0
	}
	return float64(m.ValidBarcodeReads) / float64(m.TotalReads)
}

// MappingRate returns mapped reads over total reads, zero when no reads
// were seen.
func (m *Metrics) MappingRate() float64 {
	if m.TotalReads == 0 {
		return 0
	}
	return float64(m.MappedReads) / float64(m.TotalReads)
}

// AssignmentRate returns gene-assigned reads over mapped reads, zero when
// nothing mapped.
func (m *Metrics) AssignmentRate() float64 {
	if m.MappedReads == 0 {
		return 0
	}
	return float64(m.AssignedReads) / float64(m.MappedReads)
}

// UpdateFromCells fills NumCells and the per-cell mean and median fields
// from the given per-cell vectors. The median is the sorted value at index
// n/2, not interpolated. Empty vectors leave their fields untouched.
func (m *Metrics) UpdateFromCells(readsPerCell, genesPerCell, umisPerCell []uint64) {
	m.NumCells = uint64(len(readsPerCell))
	if mean, median, ok := summarize(readsPerCell); ok {
		m.MeanReadsPerCell, m.MedianReadsPerCell = mean, median
	}
	if mean, median, ok := summarize(genesPerCell); ok {
		m.MeanGenesPerCell, m.MedianGenesPerCell = mean, median
	}
	if mean, median, ok := summarize(umisPerCell); ok {
		m.MeanUMIPerCell, m.MedianUMIPerCell = mean, median
	}
}

// SetSaturation records sequencing saturation, 1 - unique/total. Zero total
// reads gives zero saturation.
func (m *Metrics) SetSaturation(unique, total uint64) {
	if total == 0 {
		m.SequencingSaturation = 0
		return
	}
	m.SequencingSaturation = 1 - float64(unique)/float64(total)
}

func summarize(values []uint64) (mean, median float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	sorted := make([]uint64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var sum uint64
	for _, v := range sorted {
		sum += v
	}
	mean = float64(sum) / float64(len(sorted))
	median = float64(sorted[len(sorted)/2])
	return mean, median, true
}
