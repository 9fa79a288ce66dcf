package qc

import (
	"encoding/json"
	"io"
)

// CellMetrics summarizes one cell barcode.
type CellMetrics struct {
	Barcode     string  `json:"barcode"`
	Reads       uint64  `json:"reads"`
	Genes       uint64  `json:"genes"`
	UMIs        uint64  `json:"umis"`
	MitoPercent float64 `json:"mito_percent"`
}

// Report bundles run metrics, per-cell metrics and any threshold warnings
// for a sample.
type Report struct {
	Sample   string        `json:"sample_name"`
	Metrics  Metrics       `json:"metrics"`
	PerCell  []CellMetrics `json:"per_cell_metrics"`
	Warnings []string      `json:"warnings"`
}

// NewReport returns an empty report for the named sample.
func NewReport(sample string) *Report {
	return &Report{
		Sample:   sample,
		PerCell:  []CellMetrics{},
		Warnings: []string{},
	}
}

// AddWarning appends a free-form warning message.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// GenerateWarnings appends a warning for each quality threshold the run
// falls below.
func (r *Report) GenerateWarnings() {
	if r.Metrics.BarcodeValidityRate() < 0.5 {
		r.AddWarning("Low barcode validity rate (<50%)")
	}
	if r.Metrics.MappingRate() < 0.5 {
		r.AddWarning("Low mapping rate (<50%)")
	}
	if r.Metrics.SequencingSaturation < 0.3 {
		r.AddWarning("Low sequencing saturation (<30%)")
	}
	if r.Metrics.MedianGenesPerCell < 200 {
		r.AddWarning("Low median genes per cell (<200)")
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
