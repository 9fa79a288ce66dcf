package qc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWarnings(t *testing.T) {
	r := NewReport("low-quality")
	r.Metrics.TotalReads = 1000
	r.Metrics.ValidBarcodeReads = 100
	r.Metrics.MappedReads = 200
	r.Metrics.SequencingSaturation = 0.1
	r.Metrics.MedianGenesPerCell = 50
	r.GenerateWarnings()

	assert.Equal(t, []string{
		"Low barcode validity rate (<50%)",
		"Low mapping rate (<50%)",
		"Low sequencing saturation (<30%)",
		"Low median genes per cell (<200)",
	}, r.Warnings)
}

func TestGenerateWarningsClean(t *testing.T) {
	r := NewReport("good")
	r.Metrics.TotalReads = 1000
	r.Metrics.ValidBarcodeReads = 950
	r.Metrics.MappedReads = 900
	r.Metrics.SequencingSaturation = 0.6
	r.Metrics.MedianGenesPerCell = 1500
	r.GenerateWarnings()
	assert.Empty(t, r.Warnings)
}

func TestWriteJSON(t *testing.T) {
	r := NewReport("sample1")
	r.Metrics.TotalReads = 10
	r.Metrics.NumCells = 1
	r.PerCell = append(r.PerCell, CellMetrics{
		Barcode: "ACGT",
		Reads:   10,
		Genes:   3,
		UMIs:    8,
	})
	r.AddWarning("Low median genes per cell (<200)")

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sample1", decoded["sample_name"])

	metrics, ok := decoded["metrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(10), metrics["total_reads"])
	assert.Equal(t, float64(1), metrics["num_cells"])

	cells, ok := decoded["per_cell_metrics"].([]interface{})
	require.True(t, ok)
	require.Len(t, cells, 1)
	cell := cells[0].(map[string]interface{})
	assert.Equal(t, "ACGT", cell["barcode"])
	assert.Equal(t, float64(8), cell["umis"])

	warnings, ok := decoded["warnings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, warnings, 1)
}
