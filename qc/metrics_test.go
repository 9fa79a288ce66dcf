package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRates(t *testing.T) {
	m := Metrics{
		TotalReads:        1000,
		ValidBarcodeReads: 900,
		MappedReads:       800,
		AssignedReads:     700,
	}
	assert.InDelta(t, 0.9, m.BarcodeValidityRate(), 1e-9)
	assert.InDelta(t, 0.8, m.MappingRate(), 1e-9)
	assert.InDelta(t, 0.875, m.AssignmentRate(), 1e-9)
}

func TestRatesZeroDenominator(t *testing.T) {
	var m Metrics
	assert.Equal(t, 0.0, m.BarcodeValidityRate())
	assert.Equal(t, 0.0, m.MappingRate())
	assert.Equal(t, 0.0, m.AssignmentRate())

	m.SetSaturation(5, 0)
	assert.Equal(t, 0.0, m.SequencingSaturation)
}

func TestUpdateFromCells(t *testing.T) {
	var m Metrics
	m.UpdateFromCells(
		[]uint64{100, 200, 300, 400, 500},
		[]uint64{50, 100, 150, 200, 250},
		[]uint64{80, 160, 240, 320, 400},
	)
	assert.Equal(t, uint64(5), m.NumCells)
	assert.InDelta(t, 300.0, m.MeanReadsPerCell, 1e-9)
	assert.InDelta(t, 300.0, m.MedianReadsPerCell, 1e-9)
	assert.InDelta(t, 150.0, m.MeanGenesPerCell, 1e-9)
	assert.InDelta(t, 150.0, m.MedianGenesPerCell, 1e-9)
	assert.InDelta(t, 240.0, m.MeanUMIPerCell, 1e-9)
	assert.InDelta(t, 240.0, m.MedianUMIPerCell, 1e-9)
}

// The median of an even-length vector is the upper of the two middle
// values.
func TestMedianEvenLength(t *testing.T) {
	var m Metrics
	m.UpdateFromCells([]uint64{400, 100, 300, 200}, nil, nil)
	assert.Equal(t, uint64(4), m.NumCells)
	assert.InDelta(t, 250.0, m.MeanReadsPerCell, 1e-9)
	assert.InDelta(t, 300.0, m.MedianReadsPerCell, 1e-9)
}

func TestUpdateFromCellsEmpty(t *testing.T) {
	var m Metrics
	m.UpdateFromCells(nil, nil, nil)
	assert.Equal(t, uint64(0), m.NumCells)
	assert.Equal(t, 0.0, m.MeanReadsPerCell)
	assert.Equal(t, 0.0, m.MedianReadsPerCell)
}

func TestSetSaturation(t *testing.T) {
	var m Metrics
	m.SetSaturation(600, 1000)
	assert.InDelta(t, 0.4, m.SequencingSaturation, 1e-9)

	m.SetSaturation(1000, 1000)
	assert.InDelta(t, 0.0, m.SequencingSaturation, 1e-9)
}
