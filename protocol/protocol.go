// Package protocol describes the read layout of single-cell library
// preparation kits and extracts barcode and UMI segments from reads.
package protocol

import (
	"github.com/grailbio/base/errors"
)

// ReadStructure gives the byte offsets of the barcode and UMI segments
// within a read, plus the offset at which cDNA begins (zero when the cDNA
// lives on the mate read).
type ReadStructure struct {
	BarcodeStart int
	BarcodeLen   int
	UMIStart     int
	UMILen       int
	CDNAStart    int
}

// MinReadLen is the shortest read the structure can be applied to.
func (rs ReadStructure) MinReadLen() int {
	return rs.BarcodeStart + rs.BarcodeLen + rs.UMILen
}

// Protocol is a named kit with a fixed read structure.
type Protocol struct {
	Name      string
	Version   string
	Structure ReadStructure
}

// The 10x Genomics gene expression kits. The 3' v3 kit reads a 16bp
// barcode followed by a 12bp UMI on R1; the older v2 chemistry and the 5'
// kits use a 10bp UMI.
var (
	TenX3PrimeV3 = Protocol{
		Name:      "10x Genomics 3' Gene Expression",
		Version:   "v3",
		Structure: ReadStructure{0, 16, 16, 12, 0},
	}
	TenX3PrimeV2 = Protocol{
		Name:      "10x Genomics 3' Gene Expression",
		Version:   "v2",
		Structure: ReadStructure{0, 16, 16, 10, 0},
	}
	TenX5PrimeV2 = Protocol{
		Name:      "10x Genomics 5' Gene Expression",
		Version:   "v2",
		Structure: ReadStructure{0, 16, 16, 10, 0},
	}
)

var presets = map[string]Protocol{
	"10x-3prime-v3": TenX3PrimeV3,
	"10x-3prime-v2": TenX3PrimeV2,
	"10x-5prime-v2": TenX5PrimeV2,
}

// Lookup resolves a preset name such as "10x-3prime-v3".
func Lookup(name string) (Protocol, error) {
	p, ok := presets[name]
	if !ok {
		return Protocol{}, errors.E("protocol: unknown preset:", name)
	}
	return p, nil
}

// Custom returns a protocol with a caller-supplied read structure.
func Custom(rs ReadStructure) Protocol {
	return Protocol{Name: "custom", Version: "custom", Structure: rs}
}

// Components holds the segments extracted from a read.
type Components struct {
	Barcode     string
	UMI         string
	BarcodeQual []byte
	UMIQual     []byte
}

// Extract slices the barcode and UMI out of a read. seq and qual must have
// the same length; a read shorter than the structure's minimum is an
// error.
func (p Protocol) Extract(seq, qual []byte) (Components, error) {
	rs := p.Structure
	if minLen := rs.MinReadLen(); len(seq) < minLen {
		return Components{}, errors.E("protocol: read too short:", len(seq), "<", minLen, "required")
	}
	barcodeEnd := rs.BarcodeStart + rs.BarcodeLen
	umiEnd := rs.UMIStart + rs.UMILen
	return Components{
		Barcode:     string(seq[rs.BarcodeStart:barcodeEnd]),
		UMI:         string(seq[rs.UMIStart:umiEnd]),
		BarcodeQual: qual[rs.BarcodeStart:barcodeEnd],
		UMIQual:     qual[rs.UMIStart:umiEnd],
	}, nil
}

// BarcodeQualOK reports whether the mean barcode base quality is at least
// minQual. Empty quality means no.
func (c Components) BarcodeQualOK(minQual int) bool {
	return meanQualOK(c.BarcodeQual, minQual)
}

// UMIQualOK reports whether the mean UMI base quality is at least minQual.
func (c Components) UMIQualOK(minQual int) bool {
	return meanQualOK(c.UMIQual, minQual)
}

// meanQualOK averages Phred+33 encoded qualities.
func meanQualOK(qual []byte, minQual int) bool {
	if len(qual) == 0 {
		return false
	}
	var sum float64
	for _, q := range qual {
		sum += float64(q - 33)
	}
	return sum/float64(len(qual)) >= float64(minQual)
}
