// Package barcode implements cell barcode whitelists and error correction
// against them. A whitelist is the manufacturer-supplied set of valid cell
// barcodes for an assay; observed barcodes are matched exactly or corrected
// to a unique whitelist entry within a bounded Hamming distance.
package barcode

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// Whitelist is an immutable set of fixed-length reference barcodes. It is
// finalized at construction and safe to share read-only between any number
// of correctors.
type Whitelist struct {
	barcodes   map[string]struct{}
	barcodeLen int
}

// New reads a whitelist from r, one barcode per line. Whitespace is trimmed;
// blank lines and lines starting with '#' are skipped. The first accepted
// line sets the barcode length and every later line must match it.
// Duplicates are coalesced. An empty input yields an empty whitelist with
// barcode length zero.
func New(r io.Reader) (*Whitelist, error) {
	scanner := bufio.NewScanner(r)
	barcodes := map[string]struct{}{}
	barcodeLen := 0
	for scanner.Scan() {
		bc := strings.TrimSpace(scanner.Text())
		if bc == "" || strings.HasPrefix(bc, "#") {
			continue
		}
		if barcodeLen == 0 {
			barcodeLen = len(bc)
		} else if len(bc) != barcodeLen {
			return nil, errors.E("whitelist: inconsistent barcode length: expected", barcodeLen, "got", len(bc))
		}
		barcodes[bc] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "whitelist: read")
	}
	return &Whitelist{barcodes: barcodes, barcodeLen: barcodeLen}, nil
}

// FromBarcodes builds a whitelist from an in-memory list. All entries must
// have the same length.
func FromBarcodes(barcodes []string) (*Whitelist, error) {
	wl := &Whitelist{barcodes: make(map[string]struct{}, len(barcodes))}
	for _, bc := range barcodes {
		if wl.barcodeLen == 0 {
			wl.barcodeLen = len(bc)
		} else if len(bc) != wl.barcodeLen {
			return nil, errors.E("whitelist: inconsistent barcode length: expected", wl.barcodeLen, "got", len(bc))
		}
		wl.barcodes[bc] = struct{}{}
	}
	return wl, nil
}

// Contains reports whether bc is a whitelist entry.
func (w *Whitelist) Contains(bc string) bool {
	_, ok := w.barcodes[bc]
	return ok
}

// Len returns the number of distinct barcodes.
func (w *Whitelist) Len() int { return len(w.barcodes) }

// BarcodeLen returns the uniform barcode length, zero for an empty whitelist.
func (w *Whitelist) BarcodeLen() int { return w.barcodeLen }

// Barcodes returns every stored barcode exactly once, in unspecified order.
func (w *Whitelist) Barcodes() []string {
	out := make([]string, 0, len(w.barcodes))
	for bc := range w.barcodes {
		out = append(out, bc)
	}
	return out
}
