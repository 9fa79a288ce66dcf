package barcode

import (
	"github.com/scbio/sc/util"
)

// bases is the alphabet used to generate one-edit variants. 'N' is included
// so that a single no-call in an observed barcode remains correctable when
// the originating whitelist entry is unique.
var bases = []byte{'A', 'C', 'G', 'T', 'N'}

// MatchKind discriminates the outcome of a barcode lookup.
type MatchKind int

const (
	// MatchExact means the observed barcode is itself a whitelist entry.
	MatchExact MatchKind = iota
	// MatchCorrected means a unique whitelist entry lies within the
	// configured Hamming distance.
	MatchCorrected
	// MatchNone means the barcode is unresolved: no whitelist entry within
	// range, or two or more entries tied at the minimum distance.
	MatchNone
)

// Match is the result of classifying one observed barcode.
type Match struct {
	Kind MatchKind
	// Observed is the barcode as sequenced.
	Observed string
	// Canonical is the whitelist entry the barcode resolved to. Empty for
	// MatchNone; equal to Observed for MatchExact.
	Canonical string
	// Distance is the Hamming distance between Observed and Canonical.
	// Zero for MatchExact, >= 1 for MatchCorrected.
	Distance int
}

// Barcode returns the resolved whitelist barcode, and false if the
// observation was unresolved.
func (m Match) Barcode() (string, bool) {
	if m.Kind == MatchNone {
		return "", false
	}
	return m.Canonical, true
}

// Valid reports whether the observation resolved to a whitelist entry.
func (m Match) Valid() bool { return m.Kind != MatchNone }

// Corrector maps observed barcodes to canonical whitelist entries. It is
// immutable after construction and safe for concurrent use.
type Corrector struct {
	wl      *Whitelist
	maxDist int

	// index maps every one-edit variant of a whitelist barcode to the list
	// of entries that generate it. Built only when maxDist >= 1; it costs
	// about 5*L*|W| entries and dominates memory for large whitelists.
	index map[string][]string
}

// NewCorrector builds a corrector for wl allowing corrections up to maxDist
// mismatches. maxDist = 0 permits exact matches only.
func NewCorrector(wl *Whitelist, maxDist int) *Corrector {
	c := &Corrector{wl: wl, maxDist: maxDist}
	if maxDist >= 1 {
		c.index = buildMismatchIndex(wl)
	}
	return c
}

func buildMismatchIndex(wl *Whitelist) map[string][]string {
	index := map[string][]string{}
	variant := []byte(nil)
	for _, bc := range wl.Barcodes() {
		for i := 0; i < len(bc); i++ {
			for _, b := range bases {
				if bc[i] == b {
					continue
				}
				variant = append(variant[:0], bc...)
				variant[i] = b
				index[string(variant)] = append(index[string(variant)], bc)
			}
		}
	}
	return index
}

// Match classifies the observed barcode. Exact whitelist hits are returned
// as-is regardless of the configured distance. Otherwise a unique nearest
// entry within maxDist wins; a tie at the minimum distance is ambiguous and
// yields MatchNone.
func (c *Corrector) Match(observed string) Match {
	if c.wl.Contains(observed) {
		return Match{Kind: MatchExact, Observed: observed, Canonical: observed}
	}
	if c.maxDist == 0 {
		return Match{Kind: MatchNone, Observed: observed}
	}
	if candidates, ok := c.index[observed]; ok {
		if len(candidates) == 1 {
			return Match{Kind: MatchCorrected, Observed: observed, Canonical: candidates[0], Distance: 1}
		}
		return Match{Kind: MatchNone, Observed: observed}
	}
	if c.maxDist > 1 {
		return c.scan(observed)
	}
	return Match{Kind: MatchNone, Observed: observed}
}

// scan is the brute-force fallback for maxDist > 1: walk the whole
// whitelist tracking the strict minimum distance.
func (c *Corrector) scan(observed string) Match {
	var (
		best      string
		bestDist  = util.MaxDistance
		ambiguous bool
	)
	for _, bc := range c.wl.Barcodes() {
		d := util.Hamming(observed, bc)
		if d > c.maxDist {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist, ambiguous = bc, d, false
		case d == bestDist:
			ambiguous = true
		}
	}
	if bestDist <= c.maxDist && !ambiguous {
		return Match{Kind: MatchCorrected, Observed: observed, Canonical: best, Distance: bestDist}
	}
	return Match{Kind: MatchNone, Observed: observed}
}

// MaxDistance returns the configured correction bound.
func (c *Corrector) MaxDistance() int { return c.maxDist }

// Whitelist returns the shared whitelist.
func (c *Corrector) Whitelist() *Whitelist { return c.wl }
