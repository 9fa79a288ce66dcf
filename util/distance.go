package util

// MaxDistance is returned by Hamming for sequences of unequal length. It is
// larger than any usable correction threshold, so an unequal-length pair can
// never win a nearest-match scan.
const MaxDistance = 1<<31 - 1

// Hamming returns the number of positions at which s1 and s2 differ. The
// comparison is case-sensitive and byte-wise; sequences are expected to be
// upper-cased upstream. An 'N' matches only a literal 'N'. Sequences of
// unequal length are not comparable and yield MaxDistance.
func Hamming(s1, s2 string) int {
	if len(s1) != len(s2) {
		return MaxDistance
	}
	d := 0
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			d++
		}
	}
	return d
}

// HammingWithin reports whether Hamming(s1, s2) <= max. It stops walking the
// sequences as soon as the bound is exceeded.
func HammingWithin(s1, s2 string, max int) bool {
	if len(s1) != len(s2) {
		return false
	}
	d := 0
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			d++
			if d > max {
				return false
			}
		}
	}
	return true
}
