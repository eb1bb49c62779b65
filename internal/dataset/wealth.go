package dataset

import (
	"strconv"
	"strings"
)

// bandLimits are the upper bounds of the wealth bands, in dollars.
// Values at or above the last limit fall in the top band.
var bandLimits = []float64{1e6, 10e6, 50e6, 100e6, 500e6}

// BandCount is the number of wealth bands.
const BandCount = 6

var suffixes = []struct {
	word string
	mult float64
}{
	{"trillion", 1e12},
	{"billion", 1e9},
	{"million", 1e6},
	{"thousand", 1e3},
	{"t", 1e12},
	{"b", 1e9},
	{"m", 1e6},
	{"k", 1e3},
}

// ParseNetWorth parses a display amount such as "$245.1B", "$12 million"
// or "1,200,000". The second return is false if the string is not an amount.
func ParseNetWorth(display string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(display))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	mult := 1.0
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf.word) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf.word))
			mult = suf.mult
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v * mult, true
}

// Band returns the wealth band index (0..BandCount-1) for a dollar amount.
func Band(amount float64) int {
	for i, limit := range bandLimits {
		if amount < limit {
			return i
		}
	}
	return len(bandLimits)
}
