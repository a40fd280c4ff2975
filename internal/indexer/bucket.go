package indexer

import (
	"sort"
	"strconv"
)

// DefaultBreakpoints is the default ascending price-band configuration.
var DefaultBreakpoints = []float64{0, 20, 40, 60}

// Bucket maps a price onto a human-readable band label. Breakpoints are
// de-duplicated and sorted first, with 0 always included as the floor. Bands
// are inclusive at both ends and scanned in ascending order, first match wins,
// so a price sitting exactly on a breakpoint lands in the lower band. A price
// above the highest breakpoint yields "<highest>+".
//
// With fewer than two distinct breakpoints after normalization there are no
// bands and ok is false; callers must omit the field rather than emit a
// sentinel.
func Bucket(price float64, breakpoints []float64) (label string, ok bool) {
	bounds := normalizeBreakpoints(breakpoints)
	if len(bounds) < 2 {
		return "", false
	}

	for i := 1; i < len(bounds); i++ {
		lower, upper := bounds[i-1], bounds[i]
		if lower <= price && price <= upper {
			return formatBound(lower) + "-" + formatBound(upper), true
		}
	}

	highest := bounds[len(bounds)-1]
	if price > highest {
		return formatBound(highest) + "+", true
	}
	return "", false
}

// normalizeBreakpoints returns the sorted, de-duplicated breakpoints with 0
// prepended as the floor when missing.
func normalizeBreakpoints(breakpoints []float64) []float64 {
	seen := make(map[float64]struct{}, len(breakpoints)+1)
	seen[0] = struct{}{}
	bounds := []float64{0}
	for _, b := range breakpoints {
		// Negative bounds would displace the 0 floor.
		if b <= 0 {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		bounds = append(bounds, b)
	}
	sort.Float64s(bounds)
	return bounds
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
