package catalog

import (
	"strconv"
	"strings"
)

// Normalize converts a quantity label such as "500ml", "2kg" or "10 pcs"
// into a numeric multiplier in the category base unit (liters for milk,
// kilograms for meat, piece count for eggs). Malformed labels never
// fail: the multiplier falls back to 1 so checkout is not blocked.
func Normalize(label string) float64 {
	label = strings.TrimSpace(label)

	numeric, ok := leadingNumber(label)
	if !ok {
		// Covers empty labels and pieces-style labels with no count.
		return 1
	}

	switch {
	case strings.Contains(label, "ml"):
		return numeric / 1000
	case strings.Contains(label, "L"):
		return numeric
	case strings.Contains(label, "kg"):
		return numeric
	}
	return numeric
}

func leadingNumber(label string) (float64, bool) {
	end := 0
	seenDot := false
	for end < len(label) {
		c := label[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}

	numeric, err := strconv.ParseFloat(label[:end], 64)
	if err != nil || numeric <= 0 {
		return 0, false
	}
	return numeric, true
}
