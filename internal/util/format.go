package util

import (
	"fmt"
	"math"
)

// FormatNumber shortens large record counts.
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// FormatSeconds renders a duration in seconds with a unit and precision that
// fits its magnitude.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "-"
	}
	if seconds == 0 {
		return "0"
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	ms := seconds * 1000
	switch {
	case ms < 1:
		return fmt.Sprintf("%s%.0fμs", sign, ms*1000)
	case ms < 10:
		return fmt.Sprintf("%s%.2fms", sign, ms)
	case ms < 100:
		return fmt.Sprintf("%s%.1fms", sign, ms)
	case ms < 1000:
		return fmt.Sprintf("%s%.0fms", sign, ms)
	case seconds < 60:
		return fmt.Sprintf("%s%.2fs", sign, seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%s%.1fmin", sign, minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%s%.1fhrs", sign, hours)
	}
	return fmt.Sprintf("%s%.1f days", sign, hours/24)
}

// FormatVisibleCount renders the "X of Y" readout of the record list.
func FormatVisibleCount(visible, all int) string {
	return fmt.Sprintf("%s of %s", FormatNumber(visible), FormatNumber(all))
}
