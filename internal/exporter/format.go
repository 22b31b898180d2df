package exporter

import (
	"strconv"
)

// formatFloat formats an amount with exactly 2 decimal places, so 13.4
// appears as 13.40.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats a count for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// parseNumber reverses formatFloat and formatInt for workbook cells
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
