// Package metric formats ride counts for display.
package metric

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Abbreviate shortens a count with an SI suffix and at most two decimals,
// e.g. 1234567 as "1.23M" and 12500 as "12.5K".
func Abbreviate(v float64) string {
	s := humanize.SIWithDigits(v, 2, "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.Replace(s, "k", "K", 1)
}

// Exact renders a count with thousands separators.
func Exact(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
