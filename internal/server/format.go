package server

import (
	"fmt"
	"math"
	"strconv"
)

// formatDollars renders a raw engine value as whole dollars with comma
// grouping, e.g. "$38,544". Rounding happens here and only here.
func formatDollars(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}
	return sign + "$" + string(grouped)
}

// formatPercent renders a percentage to one decimal place.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
