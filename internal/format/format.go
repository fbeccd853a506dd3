// Package format renders numbers for tables, results and narratives.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Number rounds to dp decimal places and trims trailing zeros.
func Number(x float64, dp int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "∞"
	case math.IsInf(x, -1):
		return "-∞"
	}
	if dp < 0 {
		dp = 0
	}
	s := strconv.FormatFloat(x, 'f', dp, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Fixed rounds to exactly dp decimal places.
func Fixed(x float64, dp int) string {
	if dp < 0 {
		dp = 0
	}
	s := strconv.FormatFloat(x, 'f', dp, 64)
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

// Count formats an integer count.
func Count(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Pct formats a percentage with a trailing percent sign.
func Pct(x float64, dp int) string {
	return Fixed(x, dp) + "%"
}

// PValue formats a p-value, reporting anything under 0.001 as "< 0.001".
func PValue(p float64, dp int) string {
	if p < 0.001 {
		return "< 0.001"
	}
	if dp < 3 {
		dp = 3
	}
	return Number(p, dp)
}
