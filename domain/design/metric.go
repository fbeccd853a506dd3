package design

import (
	"fmt"
	"strings"
)

// Metric is a value displayed per cell of a table.
type Metric string

const (
	MetricFreq   Metric = "Freq"
	MetricRowPct Metric = "Row %"
	MetricColPct Metric = "Col %"
)

// ParseMetric accepts display names and the ROW_PCT / COL_PCT / FREQ identifiers.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "FREQ":
		return MetricFreq, nil
	case "ROW_PCT", "ROW%":
		return MetricRowPct, nil
	case "COL_PCT", "COL%":
		return MetricColPct, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// IsPct reports whether the metric is a percentage.
func (m Metric) IsPct() bool {
	return m == MetricRowPct || m == MetricColPct
}
