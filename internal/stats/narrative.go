package stats

import (
	"fmt"
	"strings"

	"tabstat/internal/format"
)

// narrator writes markdown worked examples.
type narrator struct {
	b  strings.Builder
	dp int
}

func newNarrator(dp int) *narrator {
	return &narrator{dp: dp}
}

func (n *narrator) heading(title string) {
	fmt.Fprintf(&n.b, "## %s\n\n", title)
}

func (n *narrator) step(title string) {
	fmt.Fprintf(&n.b, "### %s\n\n", title)
}

func (n *narrator) para(format string, args ...any) {
	fmt.Fprintf(&n.b, format, args...)
	n.b.WriteString("\n\n")
}

func (n *narrator) num(x float64) string {
	return format.Number(x, n.dp)
}

func (n *narrator) p(p float64) string {
	return format.PValue(p, n.dp)
}

func (n *narrator) table(headers []string, rows [][]string) {
	n.b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	n.b.WriteString("|" + strings.Join(seps, "|") + "|\n")
	for _, row := range rows {
		n.b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	n.b.WriteString("\n")
}

func (n *narrator) conclusion(p float64) {
	if p < 0.05 {
		n.para("The p-value (%s) is below 0.05 so the result is statistically significant at the 5%% level.", n.p(p))
		return
	}
	n.para("The p-value (%s) is not below 0.05 so the result is not statistically significant at the 5%% level.", n.p(p))
}

func (n *narrator) String() string {
	return strings.TrimSpace(n.b.String()) + "\n"
}
