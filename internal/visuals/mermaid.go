package visuals

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"mcs-risk/internal/simulation"
)

// maxBars caps the number of categories on a bar chart.
const maxBars = 20

// GeneratePercentileChart creates a Mermaid bar chart of the duration percentile ladder.
func GeneratePercentileChart(p simulation.Percentiles) string {
	if p.P99 == 0 {
		return ""
	}

	labels := []string{
		"\"10% (Aggressive)\"",
		"\"25% (Optimistic)\"",
		"\"50% (Coin Toss)\"",
		"\"75% (Probable)\"",
		"\"90% (Conservative)\"",
		"\"95% (Safe)\"",
		"\"99% (Certain)\"",
	}
	values := []string{
		fmt.Sprintf("%.1f", p.P10),
		fmt.Sprintf("%.1f", p.P25),
		fmt.Sprintf("%.1f", p.P50),
		fmt.Sprintf("%.1f", p.P75),
		fmt.Sprintf("%.1f", p.P90),
		fmt.Sprintf("%.1f", p.P95),
		fmt.Sprintf("%.1f", p.P99),
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Schedule Forecast (Percentiles)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days (Duration)\" 0 --> %d\n", int(math.Ceil(p.P99*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateDurationCDF creates a Mermaid line chart of the completion-date probability curve.
func GenerateDurationCDF(curve []simulation.DurationPoint) string {
	if len(curve) == 0 {
		return ""
	}

	labels := make([]string, 0, len(curve))
	values := make([]string, 0, len(curve))
	for _, pt := range curve {
		labels = append(labels, fmt.Sprintf("\"%s\"", pt.Date))
		values = append(values, fmt.Sprintf("%.2f", pt.Probability))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Probability of Completion by Date\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Cumulative Probability\" 0 --> 1\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCostCDF creates a Mermaid line chart of the total-cost probability curve.
func GenerateCostCDF(curve []simulation.CostPoint) string {
	if len(curve) == 0 {
		return ""
	}

	labels := make([]string, 0, len(curve))
	values := make([]string, 0, len(curve))
	for _, pt := range curve {
		labels = append(labels, fmt.Sprintf("\"%s\"", compactAmount(pt.Cost)))
		values = append(values, fmt.Sprintf("%.2f", pt.Probability))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Probability of Staying Within Cost\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Cumulative Probability\" 0 --> 1\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// CriticalityEntry is one variable's overrun frequency.
type CriticalityEntry struct {
	Name      string
	Frequency float64
}

// RankCriticality orders criticality frequencies descending, ties by name.
func RankCriticality(freq map[string]float64) []CriticalityEntry {
	entries := make([]CriticalityEntry, 0, len(freq))
	for name, f := range freq {
		entries = append(entries, CriticalityEntry{Name: name, Frequency: f})
	}
	slices.SortFunc(entries, func(a, b CriticalityEntry) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return entries
}

// GenerateCriticalityChart creates a Mermaid bar chart of how often each variable overran its estimate.
func GenerateCriticalityChart(freq map[string]float64) string {
	entries := RankCriticality(freq)
	if len(entries) == 0 {
		return ""
	}
	if len(entries) > maxBars {
		entries = entries[:maxBars]
	}

	var labels []string
	var values []string
	for _, e := range entries {
		// Quotes break the label list
		safeName := strings.ReplaceAll(e.Name, "\"", "'")
		labels = append(labels, fmt.Sprintf("\"%s\"", safeName))
		values = append(values, fmt.Sprintf("%.0f", e.Frequency*100))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Criticality (% of Trials Overrunning)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Trials (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

func compactAmount(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
