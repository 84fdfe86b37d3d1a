// Package report renders comparison outcomes as Markdown and HTML documents.
package report

import (
	"fmt"
	"strings"

	"tradestats/app"
	"tradestats/domain/comparison"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders an outcome as a Markdown document with a descriptive table,
// one result table per test path that ran, and the verdict.
func Markdown(outcome *app.ComparisonOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title(outcome))
	fmt.Fprintf(&b, "- Analysis: `%s`\n", outcome.ID)
	fmt.Fprintf(&b, "- Test: %s\n", outcome.Test)
	fmt.Fprintf(&b, "- Alpha: %.3g\n", outcome.Alpha)
	if outcome.Skipped > 0 {
		fmt.Fprintf(&b, "- Rows skipped: %d\n", outcome.Skipped)
	}
	b.WriteString("\n## Descriptive statistics\n\n")
	writeDescriptives(&b, outcome.Descriptives)

	if r := outcome.Parametric; r != nil {
		b.WriteString("\n## Welch's t-test\n\n")
		writeRows(&b, [][2]string{
			{"t-statistic", fmt.Sprintf("%.4f", r.TStatistic)},
			{"p-value", fmt.Sprintf("%.4g", r.PValue)},
			{"Cohen's d", fmt.Sprintf("%.3f (%s)", r.CohensD, comparison.CohenMagnitude(r.CohensD))},
			{"Mean " + outcome.Descriptives.GroupA.Label, fmt.Sprintf("%.3f", r.MeanA)},
			{"Mean " + outcome.Descriptives.GroupB.Label, fmt.Sprintf("%.3f", r.MeanB)},
		})
	}
	if r := outcome.NonParametric; r != nil {
		b.WriteString("\n## Mann-Whitney U test\n\n")
		writeRows(&b, [][2]string{
			{"U-statistic", fmt.Sprintf("%.1f", r.UStatistic)},
			{"p-value", fmt.Sprintf("%.4g", r.PValue)},
			{"Cliff's Delta", fmt.Sprintf("%.3f (%s)", r.CliffsDelta, comparison.CliffMagnitude(r.CliffsDelta))},
			{"Median " + outcome.Descriptives.GroupA.Label, fmt.Sprintf("%.3f", r.MedianA)},
			{"Median " + outcome.Descriptives.GroupB.Label, fmt.Sprintf("%.3f", r.MedianB)},
		})
	}

	b.WriteString("\n## Verdict\n\n")
	if outcome.Significant {
		fmt.Fprintf(&b, "**Statistically significant** difference between groups (alpha %.3g, %s effect).\n", outcome.Alpha, outcome.Magnitude)
	} else {
		fmt.Fprintf(&b, "**No statistically significant** difference between groups (alpha %.3g, %s effect).\n", outcome.Alpha, outcome.Magnitude)
	}
	return b.String()
}

// HTML renders Markdown(outcome) as a complete HTML page.
func HTML(outcome *app.ComparisonOutcome) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(outcome)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: title(outcome),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

func title(outcome *app.ComparisonOutcome) string {
	a, b := outcome.Descriptives.GroupA.Label, outcome.Descriptives.GroupB.Label
	if outcome.Query != nil {
		return fmt.Sprintf("%s: %s vs %s", outcome.Query.ValueColumn, a, b)
	}
	return fmt.Sprintf("%s vs %s", a, b)
}

func writeDescriptives(b *strings.Builder, d comparison.Descriptives) {
	b.WriteString("| Group | n | Min | Max | Mean | Median | Std Dev | Skew | Kurtosis |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, g := range d.Groups() {
		fmt.Fprintf(b, "| %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
			escape(g.Label), g.Count, g.Min, g.Max, g.Mean, g.Median, g.StdDev, g.Skewness, g.Kurtosis)
	}
}

func writeRows(b *strings.Builder, rows [][2]string) {
	b.WriteString("| Measure | Value |\n|---|---:|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", escape(row[0]), row[1])
	}
}

// escape keeps labels from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Text renders an outcome for a terminal: aligned descriptive statistics
// followed by the verdict summary.
func Text(outcome *app.ComparisonOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title(outcome))
	b.WriteString("Descriptive Statistics:\n")
	for _, g := range outcome.Descriptives.Groups() {
		fmt.Fprintf(&b, "%s:\n", g.Label)
		fmt.Fprintf(&b, "  n        : %d\n", g.Count)
		fmt.Fprintf(&b, "  Min      : %.3f\n", g.Min)
		fmt.Fprintf(&b, "  Max      : %.3f\n", g.Max)
		fmt.Fprintf(&b, "  Mean     : %.3f\n", g.Mean)
		fmt.Fprintf(&b, "  Median   : %.3f\n", g.Median)
		fmt.Fprintf(&b, "  Std Dev  : %.3f\n", g.StdDev)
		fmt.Fprintf(&b, "  Skew     : %.3f\n", g.Skewness)
		fmt.Fprintf(&b, "  Kurtosis : %.3f\n", g.Kurtosis)
	}
	if outcome.Skipped > 0 {
		fmt.Fprintf(&b, "Rows skipped: %d\n", outcome.Skipped)
	}
	b.WriteString("\n")
	b.WriteString(outcome.Summary)
	return b.String()
}
