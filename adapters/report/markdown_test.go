package report

import (
	"context"
	"strings"
	"testing"

	"tradestats/app"
	"tradestats/internal"
	"tradestats/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compare(t *testing.T, req app.ComparisonRequest) *app.ComparisonOutcome {
	t.Helper()
	svc := app.NewComparisonService(nil, config.AnalysisConfig{}, config.PlotConfig{}, internal.NewDiscardLogger())
	outcome, err := svc.Compare(context.Background(), req)
	require.NoError(t, err)
	return outcome
}

func TestMarkdownBothPaths(t *testing.T) {
	outcome := compare(t, app.ComparisonRequest{
		GroupA: []float64{1, 2, 3, 4, 5},
		GroupB: []float64{6, 7, 8, 9, 10},
		Test:   "both",
		LabelA: "north",
		LabelB: "south|east",
	})

	md := Markdown(outcome)
	assert.True(t, strings.HasPrefix(md, "# north vs south|east\n"))
	assert.Contains(t, md, "## Descriptive statistics")
	assert.Contains(t, md, "| north | 5 | 1.000 | 5.000 | 3.000 | 3.000 |")
	assert.Contains(t, md, `| south\|east | 5 |`)
	assert.Contains(t, md, "## Welch's t-test")
	assert.Contains(t, md, "| t-statistic | -5.0000 |")
	assert.Contains(t, md, "| Cohen's d | -3.162 (large) |")
	assert.Contains(t, md, "## Mann-Whitney U test")
	assert.Contains(t, md, "| Cliff's Delta | -1.000 (large) |")
	assert.Contains(t, md, "**Statistically significant**")
}

func TestMarkdownNonParametricOnly(t *testing.T) {
	outcome := compare(t, app.ComparisonRequest{
		GroupA: []float64{1, 2, 3},
		GroupB: []float64{1, 2, 3},
		Test:   "nonparametric",
	})

	md := Markdown(outcome)
	assert.NotContains(t, md, "Welch")
	assert.Contains(t, md, "| U-statistic | 4.5 |")
	assert.Contains(t, md, "**No statistically significant**")
}

func TestHTML(t *testing.T) {
	outcome := compare(t, app.ComparisonRequest{
		GroupA: []float64{1, 2, 3, 4, 5},
		GroupB: []float64{6, 7, 8, 9, 10},
	})

	page := string(HTML(outcome))
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<title>Group A vs Group B</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<strong>Statistically significant</strong>")
}

func TestText(t *testing.T) {
	outcome := compare(t, app.ComparisonRequest{
		GroupA: []float64{2, 4, 4, 4, 5, 5, 7, 9},
		GroupB: []float64{1, 2, 3, 4},
		LabelA: "north",
	})

	text := Text(outcome)
	assert.True(t, strings.HasPrefix(text, "north vs Group B\n"))
	assert.Contains(t, text, "  Mean     : 5.000\n")
	assert.Contains(t, text, "  Std Dev  : 2.138\n")
	assert.Contains(t, text, "t-statistic")
	assert.NotContains(t, text, "Rows skipped")
}
