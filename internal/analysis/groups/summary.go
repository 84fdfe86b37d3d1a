package groups

import (
	"fmt"
	"strings"
)

const (
	verdictSignificant    = "Statistically significant difference between groups."
	verdictNotSignificant = "No statistically significant difference between groups."
	summaryRule           = "============================================================"
)

// Summarise renders a human-readable verdict for the preferred computed result.
// The parametric path takes precedence; when only the non-parametric path has
// run the U statistic and Cliff's Delta are reported instead.
func (a *Analysis) Summarise() (string, error) {
	r, err := a.Result()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintln(&b, summaryRule)
	fmt.Fprintf(&b, "Group A mean: %.3f | Group B mean: %.3f\n", a.meanA, a.meanB)
	fmt.Fprintf(&b, "Group A median: %.3f | Group B median: %.3f\n", a.medianA, a.medianB)
	fmt.Fprintf(&b, "%s: %.3f\n", r.StatisticLabel(), r.Statistic())
	fmt.Fprintf(&b, "%s (effect size): %.3f (%s)\n", r.EffectSizeLabel(), r.EffectSize(), r.Magnitude())
	fmt.Fprintf(&b, "p-value: %.4g (alpha %.3g)\n", r.PValue(), a.alpha)
	if r.PValue() < a.alpha {
		fmt.Fprintln(&b, verdictSignificant)
	} else {
		fmt.Fprintln(&b, verdictNotSignificant)
	}
	fmt.Fprintln(&b, summaryRule)

	return b.String(), nil
}

// DescribeText renders Describe as an aligned plain-text block.
func (a *Analysis) DescribeText() string {
	var b strings.Builder
	fmt.Fprintln(&b, "Descriptive Statistics:")
	fmt.Fprintln(&b, summaryRule)
	for _, g := range a.Describe().Groups() {
		fmt.Fprintf(&b, "%s:\n", g.Label)
		fmt.Fprintf(&b, "  n        : %d\n", g.Count)
		fmt.Fprintf(&b, "  Min      : %.3f\n", g.Min)
		fmt.Fprintf(&b, "  Max      : %.3f\n", g.Max)
		fmt.Fprintf(&b, "  Mean     : %.3f\n", g.Mean)
		fmt.Fprintf(&b, "  Median   : %.3f\n", g.Median)
		fmt.Fprintf(&b, "  Std Dev  : %.3f\n", g.StdDev)
		fmt.Fprintf(&b, "  Skew     : %.3f\n", g.Skewness)
		fmt.Fprintf(&b, "  Kurtosis : %.3f\n", g.Kurtosis)
		fmt.Fprintln(&b, strings.Repeat("-", len(summaryRule)))
	}
	return b.String()
}
