package groups

import (
	"math"

	"tradestats/domain/comparison"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Default group labels used by Describe, Summarise and PlotDistributions.
const (
	DefaultLabelA = "Group A"
	DefaultLabelB = "Group B"
)

// Describe reports count, extremes, centre, spread and shape for both groups.
// It does not modify the analysis.
func (a *Analysis) Describe() comparison.Descriptives {
	return comparison.Descriptives{
		GroupA: describeGroup(DefaultLabelA, a.groupA),
		GroupB: describeGroup(DefaultLabelB, a.groupB),
	}
}

// describeGroup relies on Load having rejected empty and non-finite samples,
// so the library calls below cannot fail.
func describeGroup(label string, data []float64) comparison.GroupStats {
	gs := comparison.GroupStats{Label: label, Count: len(data)}

	gs.Min, _ = stats.Min(data)
	gs.Max, _ = stats.Max(data)
	gs.Mean, _ = stats.Mean(data)
	gs.Median, _ = stats.Median(data)

	// n = 1 has no sample standard deviation; it stays 0.
	if len(data) > 1 {
		gs.StdDev, _ = stats.StandardDeviationSample(data)
	}
	gs.Skewness, gs.Kurtosis = shape(data, gs.Mean)

	return gs
}

// shape returns the moment-based skewness g1 = m3/m2^1.5 and excess kurtosis
// g2 = m4/m2^2 - 3, where mk are the biased central moments. A sample with no
// spread has neither, and both are reported as 0.
//
// Deviations are scaled by sqrt(m2) first so that m4 stays in range for values
// whose fourth power would overflow.
func shape(data []float64, mean float64) (skewness, kurtosis float64) {
	m2 := stat.MomentAbout(2, data, mean, nil)
	if len(data) < 2 || m2 == 0 || math.IsNaN(m2) || math.IsInf(m2, 0) {
		return 0, 0
	}
	scale := math.Sqrt(m2)
	z := make([]float64, len(data))
	for i, v := range data {
		z[i] = (v - mean) / scale
	}

	skewness = stat.MomentAbout(3, z, 0, nil)
	kurtosis = stat.MomentAbout(4, z, 0, nil) - 3
	return skewness, kurtosis
}
