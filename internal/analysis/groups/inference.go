package groups

import (
	"errors"
	"math"

	"tradestats/domain/comparison"
	"tradestats/domain/core"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/montanaflynn/stats"
)

// RunParametricTest runs a two-sided Welch's t-test and computes Cohen's d.
//
// Welch's test does not pool variances: the standard error is
// sqrt(varA/nA + varB/nB) and the degrees of freedom follow Welch-Satterthwaite.
// Cohen's d divides the mean difference by sqrt((varA+varB)/2), using
// Bessel-corrected variances. A group with a single value, or two groups with no
// spread at all, fail with ErrComputation wrapping the library error.
func (a *Analysis) RunParametricTest() (*comparison.ParametricResult, error) {
	res, err := moremath.TwoSampleWelchTTest(
		moremath.Sample{Xs: a.groupA},
		moremath.Sample{Xs: a.groupB},
		moremath.LocationDiffers,
	)
	if err != nil {
		return nil, core.NewComputationError("welch t-test", err)
	}

	for _, check := range []struct {
		name string
		v    float64
	}{
		{"welch t statistic", res.T},
		{"welch degrees of freedom", res.DoF},
		{"welch p-value", res.P},
	} {
		if err := checkFinite(check.name, check.v); err != nil {
			return nil, err
		}
	}

	d, err := cohensD(a.groupA, a.groupB, a.meanA, a.meanB)
	if err != nil {
		return nil, err
	}

	a.parametric = &comparison.ParametricResult{
		TStatistic:       res.T,
		DegreesOfFreedom: res.DoF,
		P:                res.P,
		CohensD:          d,
	}
	return a.parametric, nil
}

// cohensD uses the unweighted average of the two sample variances.
func cohensD(groupA, groupB []float64, meanA, meanB float64) (float64, error) {
	varA, err := stats.SampleVariance(groupA)
	if err != nil {
		return 0, core.NewComputationError("variance of group A", err)
	}
	varB, err := stats.SampleVariance(groupB)
	if err != nil {
		return 0, core.NewComputationError("variance of group B", err)
	}

	if err := checkFinite("variance of group A", varA); err != nil {
		return 0, err
	}
	if err := checkFinite("variance of group B", varB); err != nil {
		return 0, err
	}

	pooled := math.Sqrt(varA/2 + varB/2)
	if pooled == 0 || math.IsNaN(pooled) {
		return 0, core.NewComputationError("cohen's d", moremath.ErrZeroVariance)
	}
	d := (meanA - meanB) / pooled
	if err := checkFinite("cohen's d", d); err != nil {
		return 0, err
	}
	return round3(d), nil
}

// RunNonParametricTest runs a two-sided Mann-Whitney U test and computes
// Cliff's Delta.
//
// U is reported for group A: the number of pairs (a, b) with a > b plus half
// the number of ties. When every observation in both groups is equal the rank
// test is undefined; the groups are then indistinguishable and the result is
// p = 1, U = |A||B|/2, delta = 0.
//
// Cost is O(|A|·|B|) because Cliff's Delta compares every pair. That is fine for
// the hundreds to low thousands of values typical of manual analysis; larger
// inputs should move to a rank-based O(n log n) count.
func (a *Analysis) RunNonParametricTest() (*comparison.NonParametricResult, error) {
	counts := comparePairs(a.groupA, a.groupB)

	p := 1.0
	res, err := moremath.MannWhitneyUTest(a.groupA, a.groupB, moremath.LocationDiffers)
	switch {
	case errors.Is(err, moremath.ErrSamplesEqual):
	case err != nil:
		return nil, core.NewComputationError("mann-whitney u test", err)
	default:
		p = res.P
	}

	a.nonParametric = &comparison.NonParametricResult{
		UStatistic:  counts.u(),
		P:           p,
		CliffsDelta: counts.cliffsDelta(),
	}
	return a.nonParametric, nil
}

// pairCounts tallies the all-pairs comparison of group A against group B.
type pairCounts struct {
	greater, less, ties int
	pairs               int
}

// comparePairs is quadratic in the sample sizes.
func comparePairs(groupA, groupB []float64) pairCounts {
	c := pairCounts{pairs: len(groupA) * len(groupB)}
	for _, x := range groupA {
		for _, y := range groupB {
			switch {
			case x > y:
				c.greater++
			case x < y:
				c.less++
			default:
				c.ties++
			}
		}
	}
	return c
}

func (c pairCounts) u() float64 {
	return float64(c.greater) + float64(c.ties)/2
}

func (c pairCounts) cliffsDelta() float64 {
	if c.pairs == 0 {
		return 0
	}
	return round3(float64(c.greater-c.less) / float64(c.pairs))
}
