// Package groups compares two independent numeric samples.
//
// An Analysis is loaded once with both samples and a significance level, then
// runs either or both test paths:
//
//   - parametric: Welch's t-test with Cohen's d
//   - non-parametric: Mann-Whitney U with Cliff's Delta
//
// and reports descriptive statistics, a verdict, structured results and an
// overlaid histogram. An Analysis is not safe for concurrent use; each caller
// owns its own.
package groups

import (
	"errors"
	"fmt"
	"math"

	"tradestats/domain/comparison"
	"tradestats/domain/core"

	"github.com/montanaflynn/stats"
)

// DefaultAlpha is the significance level used when none is supplied.
const DefaultAlpha = 0.05

// Analysis holds two samples and the results computed over them.
type Analysis struct {
	groupA []float64
	groupB []float64
	alpha  float64

	meanA, meanB     float64
	medianA, medianB float64

	parametric    *comparison.ParametricResult
	nonParametric *comparison.NonParametricResult
}

// Option configures Load.
type Option func(*Analysis)

// WithAlpha sets the significance level. It must lie in (0,1).
func WithAlpha(alpha float64) Option {
	return func(a *Analysis) {
		a.alpha = alpha
	}
}

// Load validates and copies both samples and computes their means and medians.
func Load(groupA, groupB []float64, opts ...Option) (*Analysis, error) {
	a := &Analysis{alpha: DefaultAlpha}
	for _, opt := range opts {
		opt(a)
	}

	if !(a.alpha > 0 && a.alpha < 1) {
		return nil, core.ErrInvalidAlpha
	}
	if err := validateSample("group_a", groupA); err != nil {
		return nil, err
	}
	if err := validateSample("group_b", groupB); err != nil {
		return nil, err
	}

	a.groupA = append([]float64(nil), groupA...)
	a.groupB = append([]float64(nil), groupB...)

	var err error
	if a.meanA, err = stats.Mean(a.groupA); err != nil {
		return nil, core.NewComputationError("mean of group A", err)
	}
	if a.meanB, err = stats.Mean(a.groupB); err != nil {
		return nil, core.NewComputationError("mean of group B", err)
	}
	if a.medianA, err = stats.Median(a.groupA); err != nil {
		return nil, core.NewComputationError("median of group A", err)
	}
	if a.medianB, err = stats.Median(a.groupB); err != nil {
		return nil, core.NewComputationError("median of group B", err)
	}
	if err := checkFinite("mean of group A", a.meanA); err != nil {
		return nil, err
	}
	if err := checkFinite("mean of group B", a.meanB); err != nil {
		return nil, err
	}
	if err := checkFinite("median of group A", a.medianA); err != nil {
		return nil, err
	}
	if err := checkFinite("median of group B", a.medianB); err != nil {
		return nil, err
	}
	// Descriptives always report spread, so an overflowing variance fails
	// here rather than only on the parametric path.
	if err := checkSpread("variance of group A", a.groupA); err != nil {
		return nil, err
	}
	if err := checkSpread("variance of group B", a.groupB); err != nil {
		return nil, err
	}

	return a, nil
}

// errOverflow marks a statistic that left the float64 range although every
// input was finite.
var errOverflow = errors.New("result is not finite; values are too large")

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return core.NewComputationError(name, errOverflow)
	}
	return nil
}

func checkSpread(name string, sample []float64) error {
	if len(sample) < 2 {
		return nil
	}
	v, err := stats.SampleVariance(sample)
	if err != nil {
		return core.NewComputationError(name, err)
	}
	return checkFinite(name, v)
}

func validateSample(field string, sample []float64) error {
	if len(sample) == 0 {
		return fmt.Errorf("%w: %s", core.ErrEmptySample, field)
	}
	for i, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] = %v", core.ErrNonFinite, field, i, v)
		}
	}
	return nil
}

// Alpha returns the significance level.
func (a *Analysis) Alpha() float64 { return a.alpha }

// GroupA returns a copy of the first sample.
func (a *Analysis) GroupA() []float64 { return append([]float64(nil), a.groupA...) }

// GroupB returns a copy of the second sample.
func (a *Analysis) GroupB() []float64 { return append([]float64(nil), a.groupB...) }

// Means returns the means of group A and group B.
func (a *Analysis) Means() (float64, float64) { return a.meanA, a.meanB }

// Medians returns the medians of group A and group B.
func (a *Analysis) Medians() (float64, float64) { return a.medianA, a.medianB }

// Parametric returns the parametric result, or ErrNotComputed.
func (a *Analysis) Parametric() (comparison.ParametricResult, error) {
	if a.parametric == nil {
		return comparison.ParametricResult{}, core.NewNotComputedError(string(comparison.TestParametric))
	}
	return *a.parametric, nil
}

// NonParametric returns the non-parametric result, or ErrNotComputed.
func (a *Analysis) NonParametric() (comparison.NonParametricResult, error) {
	if a.nonParametric == nil {
		return comparison.NonParametricResult{}, core.NewNotComputedError(string(comparison.TestNonParametric))
	}
	return *a.nonParametric, nil
}

// Result returns the preferred computed result. The parametric path takes
// precedence when both have run.
func (a *Analysis) Result() (comparison.TestResult, error) {
	switch {
	case a.parametric != nil:
		return *a.parametric, nil
	case a.nonParametric != nil:
		return *a.nonParametric, nil
	}
	return nil, core.NewNotComputedError("any")
}

// Results returns the structured parametric results.
func (a *Analysis) Results() (comparison.ParametricReport, error) {
	r, err := a.Parametric()
	if err != nil {
		return comparison.ParametricReport{}, err
	}
	return comparison.ParametricReport{
		TStatistic: r.TStatistic,
		PValue:     r.P,
		CohensD:    r.CohensD,
		MeanA:      a.meanA,
		MeanB:      a.meanB,
	}, nil
}

// ResultsNonParametric returns the structured non-parametric results.
func (a *Analysis) ResultsNonParametric() (comparison.NonParametricReport, error) {
	r, err := a.NonParametric()
	if err != nil {
		return comparison.NonParametricReport{}, err
	}
	return comparison.NonParametricReport{
		UStatistic:  r.UStatistic,
		PValue:      r.P,
		CliffsDelta: r.CliffsDelta,
		MedianA:     a.medianA,
		MedianB:     a.medianB,
	}, nil
}

// Significant reports whether the preferred result's p-value is below alpha.
func (a *Analysis) Significant() (bool, error) {
	r, err := a.Result()
	if err != nil {
		return false, err
	}
	return r.PValue() < a.alpha, nil
}

// round3 rounds to 3 decimal places.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
