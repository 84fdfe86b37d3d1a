package comparison

import (
	"fmt"
	"math"
)

// ============================================================================
// TEST PATHS
// ============================================================================

// TestKind selects which hypothesis test path a comparison runs.
type TestKind string

const (
	TestParametric    TestKind = "parametric"    // Welch's t-test + Cohen's d
	TestNonParametric TestKind = "nonparametric" // Mann-Whitney U + Cliff's Delta
	TestBoth          TestKind = "both"
)

// ParseTestKind accepts the canonical names plus a few common aliases.
func ParseTestKind(s string) (TestKind, error) {
	switch s {
	case "parametric", "welch", "ttest", "t-test":
		return TestParametric, nil
	case "nonparametric", "non-parametric", "mannwhitney", "mann-whitney", "utest":
		return TestNonParametric, nil
	case "both", "all":
		return TestBoth, nil
	}
	return "", fmt.Errorf("unknown test kind %q (want parametric, nonparametric or both)", s)
}

// IncludesParametric reports whether the parametric path should run.
func (k TestKind) IncludesParametric() bool {
	return k == TestParametric || k == TestBoth
}

// IncludesNonParametric reports whether the non-parametric path should run.
func (k TestKind) IncludesNonParametric() bool {
	return k == TestNonParametric || k == TestBoth
}

// ============================================================================
// TEST RESULTS
// ============================================================================

// TestResult is the tagged result of one test path. The two implementations are
// ParametricResult and NonParametricResult.
type TestResult interface {
	Kind() TestKind
	PValue() float64
	// Statistic returns the primary test statistic (t or U).
	Statistic() float64
	// EffectSize returns Cohen's d or Cliff's Delta.
	EffectSize() float64
	StatisticLabel() string
	EffectSizeLabel() string
	Magnitude() Magnitude
}

// ParametricResult holds a two-sided Welch's t-test and Cohen's d.
type ParametricResult struct {
	TStatistic       float64 `json:"t_statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	P                float64 `json:"p_value"`
	CohensD          float64 `json:"cohen_d"` // rounded to 3 decimals
}

func (r ParametricResult) Kind() TestKind          { return TestParametric }
func (r ParametricResult) PValue() float64         { return r.P }
func (r ParametricResult) Statistic() float64      { return r.TStatistic }
func (r ParametricResult) EffectSize() float64     { return r.CohensD }
func (r ParametricResult) StatisticLabel() string  { return "t-statistic" }
func (r ParametricResult) EffectSizeLabel() string { return "Cohen's d" }
func (r ParametricResult) Magnitude() Magnitude    { return CohenMagnitude(r.CohensD) }

// NonParametricResult holds a two-sided Mann-Whitney U test and Cliff's Delta.
type NonParametricResult struct {
	UStatistic  float64 `json:"mannwhitney_u"`
	P           float64 `json:"p_value"`
	CliffsDelta float64 `json:"cliffs_delta"` // in [-1,1], rounded to 3 decimals
}

func (r NonParametricResult) Kind() TestKind          { return TestNonParametric }
func (r NonParametricResult) PValue() float64         { return r.P }
func (r NonParametricResult) Statistic() float64      { return r.UStatistic }
func (r NonParametricResult) EffectSize() float64     { return r.CliffsDelta }
func (r NonParametricResult) StatisticLabel() string  { return "U-statistic" }
func (r NonParametricResult) EffectSizeLabel() string { return "Cliff's Delta" }
func (r NonParametricResult) Magnitude() Magnitude    { return CliffMagnitude(r.CliffsDelta) }

// ============================================================================
// STRUCTURED REPORTS
// ============================================================================

// ParametricReport is the structured output of the parametric path.
type ParametricReport struct {
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`
	CohensD    float64 `json:"cohen_d"`
	MeanA      float64 `json:"mean_group_a"`
	MeanB      float64 `json:"mean_group_b"`
}

// Map returns the report keyed the same way as its JSON encoding.
func (r ParametricReport) Map() map[string]float64 {
	return map[string]float64{
		"t_statistic":  r.TStatistic,
		"p_value":      r.PValue,
		"cohen_d":      r.CohensD,
		"mean_group_a": r.MeanA,
		"mean_group_b": r.MeanB,
	}
}

// NonParametricReport is the structured output of the non-parametric path.
type NonParametricReport struct {
	UStatistic  float64 `json:"mannwhitney_u"`
	PValue      float64 `json:"p_value"`
	CliffsDelta float64 `json:"cliffs_delta"`
	MedianA     float64 `json:"median_group_a"`
	MedianB     float64 `json:"median_group_b"`
}

// Map returns the report keyed the same way as its JSON encoding.
func (r NonParametricReport) Map() map[string]float64 {
	return map[string]float64{
		"mannwhitney_u":  r.UStatistic,
		"p_value":        r.PValue,
		"cliffs_delta":   r.CliffsDelta,
		"median_group_a": r.MedianA,
		"median_group_b": r.MedianB,
	}
}

// ============================================================================
// DESCRIPTIVE STATISTICS
// ============================================================================

// GroupStats summarises one sample.
//
// StdDev is the Bessel-corrected sample standard deviation. It is undefined for
// a single value and reported as 0 then, as are Skewness and Kurtosis for
// groups with fewer than two values or no spread.
type GroupStats struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`  // Bessel-corrected
	Skewness float64 `json:"skewness"` // g1
	Kurtosis float64 `json:"kurtosis"` // excess (g2)
}

// Descriptives pairs the summaries of both groups.
type Descriptives struct {
	GroupA GroupStats `json:"group_a"`
	GroupB GroupStats `json:"group_b"`
}

// Groups returns both summaries in A, B order.
func (d Descriptives) Groups() []GroupStats {
	return []GroupStats{d.GroupA, d.GroupB}
}

// ============================================================================
// EFFECT SIZE MAGNITUDE
// ============================================================================

// Magnitude is a conventional verbal label for an effect size.
type Magnitude string

const (
	MagnitudeNegligible Magnitude = "negligible"
	MagnitudeSmall      Magnitude = "small"
	MagnitudeMedium     Magnitude = "medium"
	MagnitudeLarge      Magnitude = "large"
)

// Cohen's d guidance thresholds.
const (
	CohenSmall  = 0.2
	CohenMedium = 0.5
	CohenLarge  = 0.8
)

// Cliff's Delta guidance thresholds.
const (
	CliffSmall  = 0.1
	CliffMedium = 0.3
	CliffLarge  = 0.5
)

// CohenMagnitude labels |d| against 0.2 / 0.5 / 0.8.
func CohenMagnitude(d float64) Magnitude {
	return classify(math.Abs(d), CohenSmall, CohenMedium, CohenLarge)
}

// CliffMagnitude labels |delta| against 0.1 / 0.3 / 0.5.
func CliffMagnitude(delta float64) Magnitude {
	return classify(math.Abs(delta), CliffSmall, CliffMedium, CliffLarge)
}

func classify(v, small, medium, large float64) Magnitude {
	switch {
	case v >= large:
		return MagnitudeLarge
	case v >= medium:
		return MagnitudeMedium
	case v >= small:
		return MagnitudeSmall
	default:
		return MagnitudeNegligible
	}
}

// ============================================================================
// SAMPLE SOURCING
// ============================================================================

// SampleQuery describes which values a sample source should load and how to
// split them into the two groups.
type SampleQuery struct {
	Table       string `json:"table,omitempty"` // SQL sources only
	ValueColumn string `json:"value_column"`
	GroupColumn string `json:"group_column"`
	GroupA      string `json:"group_a"`
	GroupB      string `json:"group_b"`
}

// Validate checks that the query names every column and label it needs.
func (q SampleQuery) Validate() error {
	if q.ValueColumn == "" {
		return fmt.Errorf("value column is required")
	}
	if q.GroupColumn == "" {
		return fmt.Errorf("group column is required")
	}
	if q.GroupA == "" || q.GroupB == "" {
		return fmt.Errorf("both group labels are required")
	}
	if q.GroupA == q.GroupB {
		return fmt.Errorf("group labels must differ, got %q twice", q.GroupA)
	}
	return nil
}

// SamplePair is the pair of samples a source produced for a query.
type SamplePair struct {
	Query  SampleQuery `json:"query"`
	GroupA []float64   `json:"group_a"`
	GroupB []float64   `json:"group_b"`
	// Skipped counts rows dropped because the value was missing or unparseable.
	Skipped int `json:"skipped"`
}
