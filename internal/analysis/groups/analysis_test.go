package groups

import (
	"errors"
	"math"
	"testing"

	"tradestats/domain/comparison"
	"tradestats/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, a, b []float64, opts ...Option) *Analysis {
	t.Helper()
	analysis, err := Load(a, b, opts...)
	require.NoError(t, err)
	return analysis
}

func TestLoad_ComputesCentres(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 2, 3, 4, 100}, []float64{6, 7, 8, 9})

	meanA, meanB := analysis.Means()
	assert.InDelta(t, 22.0, meanA, 1e-12)
	assert.InDelta(t, 7.5, meanB, 1e-12)

	medianA, medianB := analysis.Medians()
	assert.InDelta(t, 3.0, medianA, 1e-12)
	assert.InDelta(t, 7.5, medianB, 1e-12)

	assert.Equal(t, DefaultAlpha, analysis.Alpha())
}

func TestLoad_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		opts []Option
	}{
		{"empty group A", nil, []float64{1}, nil},
		{"empty group B", []float64{1}, []float64{}, nil},
		{"NaN", []float64{1, math.NaN()}, []float64{1}, nil},
		{"infinite", []float64{1}, []float64{math.Inf(-1)}, nil},
		{"alpha zero", []float64{1}, []float64{2}, []Option{WithAlpha(0)}},
		{"alpha one", []float64{1}, []float64{2}, []Option{WithAlpha(1)}},
		{"alpha negative", []float64{1}, []float64{2}, []Option{WithAlpha(-0.1)}},
		{"alpha NaN", []float64{1}, []float64{2}, []Option{WithAlpha(math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := Load(tt.a, tt.b, tt.opts...)
			assert.Nil(t, analysis)
			assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
		})
	}

	_, err := Load(nil, []float64{1})
	assert.ErrorIs(t, err, core.ErrEmptySample)
	assert.Contains(t, err.Error(), "group_a")

	_, err = Load([]float64{1}, []float64{2, math.NaN()})
	assert.ErrorIs(t, err, core.ErrNonFinite)
	assert.Contains(t, err.Error(), "group_b[1]")
}

func TestLoad_RejectsOverflow(t *testing.T) {
	tests := []struct {
		name   string
		groupA []float64
		want   string
	}{
		{"variance", []float64{1e200, 2e200, 3e200}, "variance of group A"},
		{"mean", []float64{1.7e308, 1.7e308}, "mean of group A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.groupA, []float64{1, 2, 3})
			require.ErrorIs(t, err, core.ErrComputation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_CopiesSamples(t *testing.T) {
	a := []float64{1, 2, 3}
	analysis := mustLoad(t, a, []float64{4, 5, 6})
	a[0] = 1000

	assert.Equal(t, []float64{1, 2, 3}, analysis.GroupA())
	meanA, _ := analysis.Means()
	assert.InDelta(t, 2.0, meanA, 1e-12)
}

func TestResults_NotComputed(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 2, 3}, []float64{4, 5, 6})

	_, err := analysis.Results()
	assert.True(t, core.IsNotComputedError(err))

	_, err = analysis.ResultsNonParametric()
	assert.True(t, core.IsNotComputedError(err))

	_, err = analysis.Result()
	assert.True(t, core.IsNotComputedError(err))

	_, err = analysis.Summarise()
	assert.True(t, core.IsNotComputedError(err))

	_, err = analysis.Significant()
	assert.True(t, core.IsNotComputedError(err))
}

func TestResults_OnlyRequestedPath(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 2, 3}, []float64{4, 5, 6})
	_, err := analysis.RunNonParametricTest()
	require.NoError(t, err)

	_, err = analysis.Results()
	assert.True(t, core.IsNotComputedError(err), "parametric results must not be readable")

	report, err := analysis.ResultsNonParametric()
	require.NoError(t, err)
	assert.Equal(t, 2.0, report.MedianA)
	assert.Equal(t, 5.0, report.MedianB)

	m := report.Map()
	assert.Contains(t, m, "median_group_a")
	assert.Contains(t, m, "median_group_b")
	assert.Len(t, m, 5)
}

func TestResult_ParametricTakesPrecedence(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})
	_, err := analysis.RunNonParametricTest()
	require.NoError(t, err)

	r, err := analysis.Result()
	require.NoError(t, err)
	assert.Equal(t, comparison.TestNonParametric, r.Kind())

	_, err = analysis.RunParametricTest()
	require.NoError(t, err)

	r, err = analysis.Result()
	require.NoError(t, err)
	assert.Equal(t, comparison.TestParametric, r.Kind())
}
