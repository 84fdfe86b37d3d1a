package groups

import (
	"errors"
	"math/rand"
	"testing"

	"tradestats/domain/core"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParametricTest_SeparatedGroups(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})

	r, err := analysis.RunParametricTest()
	require.NoError(t, err)

	// Equal variances of 2.5: se = 1, t = -5 on 8 degrees of freedom.
	assert.InDelta(t, -5.0, r.TStatistic, 1e-9)
	assert.InDelta(t, 8.0, r.DegreesOfFreedom, 1e-9)
	assert.InDelta(t, 0.00106, r.P, 3e-4)
	assert.Equal(t, -3.162, r.CohensD)

	report, err := analysis.Results()
	require.NoError(t, err)
	assert.Equal(t, 3.0, report.MeanA)
	assert.Equal(t, 8.0, report.MeanB)
	assert.Equal(t, r.P, report.PValue)
}

func TestRunParametricTest_MatchesReferenceWelch(t *testing.T) {
	analysis := mustLoad(t, []float64{2, 1, 3, 4}, []float64{6, 5, 7, 9})

	r, err := analysis.RunParametricTest()
	require.NoError(t, err)
	assert.InDelta(t, -3.9703446152237674, r.TStatistic, 1e-9)
	assert.InDelta(t, 5.584615384615385, r.DegreesOfFreedom, 1e-9)
	assert.InDelta(t, 0.0085128631313781695, r.P, 1e-6)
}

func TestRunParametricTest_SignFollowsMeanDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		base := make([]float64, 20)
		for j := range base {
			base[j] = rng.NormFloat64()
		}
		shift := rng.Float64()*4 - 2
		if shift == 0 {
			continue
		}
		shifted := make([]float64, len(base))
		for j, v := range base {
			shifted[j] = v + shift
		}

		analysis := mustLoad(t, shifted, base)
		r, err := analysis.RunParametricTest()
		require.NoError(t, err)
		assert.Equal(t, shift > 0, r.TStatistic > 0, "shift %v gave t %v", shift, r.TStatistic)
	}
}

func TestRunParametricTest_ZeroVarianceFails(t *testing.T) {
	analysis := mustLoad(t, []float64{5, 5, 5, 5}, []float64{5, 5, 5, 5})

	r, err := analysis.RunParametricTest()
	assert.Nil(t, r)
	assert.True(t, core.IsComputationError(err))
	assert.True(t, errors.Is(err, moremath.ErrZeroVariance), "got %v", err)

	_, err = analysis.Results()
	assert.True(t, core.IsNotComputedError(err), "failed run must not leave a result behind")
}

func TestRunParametricTest_SingleValueGroupFails(t *testing.T) {
	analysis := mustLoad(t, []float64{3}, []float64{1, 2, 4})

	_, err := analysis.RunParametricTest()
	assert.True(t, core.IsComputationError(err))
}

func TestRunParametricTest_OverflowFails(t *testing.T) {
	// The variance fits in a float64 but its square in the Welch-Satterthwaite
	// numerator does not.
	analysis := mustLoad(t, []float64{0, 1e150, 2e150}, []float64{1, 2, 3})

	r, err := analysis.RunParametricTest()
	assert.Nil(t, r)
	require.ErrorIs(t, err, core.ErrComputation)
	assert.Contains(t, err.Error(), "degrees of freedom")

	_, err = analysis.Results()
	assert.ErrorIs(t, err, core.ErrNotComputed)
}

func TestCohensD_OverflowFails(t *testing.T) {
	_, err := cohensD([]float64{1, 2}, []float64{3, 4}, 1.5e308, -1.5e308)
	require.ErrorIs(t, err, core.ErrComputation)
	assert.Contains(t, err.Error(), "cohen's d")
}

func TestRunNonParametricTest_CompleteSeparation(t *testing.T) {
	analysis := mustLoad(t, []float64{1, 1, 1}, []float64{2, 2, 2})

	r, err := analysis.RunNonParametricTest()
	require.NoError(t, err)
	assert.Equal(t, -1.0, r.CliffsDelta)
	assert.Equal(t, 0.0, r.UStatistic)
	assert.Greater(t, r.P, 0.0)
	assert.LessOrEqual(t, r.P, 1.0)
}

func TestRunNonParametricTest_IdenticalSamples(t *testing.T) {
	analysis := mustLoad(t, []float64{5, 5, 5, 5}, []float64{5, 5, 5, 5})

	r, err := analysis.RunNonParametricTest()
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.CliffsDelta)
	assert.Equal(t, 1.0, r.P)
	assert.Equal(t, 8.0, r.UStatistic)
}

func TestRunNonParametricTest_ReferenceP(t *testing.T) {
	analysis := mustLoad(t, []float64{2, 1, 3, 5}, []float64{12, 11, 13, 15})

	r, err := analysis.RunNonParametricTest()
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.UStatistic)
	assert.Equal(t, -1.0, r.CliffsDelta)
	assert.InDelta(t, 0.028571428571428577, r.P, 1e-9)
}

func TestCliffsDelta(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"A dominates", []float64{5, 6, 7}, []float64{1, 2, 3}, 1},
		{"B dominates", []float64{1, 2}, []float64{3, 4, 5}, -1},
		{"symmetric interleave", []float64{1, 2}, []float64{1, 2}, 0},
		{"partial overlap", []float64{1, 2, 3, 4}, []float64{3, 4, 5, 6}, -0.75},
		{"rounded", []float64{1, 2, 3}, []float64{2, 2, 2}, 0},
		{"thirds", []float64{1, 3, 5}, []float64{2, 4, 6}, -0.333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, comparePairs(tt.a, tt.b).cliffsDelta())
		})
	}
}

func TestEffectSizesAntisymmetric(t *testing.T) {
	a := []float64{2.5, 3.1, 4.7, 5.2, 6.8, 3.3}
	b := []float64{1.2, 2.4, 2.9, 3.8, 2.2}

	forward := mustLoad(t, a, b)
	backward := mustLoad(t, b, a)

	fp, err := forward.RunParametricTest()
	require.NoError(t, err)
	bp, err := backward.RunParametricTest()
	require.NoError(t, err)
	assert.Equal(t, fp.CohensD, -bp.CohensD)
	assert.InDelta(t, fp.TStatistic, -bp.TStatistic, 1e-12)
	assert.InDelta(t, fp.P, bp.P, 1e-12)

	fn, err := forward.RunNonParametricTest()
	require.NoError(t, err)
	bn, err := backward.RunNonParametricTest()
	require.NoError(t, err)
	assert.Equal(t, fn.CliffsDelta, -bn.CliffsDelta)
	assert.Equal(t, float64(len(a)*len(b)), fn.UStatistic+bn.UStatistic)
}

func TestCliffsDeltaBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := make([]float64, 1+rng.Intn(15))
		b := make([]float64, 1+rng.Intn(15))
		for j := range a {
			a[j] = float64(rng.Intn(10))
		}
		for j := range b {
			b[j] = float64(rng.Intn(10))
		}
		delta := comparePairs(a, b).cliffsDelta()
		assert.GreaterOrEqual(t, delta, -1.0)
		assert.LessOrEqual(t, delta, 1.0)
	}
}
