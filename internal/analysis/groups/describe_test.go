package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	analysis := mustLoad(t, []float64{2, 4, 4, 4, 5, 5, 7, 9}, []float64{1, 2, 3})
	before := analysis.GroupA()

	d := analysis.Describe()

	a := d.GroupA
	assert.Equal(t, DefaultLabelA, a.Label)
	assert.Equal(t, 8, a.Count)
	assert.Equal(t, 2.0, a.Min)
	assert.Equal(t, 9.0, a.Max)
	assert.InDelta(t, 5.0, a.Mean, 1e-12)
	assert.InDelta(t, 4.5, a.Median, 1e-12)
	assert.InDelta(t, 2.138, a.StdDev, 5e-4)
	// Biased moments: m2 = 4, m3 = 5.25, m4 = 44.5.
	assert.InDelta(t, 0.65625, a.Skewness, 1e-9)
	assert.InDelta(t, -0.21875, a.Kurtosis, 1e-9)

	b := d.GroupB
	assert.Equal(t, DefaultLabelB, b.Label)
	assert.Equal(t, 3, b.Count)
	assert.InDelta(t, 1.0, b.StdDev, 1e-12)
	assert.InDelta(t, 0.0, b.Skewness, 1e-12)
	assert.InDelta(t, -1.5, b.Kurtosis, 1e-12)

	assert.Equal(t, before, analysis.GroupA(), "Describe must not mutate the samples")
	_, err := analysis.Result()
	assert.Error(t, err, "Describe must not compute a test result")
}

func TestDescribe_DegenerateGroups(t *testing.T) {
	analysis := mustLoad(t, []float64{7}, []float64{3, 3, 3})

	d := analysis.Describe()
	assert.Equal(t, 1, d.GroupA.Count)
	assert.Equal(t, 0.0, d.GroupA.StdDev)
	assert.Equal(t, 0.0, d.GroupA.Skewness)
	assert.Equal(t, 0.0, d.GroupA.Kurtosis)

	assert.Equal(t, 0.0, d.GroupB.StdDev)
	assert.Equal(t, 0.0, d.GroupB.Skewness)
	assert.Equal(t, 0.0, d.GroupB.Kurtosis)
}

func TestDescribe_ShapeIsScaleInvariant(t *testing.T) {
	small := mustLoad(t, []float64{1, 2, 3, 10}, []float64{1, 2}).Describe().GroupA
	large := mustLoad(t, []float64{1e80, 2e80, 3e80, 10e80}, []float64{1, 2}).Describe().GroupA

	assert.InDelta(t, small.Skewness, large.Skewness, 1e-9)
	assert.InDelta(t, small.Kurtosis, large.Kurtosis, 1e-9)
	assert.NotEqual(t, 0.0, large.Kurtosis)
}

func TestDescribeText(t *testing.T) {
	analysis := mustLoad(t, []float64{2, 4, 4, 4, 5, 5, 7, 9}, []float64{1, 2, 3})

	text := analysis.DescribeText()
	assert.Contains(t, text, "Group A:")
	assert.Contains(t, text, "Group B:")
	assert.Contains(t, text, "Std Dev  : 2.138")
	assert.Contains(t, text, "Mean     : 5.000")
}
