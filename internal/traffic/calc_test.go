package traffic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakHourFlow(t *testing.T) {
	t.Parallel()

	am, err := PeakHourFlow(20000, AM)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, am)

	pm, err := PeakHourFlow(20000, PM)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, pm)
}

func TestPeakHourFlowRejectsOffPeak(t *testing.T) {
	t.Parallel()

	for _, p := range []Period{MD, EVE, NT} {
		_, err := PeakHourFlow(1000, p)
		assert.Error(t, err, "period %s", p)
	}
}

func TestPCEFlow(t *testing.T) {
	t.Parallel()

	// 900 autos at 1.0 plus 100 trucks at 2.0.
	assert.Equal(t, 1100.0, PCEFlow(1000, 100))
	assert.Equal(t, 0.0, PCEFlow(0, 0))
}

func TestLaneCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8000.0, LaneCapacity(4))
	assert.Equal(t, 0.0, LaneCapacity(0))
}

func TestVCRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.5, VCRatio(4000, 8000))
	assert.True(t, math.IsNaN(VCRatio(4000, 0)))
	assert.True(t, math.IsNaN(VCRatio(4000, -1)))
}

func TestGradeFromVC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vc   float64
		want Grade
	}{
		{0.0, GradeA},
		{0.35, GradeA}, // inclusive upper bound
		{0.36, GradeB},
		{0.54, GradeB},
		{0.77, GradeC},
		{0.93, GradeD},
		{1.00, GradeE},
		{1.01, GradeF},
		{2.5, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFromVC(tt.vc), "vc=%g", tt.vc)
	}

	assert.Equal(t, GradeNA, GradeFromVC(math.NaN()))
}

func TestGradeFromVCMonotonic(t *testing.T) {
	t.Parallel()

	// Grades never improve as V/C grows.
	prev := GradeA
	for vc := 0.0; vc <= 1.5; vc += 0.01 {
		g := GradeFromVC(vc)
		assert.GreaterOrEqual(t, g.Rank(), prev.Rank(), "vc=%g", vc)
		prev = g
	}
}

func TestGradeDescription(t *testing.T) {
	t.Parallel()

	for _, g := range Grades() {
		assert.NotEmpty(t, GradeDescription(g))
	}
	assert.Contains(t, GradeDescription(GradeNA), "Undefined")
}
