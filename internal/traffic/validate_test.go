package traffic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeCheck(t *testing.T) {
	t.Parallel()

	r := Range{Name: "vc_ratio", Min: 0, Max: 3.0}

	findings := r.Check("AM_VC_RATIO", []float64{0.5, 1.2, 3.5, -0.1, 4.0})
	assert.Len(t, findings, 2)
	assert.Contains(t, findings[0], "below minimum")
	assert.Contains(t, findings[1], "2 values")
	assert.Contains(t, findings[1], "AM_VC_RATIO")
}

func TestRangeCheckInRange(t *testing.T) {
	t.Parallel()

	findings := RangeTruckPct.Check("TRUCK_PCT", []float64{0, 15, 100})
	assert.Empty(t, findings)
}

func TestRangeCheckSkipsNaN(t *testing.T) {
	t.Parallel()

	findings := RangeVCRatio.Check("PM_VC_RATIO", []float64{math.NaN(), math.NaN()})
	assert.Empty(t, findings)
}
