package traffic

import (
	"fmt"
	"math"
)

// Range is an advisory plausibility band for a computed metric. Values
// outside the band are reported, never rejected; validation is a warning
// channel, not a correctness gate.
type Range struct {
	Name string
	Min  float64
	Max  float64
}

// Advisory validation bands for computed metrics.
var (
	RangeAADT     = Range{Name: "aadt", Min: 0, Max: 500000}
	RangePeakFlow = Range{Name: "peak_flow", Min: 0, Max: 25000}
	RangeLanes    = Range{Name: "lanes", Min: 1, Max: 10}
	RangeVCRatio  = Range{Name: "vc_ratio", Min: 0, Max: 3.0}
	RangeTruckPct = Range{Name: "truck_pct", Min: 0, Max: 100}
)

// Check counts values outside the band and returns human-readable findings,
// one per violated bound. NaN values are skipped: an undefined metric is
// not an implausible one. An empty slice means every value is in range.
func (r Range) Check(column string, values []float64) []string {
	var belowMin, aboveMax int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < r.Min {
			belowMin++
		}
		if v > r.Max {
			aboveMax++
		}
	}

	var findings []string
	if belowMin > 0 {
		findings = append(findings, fmt.Sprintf("%d values in %q below minimum (%g)", belowMin, column, r.Min))
	}
	if aboveMax > 0 {
		findings = append(findings, fmt.Sprintf("%d values in %q above maximum (%g)", aboveMax, column, r.Max))
	}
	return findings
}
