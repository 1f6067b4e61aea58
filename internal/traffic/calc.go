package traffic

import (
	"fmt"
	"math"
)

// Fixed engineering constants. These follow HCM 2010 guidance and the
// regional model they were calibrated against; they are compile-time fixed,
// not runtime configuration.
const (
	// AMPeakFactor and PMPeakFactor give the fraction of a 4-hour period
	// volume occurring in the single peak hour.
	AMPeakFactor = 0.40
	PMPeakFactor = 0.30

	// Passenger-car-equivalent weights per vehicle class.
	AutoPCE        = 1.0
	LightTruckPCE  = 1.5
	MediumTruckPCE = 2.0
	HeavyTruckPCE  = 2.5

	// TruckPCEAvg is the simplified average truck weight used by the
	// capacity stage: (1.5 + 2.0 + 2.5) / 3.
	TruckPCEAvg = 2.0

	// CapacityPerLane is the standard freeway capacity in PCE per hour
	// per lane.
	CapacityPerLane = 2000
)

// losThresholds are inclusive upper V/C bounds evaluated in ascending
// order; the first grade whose threshold is not exceeded wins. F is the
// catch-all.
var losThresholds = []struct {
	Grade     Grade
	Threshold float64
}{
	{GradeA, 0.35},
	{GradeB, 0.54},
	{GradeC, 0.77},
	{GradeD, 0.93},
	{GradeE, 1.00},
}

// PeakHourFlow converts a period volume to a peak-hour volume using the
// fixed peaking factor for the period. Only AM and PM have peaking factors.
func PeakHourFlow(periodFlow float64, p Period) (float64, error) {
	switch p {
	case AM:
		return periodFlow * AMPeakFactor, nil
	case PM:
		return periodFlow * PMPeakFactor, nil
	}
	return 0, fmt.Errorf("period must be AM or PM, got %s", p)
}

// PCEFlow converts a mixed vehicle flow to passenger-car equivalents using
// the average truck weight. Since total = auto + truck,
// auto*1.0 + truck*2.0 reduces to total + truck.
func PCEFlow(totalFlow, truckFlow float64) float64 {
	return totalFlow + truckFlow
}

// LaneCapacity returns roadway capacity in PCE/hour for a lane count.
func LaneCapacity(lanes float64) float64 {
	return lanes * CapacityPerLane
}

// VCRatio returns the volume-to-capacity ratio, or NaN when capacity is not
// positive. Callers must treat NaN as "undefined", never as a number.
func VCRatio(pceFlow, capacity float64) float64 {
	if capacity <= 0 {
		return math.NaN()
	}
	return pceFlow / capacity
}

// GradeFromVC maps a V/C ratio to a Level of Service grade. NaN maps to
// GradeNA; anything above the E threshold is GradeF.
func GradeFromVC(vc float64) Grade {
	if math.IsNaN(vc) {
		return GradeNA
	}
	for _, t := range losThresholds {
		if vc <= t.Threshold {
			return t.Grade
		}
	}
	return GradeF
}

// GradeDescription returns the HCM flow-condition summary for a grade.
func GradeDescription(g Grade) string {
	switch g {
	case GradeA:
		return "Free flow"
	case GradeB:
		return "Reasonably free flow"
	case GradeC:
		return "Stable flow"
	case GradeD:
		return "Approaching unstable flow"
	case GradeE:
		return "Unstable flow"
	case GradeF:
		return "Forced flow / breakdown"
	}
	return "Undefined (zero capacity)"
}
