package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// ComputeTruckMetrics derives the truck-specific fields: truck intensity
// (daily truck volume per lane, lane count taken from lanePeriod) and the
// AM/PM peak truck ratios. Requires the AADT and peak stages to have run.
func ComputeTruckMetrics(t *traffic.Table, lanePeriod traffic.Period) (*traffic.Table, error) {
	if lanePeriod < traffic.AM || lanePeriod > traffic.NT {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, lanePeriod)
	}
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}
	if missing := t.MissingColumns(traffic.LaneColumn(lanePeriod)); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, missing[0])
	}

	out := t.Clone()
	for i := range out.Segments {
		s := &out.Segments[i]

		if lanes := s.Lanes[lanePeriod]; lanes > 0 {
			s.TruckIntensity = s.TruckAADT / lanes
		} else {
			s.TruckIntensity = 0
		}

		s.AMTruckRatio = truckRatio(s, traffic.AM)
		s.PMTruckRatio = truckRatio(s, traffic.PM)
	}
	out.HasTruck = true

	monitoring.Stepf("truck", "computed truck metrics for %d segments (lanes from %s)",
		len(out.Segments), lanePeriod)
	return out, nil
}

// truckRatio is the peak truck share of the peak total, in percent.
func truckRatio(s *traffic.Segment, p traffic.Period) float64 {
	k := p.PeakIndex()
	if s.PeakTotal[k] <= 0 {
		return 0
	}
	return 100 * s.PeakTruck[k] / s.PeakTotal[k]
}

// TruckGroup summarizes truck metrics for one (direction, facility) group.
type TruckGroup struct {
	Direction traffic.Direction
	Facility  traffic.Facility

	Count              int
	MeanTruckAADT      float64
	MeanTruckPct       float64
	MeanTruckIntensity float64
	MeanAMTruckRatio   float64
	MeanPMTruckRatio   float64
}

// GroupTruck summarizes one group. Returns nil for an empty group.
func GroupTruck(t *traffic.Table, d traffic.Direction, f traffic.Facility) (*TruckGroup, error) {
	if !t.HasTruck {
		return nil, fmt.Errorf("%w: truck metrics", ErrMissingMetric)
	}

	idx := groupSegments(t, GroupKey{d, f})
	if len(idx) == 0 {
		monitoring.Warnf("truck", "no segments for direction=%s facility=%s", d, f)
		return nil, nil
	}

	aadts := make([]float64, 0, len(idx))
	pcts := make([]float64, 0, len(idx))
	intensities := make([]float64, 0, len(idx))
	amRatios := make([]float64, 0, len(idx))
	pmRatios := make([]float64, 0, len(idx))
	for _, i := range idx {
		s := &t.Segments[i]
		aadts = append(aadts, s.TruckAADT)
		pcts = append(pcts, s.TruckPct)
		intensities = append(intensities, s.TruckIntensity)
		amRatios = append(amRatios, s.AMTruckRatio)
		pmRatios = append(pmRatios, s.PMTruckRatio)
	}

	return &TruckGroup{
		Direction:          d,
		Facility:           f,
		Count:              len(idx),
		MeanTruckAADT:      meanOf(aadts),
		MeanTruckPct:       meanOf(pcts),
		MeanTruckIntensity: meanOf(intensities),
		MeanAMTruckRatio:   meanOf(amRatios),
		MeanPMTruckRatio:   meanOf(pmRatios),
	}, nil
}

// AllGroupsTruck summarizes every populated group.
func AllGroupsTruck(t *traffic.Table) ([]TruckGroup, error) {
	if !t.HasTruck {
		return nil, fmt.Errorf("%w: truck metrics", ErrMissingMetric)
	}

	var groups []TruckGroup
	for _, key := range groupKeys(t) {
		g, err := GroupTruck(t, key.Direction, key.Facility)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

// TruckStats is the whole-table truck summary.
type TruckStats struct {
	MeanTruckPct   float64
	MaxTruckPct    float64
	HighTruckCount int
	TotalTruckAADT float64
}

// TruckSummary summarizes the whole table. highThreshold (percent) sets the
// bar for the high-truck segment count.
func TruckSummary(t *traffic.Table, highThreshold float64) (*TruckStats, error) {
	if !t.HasTruck {
		return nil, fmt.Errorf("%w: truck metrics", ErrMissingMetric)
	}
	if highThreshold < 0 || highThreshold > 100 {
		return nil, fmt.Errorf("%w: truck threshold %g outside [0, 100]", ErrInvalidThreshold, highThreshold)
	}

	pcts := make([]float64, 0, len(t.Segments))
	var total float64
	high := 0
	for i := range t.Segments {
		s := &t.Segments[i]
		pcts = append(pcts, s.TruckPct)
		total += s.TruckAADT
		if s.TruckPct > highThreshold {
			high++
		}
	}

	return &TruckStats{
		MeanTruckPct:   meanOf(pcts),
		MaxTruckPct:    maxOf(pcts),
		HighTruckCount: high,
		TotalTruckAADT: total,
	}, nil
}

// HighTruckSegment is one row returned by IdentifyHighTruckSegments.
type HighTruckSegment struct {
	ID        string
	Direction traffic.Direction
	Facility  traffic.Facility
	TruckPct  float64
	TruckAADT float64
}

// IdentifyHighTruckSegments returns segments whose truck percentage is
// strictly above the threshold, highest first. The threshold must lie in
// [0, 100].
func IdentifyHighTruckSegments(t *traffic.Table, threshold float64) ([]HighTruckSegment, error) {
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: truck threshold %g outside [0, 100]", ErrInvalidThreshold, threshold)
	}

	var out []HighTruckSegment
	for i := range t.Segments {
		s := &t.Segments[i]
		if s.TruckPct <= threshold {
			continue
		}
		out = append(out, HighTruckSegment{
			ID:        s.ID,
			Direction: s.Direction,
			Facility:  s.Facility,
			TruckPct:  s.TruckPct,
			TruckAADT: s.TruckAADT,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TruckPct > out[j].TruckPct })
	return out, nil
}

// TruckFlowComparison contrasts one group's AM and PM peak truck volumes.
type TruckFlowComparison struct {
	Direction traffic.Direction
	Facility  traffic.Facility

	AMMeanTruck float64
	PMMeanTruck float64
	Diff        float64

	// WorsePeriod is "AM", "PM" or "EQUAL".
	WorsePeriod string
}

// CompareAMPMTruckFlows names the heavier truck period per group.
func CompareAMPMTruckFlows(t *traffic.Table) ([]TruckFlowComparison, error) {
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}

	var out []TruckFlowComparison
	for _, key := range groupKeys(t) {
		am, err := GroupPeak(t, key.Direction, key.Facility, traffic.AM)
		if err != nil {
			return nil, err
		}
		pm, err := GroupPeak(t, key.Direction, key.Facility, traffic.PM)
		if err != nil {
			return nil, err
		}
		if am == nil || pm == nil {
			continue
		}
		c := TruckFlowComparison{
			Direction:   key.Direction,
			Facility:    key.Facility,
			AMMeanTruck: am.MeanPeakTruck,
			PMMeanTruck: pm.MeanPeakTruck,
			Diff:        math.Abs(am.MeanPeakTruck - pm.MeanPeakTruck),
		}
		switch {
		case am.MeanPeakTruck > pm.MeanPeakTruck:
			c.WorsePeriod = "AM"
		case pm.MeanPeakTruck > am.MeanPeakTruck:
			c.WorsePeriod = "PM"
		default:
			c.WorsePeriod = "EQUAL"
		}
		out = append(out, c)
	}
	return out, nil
}

// TruckShare gives one group's peak truck volumes as a share of its daily
// truck volume. Shares are NaN when the group carries no daily trucks.
type TruckShare struct {
	Direction traffic.Direction
	Facility  traffic.Facility

	TruckAADT  float64
	AMSharePct float64
	PMSharePct float64
}

// TruckShareOfDaily computes, per group, the AM and PM peak-hour truck
// volume as a percentage of the group's daily truck AADT.
func TruckShareOfDaily(t *traffic.Table) ([]TruckShare, error) {
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}

	var out []TruckShare
	for _, key := range groupKeys(t) {
		var daily, amTruck, pmTruck float64
		for _, i := range groupSegments(t, key) {
			s := &t.Segments[i]
			daily += s.TruckAADT
			amTruck += s.PeakTruck[traffic.AM.PeakIndex()]
			pmTruck += s.PeakTruck[traffic.PM.PeakIndex()]
		}
		share := TruckShare{Direction: key.Direction, Facility: key.Facility, TruckAADT: daily}
		if daily > 0 {
			share.AMSharePct = 100 * amTruck / daily
			share.PMSharePct = 100 * pmTruck / daily
		} else {
			share.AMSharePct = math.NaN()
			share.PMSharePct = math.NaN()
		}
		out = append(out, share)
	}
	return out, nil
}

// ClassComposition is one period's truck volume split by weight class.
type ClassComposition struct {
	Period traffic.Period

	Light  float64
	Medium float64
	Heavy  float64

	LightShare  float64
	MediumShare float64
	HeavyShare  float64
}

// AnalyzeTruckComposition sums the AM and PM truck flows by weight class
// across all segments and derives each class's share of the period truck
// total. Shares are zero when a period carries no trucks.
func AnalyzeTruckComposition(t *traffic.Table) ([]ClassComposition, error) {
	var required []string
	for _, p := range traffic.PeakPeriods() {
		cols := traffic.TruckFlowColumns(p)
		required = append(required, cols[0], cols[1], cols[2])
	}
	if missing := t.MissingColumns(required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, missing[0])
	}

	var out []ClassComposition
	for _, p := range traffic.PeakPeriods() {
		c := ClassComposition{Period: p}
		for i := range t.Segments {
			f := t.Segments[i].Flows[p]
			c.Light += f.LightTruck
			c.Medium += f.MediumTruck
			c.Heavy += f.HeavyTruck
		}
		if total := c.Light + c.Medium + c.Heavy; total > 0 {
			c.LightShare = 100 * c.Light / total
			c.MediumShare = 100 * c.Medium / total
			c.HeavyShare = 100 * c.Heavy / total
		}
		out = append(out, c)
	}
	return out, nil
}
