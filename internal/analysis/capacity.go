package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// ComputeCapacity derives PCE flow, lane capacity, V/C ratio and LOS grade
// for one peak period. Requires the peak stage to have run and the period's
// lane column to be present. V/C is NaN where capacity is zero, and only
// those segments grade N/A.
func ComputeCapacity(t *traffic.Table, p traffic.Period) (*traffic.Table, error) {
	if !p.IsPeak() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}
	if missing := t.MissingColumns(traffic.LaneColumn(p)); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, missing[0])
	}

	out := t.Clone()
	k := p.PeakIndex()
	for i := range out.Segments {
		s := &out.Segments[i]
		s.PCEFlow[k] = traffic.PCEFlow(s.PeakTotal[k], s.PeakTruck[k])
		s.Capacity[k] = traffic.LaneCapacity(s.Lanes[p])
		s.VCRatio[k] = traffic.VCRatio(s.PCEFlow[k], s.Capacity[k])
		s.LOS[k] = traffic.GradeFromVC(s.VCRatio[k])
	}
	out.HasCapacity[k] = true

	warnRange(out, traffic.RangeVCRatio, p.String()+"_VC_RATIO",
		func(s *traffic.Segment) float64 { return s.VCRatio[k] })
	warnRange(out, traffic.RangeLanes, traffic.LaneColumn(p),
		func(s *traffic.Segment) float64 { return s.Lanes[p] })

	monitoring.Stepf("capacity", "computed %s V/C and LOS for %d segments", p, len(out.Segments))
	return out, nil
}

// ComputeAllCapacity runs the capacity stage for both peak periods.
func ComputeAllCapacity(t *traffic.Table) (*traffic.Table, error) {
	out := t
	for _, p := range traffic.PeakPeriods() {
		next, err := ComputeCapacity(out, p)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

func requireCapacity(t *traffic.Table, p traffic.Period) error {
	if !p.IsPeak() {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if !t.HasCapacity[p.PeakIndex()] {
		return fmt.Errorf("%w: %s capacity", ErrMissingMetric, p)
	}
	return nil
}

// CapacityGroup summarizes V/C and LOS for one group and period.
type CapacityGroup struct {
	Direction traffic.Direction
	Facility  traffic.Facility
	Period    traffic.Period

	Count       int
	MeanPCEFlow float64
	MeanCap     float64
	MeanVC      float64
	MinVC       float64
	MaxVC       float64
	DominantLOS traffic.Grade
	LOSCounts   map[traffic.Grade]int
}

// GroupCapacity summarizes one group for one peak period. Returns nil for
// an empty group.
func GroupCapacity(t *traffic.Table, d traffic.Direction, f traffic.Facility, p traffic.Period) (*CapacityGroup, error) {
	if err := requireCapacity(t, p); err != nil {
		return nil, err
	}

	idx := groupSegments(t, GroupKey{d, f})
	if len(idx) == 0 {
		monitoring.Warnf("capacity", "no segments for direction=%s facility=%s", d, f)
		return nil, nil
	}

	k := p.PeakIndex()
	pces := make([]float64, 0, len(idx))
	caps := make([]float64, 0, len(idx))
	vcs := make([]float64, 0, len(idx))
	counts := make(map[traffic.Grade]int)
	for _, i := range idx {
		s := &t.Segments[i]
		pces = append(pces, s.PCEFlow[k])
		caps = append(caps, s.Capacity[k])
		vcs = append(vcs, s.VCRatio[k])
		counts[s.LOS[k]]++
	}

	return &CapacityGroup{
		Direction:   d,
		Facility:    f,
		Period:      p,
		Count:       len(idx),
		MeanPCEFlow: meanOf(pces),
		MeanCap:     meanOf(caps),
		MeanVC:      meanOf(vcs),
		MinVC:       minOf(vcs),
		MaxVC:       maxOf(vcs),
		DominantLOS: dominantGrade(counts),
		LOSCounts:   counts,
	}, nil
}

// AllGroupsCapacity summarizes every populated group for one peak period,
// sorted by direction then facility.
func AllGroupsCapacity(t *traffic.Table, p traffic.Period) ([]CapacityGroup, error) {
	if err := requireCapacity(t, p); err != nil {
		return nil, err
	}

	var groups []CapacityGroup
	for _, key := range groupKeys(t) {
		g, err := GroupCapacity(t, key.Direction, key.Facility, p)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

// GradeShare is one row of a LOS distribution.
type GradeShare struct {
	Grade traffic.Grade
	Count int
	Pct   float64
}

// LOSDistribution describes how one period's grades distribute over the
// table.
type LOSDistribution struct {
	Period traffic.Period
	Grades []GradeShare

	MeanVC          float64
	OverCapacity    int
	OverCapacityPct float64
}

// GetLOSDistribution computes per-grade counts and shares for one peak
// period, plus the over-capacity tally (V/C strictly above 1).
func GetLOSDistribution(t *traffic.Table, p traffic.Period) (*LOSDistribution, error) {
	if err := requireCapacity(t, p); err != nil {
		return nil, err
	}

	k := p.PeakIndex()
	n := len(t.Segments)
	counts := make(map[traffic.Grade]int)
	vcs := make([]float64, 0, n)
	over := 0
	for i := range t.Segments {
		s := &t.Segments[i]
		counts[s.LOS[k]]++
		vcs = append(vcs, s.VCRatio[k])
		if s.VCRatio[k] > 1 { // NaN compares false
			over++
		}
	}

	dist := &LOSDistribution{Period: p, MeanVC: meanOf(vcs), OverCapacity: over}
	if n > 0 {
		dist.OverCapacityPct = 100 * float64(over) / float64(n)
	}
	for _, g := range append(traffic.Grades(), traffic.GradeNA) {
		c := counts[g]
		if c == 0 {
			continue
		}
		share := GradeShare{Grade: g, Count: c}
		if n > 0 {
			share.Pct = 100 * float64(c) / float64(n)
		}
		dist.Grades = append(dist.Grades, share)
	}
	return dist, nil
}

// PeriodComparison contrasts one group's AM and PM congestion.
type PeriodComparison struct {
	Direction traffic.Direction
	Facility  traffic.Facility

	AMMeanVC float64
	PMMeanVC float64
	VCDiff   float64

	// WorsePeriod is "AM", "PM" or "EQUAL".
	WorsePeriod string
}

// CompareAMPM merges the AM and PM group summaries on (direction, facility)
// and names the more congested period per group. Groups present in only one
// period are omitted.
func CompareAMPM(t *traffic.Table) ([]PeriodComparison, error) {
	for _, p := range traffic.PeakPeriods() {
		if err := requireCapacity(t, p); err != nil {
			return nil, err
		}
	}

	am, err := AllGroupsCapacity(t, traffic.AM)
	if err != nil {
		return nil, err
	}
	pm, err := AllGroupsCapacity(t, traffic.PM)
	if err != nil {
		return nil, err
	}

	pmByKey := make(map[GroupKey]CapacityGroup, len(pm))
	for _, g := range pm {
		pmByKey[GroupKey{g.Direction, g.Facility}] = g
	}

	var out []PeriodComparison
	for _, a := range am {
		b, ok := pmByKey[GroupKey{a.Direction, a.Facility}]
		if !ok {
			continue
		}
		c := PeriodComparison{
			Direction: a.Direction,
			Facility:  a.Facility,
			AMMeanVC:  a.MeanVC,
			PMMeanVC:  b.MeanVC,
			VCDiff:    math.Abs(a.MeanVC - b.MeanVC),
		}
		switch {
		case a.MeanVC > b.MeanVC:
			c.WorsePeriod = "AM"
		case b.MeanVC > a.MeanVC:
			c.WorsePeriod = "PM"
		default:
			c.WorsePeriod = "EQUAL"
		}
		out = append(out, c)
	}
	return out, nil
}

// Bottleneck is one congested segment found by IdentifyBottlenecks.
type Bottleneck struct {
	ID        string
	Direction traffic.Direction
	Facility  traffic.Facility
	VCRatio   float64
	LOS       traffic.Grade
}

// IdentifyBottlenecks returns the segments whose V/C for the period is
// strictly above the threshold, worst first. The threshold must lie in
// [0, 3.0]. Segments with undefined V/C are never bottlenecks.
func IdentifyBottlenecks(t *traffic.Table, p traffic.Period, threshold float64) ([]Bottleneck, error) {
	if err := requireCapacity(t, p); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 3.0 {
		return nil, fmt.Errorf("%w: bottleneck threshold %g outside [0, 3.0]", ErrInvalidThreshold, threshold)
	}

	k := p.PeakIndex()
	var out []Bottleneck
	for i := range t.Segments {
		s := &t.Segments[i]
		vc := s.VCRatio[k]
		if math.IsNaN(vc) || vc <= threshold {
			continue
		}
		out = append(out, Bottleneck{
			ID:        s.ID,
			Direction: s.Direction,
			Facility:  s.Facility,
			VCRatio:   vc,
			LOS:       s.LOS[k],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VCRatio > out[j].VCRatio })
	return out, nil
}
