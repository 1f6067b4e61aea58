package analysis

import (
	"fmt"
	"strings"

	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// ComputePeakFlows derives AM and PM peak-hour volumes for every segment:
// total, auto and truck, each as the period flow scaled by the period's
// peaking factor.
func ComputePeakFlows(t *traffic.Table) (*traffic.Table, error) {
	var required []string
	for _, p := range traffic.PeakPeriods() {
		required = append(required, traffic.FlowColumnsFor(p)...)
	}
	if missing := t.MissingColumns(required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	out := t.Clone()
	for i := range out.Segments {
		s := &out.Segments[i]
		for _, p := range traffic.PeakPeriods() {
			total, err := traffic.PeakHourFlow(s.PeriodFlow(p, traffic.FlowTotal), p)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
			}
			auto, _ := traffic.PeakHourFlow(s.PeriodFlow(p, traffic.FlowAuto), p)
			truck, _ := traffic.PeakHourFlow(s.PeriodFlow(p, traffic.FlowTruck), p)

			k := p.PeakIndex()
			s.PeakTotal[k] = total
			s.PeakAuto[k] = auto
			s.PeakTruck[k] = truck
		}
	}
	out.HasPeak = true

	for _, p := range traffic.PeakPeriods() {
		k := p.PeakIndex()
		warnRange(out, traffic.RangePeakFlow, p.String()+"_PEAK_TOTAL",
			func(s *traffic.Segment) float64 { return s.PeakTotal[k] })
	}

	monitoring.Stepf("peak", "computed AM/PM peak-hour flows for %d segments", len(out.Segments))
	return out, nil
}

// PeakGroup summarizes peak-hour volumes for one group and period.
type PeakGroup struct {
	Direction traffic.Direction
	Facility  traffic.Facility
	Period    traffic.Period

	Count         int
	MeanPeakTotal float64
	MeanPeakAuto  float64
	MeanPeakTruck float64
	MinPeakTotal  float64
	MaxPeakTotal  float64
}

// GroupPeak summarizes one group for one peak period. Returns nil for an
// empty group.
func GroupPeak(t *traffic.Table, d traffic.Direction, f traffic.Facility, p traffic.Period) (*PeakGroup, error) {
	if !p.IsPeak() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}

	idx := groupSegments(t, GroupKey{d, f})
	if len(idx) == 0 {
		monitoring.Warnf("peak", "no segments for direction=%s facility=%s", d, f)
		return nil, nil
	}

	k := p.PeakIndex()
	totals := make([]float64, 0, len(idx))
	autos := make([]float64, 0, len(idx))
	trucks := make([]float64, 0, len(idx))
	for _, i := range idx {
		s := &t.Segments[i]
		totals = append(totals, s.PeakTotal[k])
		autos = append(autos, s.PeakAuto[k])
		trucks = append(trucks, s.PeakTruck[k])
	}

	return &PeakGroup{
		Direction:     d,
		Facility:      f,
		Period:        p,
		Count:         len(idx),
		MeanPeakTotal: meanOf(totals),
		MeanPeakAuto:  meanOf(autos),
		MeanPeakTruck: meanOf(trucks),
		MinPeakTotal:  minOf(totals),
		MaxPeakTotal:  maxOf(totals),
	}, nil
}

// AllGroupsPeak summarizes every populated group for one peak period.
func AllGroupsPeak(t *traffic.Table, p traffic.Period) ([]PeakGroup, error) {
	if !p.IsPeak() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}

	var groups []PeakGroup
	for _, key := range groupKeys(t) {
		g, err := GroupPeak(t, key.Direction, key.Facility, p)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

// PeakStats is the whole-table peak-hour summary for one period.
type PeakStats struct {
	Period        traffic.Period
	MeanPeakTotal float64
	MaxPeakTotal  float64
	MeanPeakTruck float64
}

// PeakSummary summarizes the whole table for one peak period.
func PeakSummary(t *traffic.Table, p traffic.Period) (*PeakStats, error) {
	if !p.IsPeak() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if !t.HasPeak {
		return nil, fmt.Errorf("%w: peak flows", ErrMissingMetric)
	}

	k := p.PeakIndex()
	totals := make([]float64, 0, len(t.Segments))
	trucks := make([]float64, 0, len(t.Segments))
	for i := range t.Segments {
		totals = append(totals, t.Segments[i].PeakTotal[k])
		trucks = append(trucks, t.Segments[i].PeakTruck[k])
	}

	return &PeakStats{
		Period:        p,
		MeanPeakTotal: meanOf(totals),
		MaxPeakTotal:  maxOf(totals),
		MeanPeakTruck: meanOf(trucks),
	}, nil
}
