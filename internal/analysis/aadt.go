package analysis

import (
	"fmt"
	"strings"

	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// ComputeAADT derives daily volume totals for every segment: total, auto
// and truck AADT plus the truck percentage. Requires the full flow schema
// for all five periods.
func ComputeAADT(t *traffic.Table) (*traffic.Table, error) {
	var required []string
	for _, p := range traffic.Periods() {
		required = append(required, traffic.FlowColumnsFor(p)...)
	}
	if missing := t.MissingColumns(required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	out := t.Clone()
	for i := range out.Segments {
		s := &out.Segments[i]

		var total, truck float64
		for _, p := range traffic.Periods() {
			total += s.Flows[p].Total()
			truck += s.Flows[p].Truck()
		}

		s.TotalAADT = total
		s.TruckAADT = truck
		// Auto is the remainder so the three fields sum exactly.
		s.AutoAADT = total - truck
		if total > 0 {
			s.TruckPct = 100 * truck / total
		} else {
			s.TruckPct = 0
		}
	}
	out.HasAADT = true

	warnRange(out, traffic.RangeAADT, "TOTAL_AADT", func(s *traffic.Segment) float64 { return s.TotalAADT })
	warnRange(out, traffic.RangeTruckPct, "TRUCK_PCT", func(s *traffic.Segment) float64 { return s.TruckPct })

	monitoring.Stepf("aadt", "computed daily totals for %d segments (year %d section %d)",
		len(out.Segments), out.Year, out.Section)
	return out, nil
}

// warnRange runs an advisory plausibility check over one derived metric and
// logs any findings.
func warnRange(t *traffic.Table, r traffic.Range, column string, metric func(*traffic.Segment) float64) {
	values := make([]float64, len(t.Segments))
	for i := range t.Segments {
		values[i] = metric(&t.Segments[i])
	}
	for _, finding := range r.Check(column, values) {
		monitoring.Warnf("validate", "%s", finding)
	}
}

// AADTGroup summarizes daily volumes for one (direction, facility) group.
type AADTGroup struct {
	Direction traffic.Direction
	Facility  traffic.Facility

	Count         int
	MeanTotalAADT float64
	MeanAutoAADT  float64
	MeanTruckAADT float64
	MeanTruckPct  float64
	MinTotalAADT  float64
	MaxTotalAADT  float64
}

// GroupAADT summarizes one group. Returns nil for an empty group.
func GroupAADT(t *traffic.Table, d traffic.Direction, f traffic.Facility) (*AADTGroup, error) {
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}

	idx := groupSegments(t, GroupKey{d, f})
	if len(idx) == 0 {
		monitoring.Warnf("aadt", "no segments for direction=%s facility=%s", d, f)
		return nil, nil
	}

	totals := make([]float64, 0, len(idx))
	autos := make([]float64, 0, len(idx))
	trucks := make([]float64, 0, len(idx))
	pcts := make([]float64, 0, len(idx))
	for _, i := range idx {
		s := &t.Segments[i]
		totals = append(totals, s.TotalAADT)
		autos = append(autos, s.AutoAADT)
		trucks = append(trucks, s.TruckAADT)
		pcts = append(pcts, s.TruckPct)
	}

	return &AADTGroup{
		Direction:     d,
		Facility:      f,
		Count:         len(idx),
		MeanTotalAADT: meanOf(totals),
		MeanAutoAADT:  meanOf(autos),
		MeanTruckAADT: meanOf(trucks),
		MeanTruckPct:  meanOf(pcts),
		MinTotalAADT:  minOf(totals),
		MaxTotalAADT:  maxOf(totals),
	}, nil
}

// AllGroupsAADT summarizes every populated group, sorted by direction then
// facility.
func AllGroupsAADT(t *traffic.Table) ([]AADTGroup, error) {
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}

	var groups []AADTGroup
	for _, key := range groupKeys(t) {
		g, err := GroupAADT(t, key.Direction, key.Facility)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

// AADTStats is the whole-table daily volume summary.
type AADTStats struct {
	TotalSegments int
	MeanTotalAADT float64
	MinTotalAADT  float64
	MaxTotalAADT  float64
	MeanTruckPct  float64
	Directions    int
	Facilities    int
}

// AADTSummary summarizes the whole table.
func AADTSummary(t *traffic.Table) (*AADTStats, error) {
	if !t.HasAADT {
		return nil, fmt.Errorf("%w: AADT", ErrMissingMetric)
	}

	totals := make([]float64, 0, len(t.Segments))
	pcts := make([]float64, 0, len(t.Segments))
	for i := range t.Segments {
		totals = append(totals, t.Segments[i].TotalAADT)
		pcts = append(pcts, t.Segments[i].TruckPct)
	}

	return &AADTStats{
		TotalSegments: len(t.Segments),
		MeanTotalAADT: meanOf(totals),
		MinTotalAADT:  minOf(totals),
		MaxTotalAADT:  maxOf(totals),
		MeanTruckPct:  meanOf(pcts),
		Directions:    len(t.Directions()),
		Facilities:    len(t.Facilities()),
	}, nil
}
