// Package traffic defines the segment data model shared by the analysis
// pipeline, along with the pure traffic-engineering calculations (period
// flows, peak-hour conversion, PCE flow, capacity, V/C ratio, LOS grading).
package traffic

import (
	"fmt"
	"sort"
)

// Period identifies one of the five modelled time-of-day periods.
type Period int

const (
	AM Period = iota // 06:00-10:00
	PM               // 15:00-19:00
	MD               // 10:00-15:00
	EVE              // 19:00-23:00
	NT               // 23:00-06:00 (spans midnight)

	numPeriods = 5
)

// NumPeakPeriods is the number of periods that carry peak-hour metrics
// (AM and PM). Derived per-period arrays on Segment are indexed by
// Period.PeakIndex().
const NumPeakPeriods = 2

// periodNames is indexed by Period.
var periodNames = [numPeriods]string{"AM", "PM", "MD", "EVE", "NT"}

// periodHours is the duration of each period in hours, indexed by Period.
var periodHours = [numPeriods]int{4, 4, 5, 4, 7}

// Periods returns all five periods in canonical order.
func Periods() []Period {
	return []Period{AM, PM, MD, EVE, NT}
}

// PeakPeriods returns the periods that carry peak-hour metrics.
func PeakPeriods() []Period {
	return []Period{AM, PM}
}

// String returns the short period code (AM, PM, MD, EVE, NT).
func (p Period) String() string {
	if p < 0 || int(p) >= numPeriods {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p]
}

// DurationHours returns the length of the period in hours.
func (p Period) DurationHours() int {
	if p < 0 || int(p) >= numPeriods {
		return 0
	}
	return periodHours[p]
}

// IsPeak reports whether the period carries peak-hour metrics.
func (p Period) IsPeak() bool { return p == AM || p == PM }

// PeakIndex returns the index into a Segment's peak-metric arrays.
// Only valid for AM and PM.
func (p Period) PeakIndex() int { return int(p) }

// ParsePeriod converts a short period code to a Period.
func ParsePeriod(s string) (Period, error) {
	for i, name := range periodNames {
		if s == name {
			return Period(i), nil
		}
	}
	return 0, fmt.Errorf("unknown period %q", s)
}

// Direction is a directional roadway code.
type Direction string

const (
	North Direction = "N"
	South Direction = "S"
	East  Direction = "E"
	West  Direction = "W"
)

// Valid reports whether d is one of the four recognised direction codes.
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// Name returns the long-form direction name for report output.
func (d Direction) Name() string {
	switch d {
	case North:
		return "Northbound"
	case South:
		return "Southbound"
	case East:
		return "Eastbound"
	case West:
		return "Westbound"
	}
	return string(d)
}

// Facility is a roadway facility-type code.
type Facility string

const (
	MainLanes Facility = "ML"
	HOVLanes  Facility = "HV"
)

// Name returns the long-form facility name for report output.
func (f Facility) Name() string {
	switch f {
	case MainLanes:
		return "Main Lanes"
	case HOVLanes:
		return "HOV Lanes"
	}
	return string(f)
}

// Grade is a Level of Service letter grade. GradeNA marks segments whose
// V/C ratio is undefined (zero capacity).
type Grade string

const (
	GradeA  Grade = "A"
	GradeB  Grade = "B"
	GradeC  Grade = "C"
	GradeD  Grade = "D"
	GradeE  Grade = "E"
	GradeF  Grade = "F"
	GradeNA Grade = "N/A"
)

// Grades returns the letter grades in order from best to worst, excluding
// GradeNA.
func Grades() []Grade {
	return []Grade{GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}
}

// Rank orders grades for deterministic tie-breaking (A best, N/A last).
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 0
	case GradeB:
		return 1
	case GradeC:
		return 2
	case GradeD:
		return 3
	case GradeE:
		return 4
	case GradeF:
		return 5
	}
	return 6
}

// FlowClass selects which vehicle classes contribute to a period flow.
type FlowClass int

const (
	FlowTotal FlowClass = iota
	FlowAuto
	FlowTruck
)

// PeriodFlows holds the six per-class volumes for one segment and one
// period: three auto classes and three truck classes.
type PeriodFlows struct {
	DriveAlone float64
	Shared2    float64
	Shared3    float64

	LightTruck  float64
	MediumTruck float64
	HeavyTruck  float64
}

// Auto returns the combined auto-class volume.
func (f PeriodFlows) Auto() float64 {
	return f.DriveAlone + f.Shared2 + f.Shared3
}

// Truck returns the combined truck-class volume.
func (f PeriodFlows) Truck() float64 {
	return f.LightTruck + f.MediumTruck + f.HeavyTruck
}

// Total returns the combined volume of all six classes.
func (f PeriodFlows) Total() float64 {
	return f.Auto() + f.Truck()
}

// Segment is one directional roadway link for one (year, section) table.
// Input fields are set by the loader and never modified afterwards; derived
// fields are populated by the pipeline stages and are zero until the
// producing stage has run (the owning Table records which stages have run).
type Segment struct {
	ID        string
	Length    float64
	Direction Direction
	Facility  Facility

	// Lanes and Flows are indexed by Period.
	Lanes [numPeriods]float64
	Flows [numPeriods]PeriodFlows

	// AADT stage.
	TotalAADT float64
	AutoAADT  float64
	TruckAADT float64
	TruckPct  float64

	// Peak-hour stage, indexed by Period.PeakIndex().
	PeakTotal [NumPeakPeriods]float64
	PeakAuto  [NumPeakPeriods]float64
	PeakTruck [NumPeakPeriods]float64

	// Capacity stage, indexed by Period.PeakIndex(). VCRatio is NaN when
	// the period capacity is zero.
	PCEFlow  [NumPeakPeriods]float64
	Capacity [NumPeakPeriods]float64
	VCRatio  [NumPeakPeriods]float64
	LOS      [NumPeakPeriods]Grade

	// Truck stage.
	TruckIntensity float64
	AMTruckRatio   float64
	PMTruckRatio   float64
}

// PeriodFlow returns the segment's raw volume for a period and flow class.
func (s *Segment) PeriodFlow(p Period, class FlowClass) float64 {
	f := s.Flows[p]
	switch class {
	case FlowAuto:
		return f.Auto()
	case FlowTruck:
		return f.Truck()
	default:
		return f.Total()
	}
}

// Table is one (year, section) segment table moving through the pipeline.
// Stages never mutate their input Table; each returns a clone with derived
// fields added and the corresponding Has* flag set.
type Table struct {
	Year    int
	Section int

	Segments []Segment

	// columns records the raw header names present in the source file so
	// stages can fail fast on missing input schema.
	columns map[string]bool

	HasAADT     bool
	HasPeak     bool
	HasCapacity [NumPeakPeriods]bool
	HasTruck    bool
}

// NewTable constructs a table with the given raw header columns.
func NewTable(year, section int, columns []string) *Table {
	t := &Table{
		Year:    year,
		Section: section,
		columns: make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		t.columns[c] = true
	}
	return t
}

// HasColumn reports whether the named raw column was present in the source.
func (t *Table) HasColumn(name string) bool { return t.columns[name] }

// MissingColumns returns, in order, the named raw columns absent from the
// source schema.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.columns[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// Columns returns the raw source column names in sorted order.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a deep copy of the table. Segments are value types, so a
// slice copy is sufficient.
func (t *Table) Clone() *Table {
	out := *t
	out.Segments = make([]Segment, len(t.Segments))
	copy(out.Segments, t.Segments)
	out.columns = make(map[string]bool, len(t.columns))
	for c := range t.columns {
		out.columns[c] = true
	}
	return &out
}

// FilterDirection returns a clone containing only segments travelling in
// the given direction.
func (t *Table) FilterDirection(d Direction) (*Table, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %q", string(d))
	}
	return t.filter(func(s *Segment) bool { return s.Direction == d }), nil
}

// FilterFacility returns a clone containing only segments of the given
// facility type.
func (t *Table) FilterFacility(f Facility) *Table {
	return t.filter(func(s *Segment) bool { return s.Facility == f })
}

func (t *Table) filter(keep func(*Segment) bool) *Table {
	out := t.Clone()
	out.Segments = out.Segments[:0]
	for i := range t.Segments {
		if keep(&t.Segments[i]) {
			out.Segments = append(out.Segments, t.Segments[i])
		}
	}
	return out
}

// Directions returns the distinct direction codes present, sorted.
func (t *Table) Directions() []Direction {
	seen := map[Direction]bool{}
	var out []Direction
	for i := range t.Segments {
		d := t.Segments[i].Direction
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Facilities returns the distinct facility types present, sorted.
func (t *Table) Facilities() []Facility {
	seen := map[Facility]bool{}
	var out []Facility
	for i := range t.Segments {
		f := t.Segments[i].Facility
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
