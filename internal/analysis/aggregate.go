// Package analysis implements the pipeline stages that derive traffic
// metrics from segment tables, plus the grouped summaries built on them.
// Stages never mutate their input table; each returns a clone with derived
// fields populated.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/corridor-data/corridor.report/internal/traffic"
)

// GroupKey identifies one (direction, facility) group of segments.
type GroupKey struct {
	Direction traffic.Direction
	Facility  traffic.Facility
}

// groupKeys returns every populated (direction, facility) combination in
// the table, sorted by direction then facility.
func groupKeys(t *traffic.Table) []GroupKey {
	seen := make(map[GroupKey]bool)
	for i := range t.Segments {
		s := &t.Segments[i]
		seen[GroupKey{s.Direction, s.Facility}] = true
	}
	keys := make([]GroupKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Direction != keys[j].Direction {
			return keys[i].Direction < keys[j].Direction
		}
		return keys[i].Facility < keys[j].Facility
	})
	return keys
}

// groupSegments returns the indices of segments belonging to a group.
func groupSegments(t *traffic.Table, key GroupKey) []int {
	var idx []int
	for i := range t.Segments {
		s := &t.Segments[i]
		if s.Direction == key.Direction && s.Facility == key.Facility {
			idx = append(idx, i)
		}
	}
	return idx
}

// dropNaN returns values with NaN entries removed. Summary statistics only
// aggregate defined values; a group whose metric is entirely undefined
// yields NaN stats rather than fabricated zeros.
func dropNaN(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func meanOf(values []float64) float64 {
	values = dropNaN(values)
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func minOf(values []float64) float64 {
	values = dropNaN(values)
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Min(values)
}

func maxOf(values []float64) float64 {
	values = dropNaN(values)
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Max(values)
}

// dominantGrade returns the modal grade: highest count first, ties broken
// by grade order (A before F, N/A last).
func dominantGrade(counts map[traffic.Grade]int) traffic.Grade {
	best := traffic.GradeNA
	bestCount := -1
	ordered := append(traffic.Grades(), traffic.GradeNA)
	for _, g := range ordered {
		if c := counts[g]; c > bestCount {
			best = g
			bestCount = c
		}
	}
	return best
}
