package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corridor-data/corridor.report/internal/traffic"
)

// TestPipelineEndToEnd runs every stage over a realistic corridor table and
// checks the cross-stage invariants hold on the result.
func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	// 26 directional segments: 13 northbound, 13 southbound, every other
	// one an HOV facility, with volumes and truck shares varying by index.
	var segs []traffic.Segment
	for i := 0; i < 26; i++ {
		dir := traffic.North
		if i%2 == 1 {
			dir = traffic.South
		}
		fac := traffic.MainLanes
		lanes := 4.0
		if i%4 == 3 {
			fac = traffic.HOVLanes
			lanes = 1
		}
		auto := 2000.0 + 500*float64(i)
		truck := 50.0 + 20*float64(i)
		segs = append(segs, seg(fmt.Sprintf("%d", 100+i), dir, fac, lanes, auto, truck))
	}

	tbl := runStages(t, fixtureTable(segs...))

	stats, err := AADTSummary(tbl)
	require.NoError(t, err)
	assert.Equal(t, 26, stats.TotalSegments)

	// The table mean truck share lies within the per-segment extremes.
	minPct, maxPct := math.Inf(1), math.Inf(-1)
	for i := range tbl.Segments {
		s := tbl.Segments[i]

		assert.Equal(t, s.TotalAADT, s.AutoAADT+s.TruckAADT, "segment %s", s.ID)
		assert.GreaterOrEqual(t, s.TruckPct, 0.0)
		assert.LessOrEqual(t, s.TruckPct, 100.0)
		minPct = math.Min(minPct, s.TruckPct)
		maxPct = math.Max(maxPct, s.TruckPct)

		for _, p := range traffic.PeakPeriods() {
			k := p.PeakIndex()
			assert.Greater(t, s.PeakTotal[k], 0.0)
			assert.False(t, math.IsNaN(s.VCRatio[k]))
			assert.NotEqual(t, traffic.GradeNA, s.LOS[k])
		}
	}
	assert.GreaterOrEqual(t, stats.MeanTruckPct, minPct)
	assert.LessOrEqual(t, stats.MeanTruckPct, maxPct)

	// Every populated group appears in every grouped summary.
	keys := groupKeys(tbl)
	for _, p := range traffic.PeakPeriods() {
		groups, err := AllGroupsCapacity(tbl, p)
		require.NoError(t, err)
		assert.Len(t, groups, len(keys))
	}
	truckGroups, err := AllGroupsTruck(tbl)
	require.NoError(t, err)
	assert.Len(t, truckGroups, len(keys))

	total := 0
	for _, g := range truckGroups {
		total += g.Count
	}
	assert.Equal(t, 26, total)
}
