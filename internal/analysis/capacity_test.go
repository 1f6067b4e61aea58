package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corridor-data/corridor.report/internal/traffic"
)

func TestComputeCapacity(t *testing.T) {
	t.Parallel()

	// AM period volume 10000 with 1000 trucks: peak total 4000, peak truck
	// 400, PCE 4400 over 8000 capacity.
	tbl := fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000))
	out, err := ComputePeakFlows(tbl)
	require.NoError(t, err)

	out, err = ComputeCapacity(out, traffic.AM)
	require.NoError(t, err)
	require.True(t, out.HasCapacity[traffic.AM.PeakIndex()])
	require.False(t, out.HasCapacity[traffic.PM.PeakIndex()])

	k := traffic.AM.PeakIndex()
	s := out.Segments[0]
	assert.Equal(t, 4400.0, s.PCEFlow[k])
	assert.Equal(t, 8000.0, s.Capacity[k])
	assert.InDelta(t, 0.55, s.VCRatio[k], 1e-9)
	assert.Equal(t, traffic.GradeC, s.LOS[k])
}

func TestComputeCapacityZeroLanes(t *testing.T) {
	t.Parallel()

	tbl := fixtureTable(seg("1", traffic.North, traffic.MainLanes, 0, 1000, 100))
	out, err := ComputePeakFlows(tbl)
	require.NoError(t, err)

	out, err = ComputeAllCapacity(out)
	require.NoError(t, err)

	for _, p := range traffic.PeakPeriods() {
		k := p.PeakIndex()
		assert.True(t, math.IsNaN(out.Segments[0].VCRatio[k]), "%s V/C should be NaN", p)
		assert.Equal(t, traffic.GradeNA, out.Segments[0].LOS[k])
	}
}

func TestComputeCapacityRejectsOffPeak(t *testing.T) {
	t.Parallel()

	out, err := ComputePeakFlows(fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 1000, 0)))
	require.NoError(t, err)

	_, err = ComputeCapacity(out, traffic.MD)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestComputeCapacityRequiresPeakStage(t *testing.T) {
	t.Parallel()

	tbl := fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 1000, 0))

	_, err := ComputeCapacity(tbl, traffic.AM)
	assert.True(t, errors.Is(err, ErrMissingMetric))
}

func TestGroupCapacity(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(
		seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000),
		seg("2", traffic.North, traffic.MainLanes, 4, 17000, 3000),
		seg("3", traffic.South, traffic.MainLanes, 4, 1000, 0),
	))

	g, err := GroupCapacity(tbl, traffic.North, traffic.MainLanes, traffic.AM)
	require.NoError(t, err)
	require.NotNil(t, g)

	// Segment 1: PCE 4400, V/C 0.55 (C). Segment 2: peak 8000, truck
	// 1200, PCE 9200, V/C 1.15 (F).
	assert.Equal(t, 2, g.Count)
	assert.Equal(t, 6800.0, g.MeanPCEFlow)
	assert.Equal(t, 8000.0, g.MeanCap)
	assert.InDelta(t, 0.85, g.MeanVC, 1e-9)
	assert.InDelta(t, 0.55, g.MinVC, 1e-9)
	assert.InDelta(t, 1.15, g.MaxVC, 1e-9)
	assert.Equal(t, 1, g.LOSCounts[traffic.GradeC])
	assert.Equal(t, 1, g.LOSCounts[traffic.GradeF])
	// Tied counts resolve to the better grade.
	assert.Equal(t, traffic.GradeC, g.DominantLOS)
}

func TestGroupCapacityEmptyGroupIsNil(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 1000, 0)))

	g, err := GroupCapacity(tbl, traffic.West, traffic.HOVLanes, traffic.PM)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestGetLOSDistribution(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(
		seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000),  // AM V/C 0.55, C
		seg("2", traffic.North, traffic.MainLanes, 4, 17000, 3000), // AM V/C 1.15, F
		seg("3", traffic.South, traffic.MainLanes, 0, 1000, 0),     // NaN, N/A
		seg("4", traffic.South, traffic.MainLanes, 4, 1000, 0),     // AM V/C 0.05, A
	))

	dist, err := GetLOSDistribution(tbl, traffic.AM)
	require.NoError(t, err)

	require.Len(t, dist.Grades, 4)
	// Grade rows come in grade order, N/A last.
	assert.Equal(t, traffic.GradeA, dist.Grades[0].Grade)
	assert.Equal(t, traffic.GradeC, dist.Grades[1].Grade)
	assert.Equal(t, traffic.GradeF, dist.Grades[2].Grade)
	assert.Equal(t, traffic.GradeNA, dist.Grades[3].Grade)
	assert.Equal(t, 25.0, dist.Grades[0].Pct)

	assert.Equal(t, 1, dist.OverCapacity)
	assert.Equal(t, 25.0, dist.OverCapacityPct)
	// Mean V/C ignores the undefined segment.
	assert.InDelta(t, (0.55+1.15+0.05)/3, dist.MeanVC, 1e-9)
}

func TestCompareAMPM(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(
		seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000),
		seg("2", traffic.South, traffic.MainLanes, 0, 1000, 0),
	))

	cmp, err := CompareAMPM(tbl)
	require.NoError(t, err)
	require.Len(t, cmp, 2)

	// AM factor 0.40 beats PM's 0.30 on identical period volumes.
	north := cmp[0]
	assert.Equal(t, traffic.North, north.Direction)
	assert.Equal(t, "AM", north.WorsePeriod)
	assert.InDelta(t, 0.55-0.4125, north.VCDiff, 1e-9)

	// Both periods NaN: means are NaN, neither compares greater.
	south := cmp[1]
	assert.Equal(t, "EQUAL", south.WorsePeriod)
}

func TestCompareAMPMRequiresBothPeriods(t *testing.T) {
	t.Parallel()

	tbl := fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 1000, 0))
	out, err := ComputePeakFlows(tbl)
	require.NoError(t, err)
	out, err = ComputeCapacity(out, traffic.AM)
	require.NoError(t, err)

	_, err = CompareAMPM(out)
	assert.True(t, errors.Is(err, ErrMissingMetric))
}

func TestIdentifyBottlenecks(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(
		seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000),  // AM V/C 0.55
		seg("2", traffic.North, traffic.MainLanes, 4, 17000, 3000), // AM V/C 1.15
		seg("3", traffic.South, traffic.MainLanes, 0, 9000, 1000),  // NaN, excluded
		seg("4", traffic.South, traffic.MainLanes, 4, 15000, 2000), // AM V/C 0.95
	))

	got, err := IdentifyBottlenecks(tbl, traffic.AM, 0.85)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Worst first.
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "4", got[1].ID)
	assert.Equal(t, traffic.GradeF, got[0].LOS)
}

func TestIdentifyBottlenecksThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 9000, 1000)))

	// AM V/C is exactly 0.55; a threshold at the value must not match.
	got, err := IdentifyBottlenecks(tbl, traffic.AM, 0.55)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIdentifyBottlenecksRejectsBadThreshold(t *testing.T) {
	t.Parallel()

	tbl := runStages(t, fixtureTable(seg("1", traffic.North, traffic.MainLanes, 4, 1000, 0)))

	for _, threshold := range []float64{-0.1, 3.5} {
		_, err := IdentifyBottlenecks(tbl, traffic.AM, threshold)
		assert.True(t, errors.Is(err, ErrInvalidThreshold), "threshold %g", threshold)
	}
}
