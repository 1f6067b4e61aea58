package loader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// fullHeader lists every input column in a fixed order for fixtures.
func fullHeader() []string {
	cols := []string{"ID", "LENGTH", "DIRECT", "TYPE"}
	for _, p := range traffic.Periods() {
		cols = append(cols, traffic.LaneColumn(p))
		cols = append(cols, traffic.FlowColumnsFor(p)...)
	}
	return cols
}

// row builds one CSV record: identity fields, then for each period the lane
// count followed by six equal class flows.
func row(id, length, direct, typ string, lanes, flow string) string {
	fields := []string{id, length, direct, typ}
	for range traffic.Periods() {
		fields = append(fields, lanes)
		for i := 0; i < 6; i++ {
			fields = append(fields, flow)
		}
	}
	return strings.Join(fields, ",")
}

func fixtureCSV(rows ...string) string {
	lines := append([]string{strings.Join(fullHeader(), ",")}, rows...)
	return strings.Join(lines, "\n") + "\n"
}

func TestParse(t *testing.T) {
	t.Parallel()

	content := fixtureCSV(
		row("101", "0.5", "N", "ML", "4", "100"),
		row("102", "1.25", "S", "HV", "1", "50"),
	)

	table, err := Parse(strings.NewReader(content), 2019, 1)
	require.NoError(t, err)

	assert.Equal(t, 2019, table.Year)
	assert.Equal(t, 1, table.Section)
	require.Len(t, table.Segments, 2)

	var want traffic.Segment
	want.ID = "101"
	want.Length = 0.5
	want.Direction = traffic.North
	want.Facility = traffic.MainLanes
	for _, p := range traffic.Periods() {
		want.Lanes[p] = 4
		want.Flows[p] = traffic.PeriodFlows{
			DriveAlone: 100, Shared2: 100, Shared3: 100,
			LightTruck: 100, MediumTruck: 100, HeavyTruck: 100,
		}
	}
	if diff := cmp.Diff(want, table.Segments[0]); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "102", table.Segments[1].ID)
	assert.Equal(t, traffic.South, table.Segments[1].Direction)
	assert.Equal(t, traffic.HOVLanes, table.Segments[1].Facility)

	assert.True(t, table.HasColumn("AB_FLOW_DA"))
	assert.False(t, table.HasAADT)
}

func TestParseStripsBOM(t *testing.T) {
	t.Parallel()

	content := "\xEF\xBB\xBF" + fixtureCSV(row("1", "1", "N", "ML", "2", "10"))

	table, err := Parse(strings.NewReader(content), 2019, 1)
	require.NoError(t, err)
	assert.True(t, table.HasColumn("ID"))
}

func TestParseEmptyCellsAreZero(t *testing.T) {
	t.Parallel()

	content := fixtureCSV(row("1", "", "N", "ML", "", ""))

	table, err := Parse(strings.NewReader(content), 2019, 1)
	require.NoError(t, err)
	require.Len(t, table.Segments, 1)

	seg := table.Segments[0]
	assert.Zero(t, seg.Length)
	assert.Zero(t, seg.Lanes[traffic.AM])
	assert.Zero(t, seg.Flows[traffic.PM].Total())
}

func TestParseMissingRequiredColumns(t *testing.T) {
	t.Parallel()

	content := "ID,LENGTH,AB_FLOW_DA,AB_FLOW_D1\n1,0.5,10,10\n"

	_, err := Parse(strings.NewReader(content), 2019, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DIRECT")
	assert.Contains(t, err.Error(), "TYPE")
}

func TestParseRequiresPeakFlowColumns(t *testing.T) {
	t.Parallel()

	// Identity columns present, AM flows present, but no PM flow column.
	content := "ID,LENGTH,DIRECT,TYPE,AB_FLOW_DA\n1,0.5,N,ML,10\n"

	_, err := Parse(strings.NewReader(content), 2019, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PM")
}

func TestParseBadNumber(t *testing.T) {
	t.Parallel()

	content := fixtureCSV(
		row("1", "0.5", "N", "ML", "4", "100"),
		row("2", "oops", "N", "ML", "4", "100"),
	)

	_, err := Parse(strings.NewReader(content), 2019, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "LENGTH")
}

func TestLoadAllSections(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemFileSystem()
	content := fixtureCSV(row("1", "0.5", "N", "ML", "4", "100"))
	require.NoError(t, mfs.WriteFile("in/corridor-2019-sec1.csv", []byte(content), 0644))
	require.NoError(t, mfs.WriteFile("in/corridor-2019-sec3.csv", []byte(content), 0644))

	tables, err := LoadAllSections(mfs, "in", "corridor-%d-sec%d.csv", 2019, []int{1, 2, 3})
	require.NoError(t, err)

	// Section 2 has no input file and is skipped.
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].Section)
	assert.Equal(t, 3, tables[1].Section)
}

func TestLoadAllSectionsParseErrorPropagates(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemFileSystem()
	require.NoError(t, mfs.WriteFile("in/corridor-2019-sec1.csv", []byte("ID\n1\n"), 0644))

	_, err := LoadAllSections(mfs, "in", "corridor-%d-sec%d.csv", 2019, []int{1})
	assert.Error(t, err)
}
