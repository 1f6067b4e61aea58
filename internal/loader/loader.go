// Package loader reads segment CSV exports into traffic tables.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and parses one segment CSV for the given year and section.
func Load(fsys fsutil.FileSystem, path string, year, section int) (*traffic.Table, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	table, err := Parse(bytes.NewReader(data), year, section)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a segment CSV from r. The header row names the columns; every
// file must carry the identity columns and at least one AM and one PM flow
// column. Empty numeric cells parse as zero.
func Parse(r io.Reader, year, section int) (*traffic.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}

	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		index[name] = i
		columns = append(columns, name)
	}

	table := traffic.NewTable(year, section, columns)

	if missing := table.MissingColumns(traffic.RequiredColumns()...); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	for _, p := range traffic.PeakPeriods() {
		if !hasAnyFlowColumn(table, p) {
			return nil, fmt.Errorf("no %s flow columns present", p)
		}
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		seg, err := parseSegment(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Segments = append(table.Segments, seg)
	}

	return table, nil
}

func hasAnyFlowColumn(t *traffic.Table, p traffic.Period) bool {
	for _, c := range traffic.FlowColumnsFor(p) {
		if t.HasColumn(c) {
			return true
		}
	}
	return false
}

func parseSegment(record []string, index map[string]int) (traffic.Segment, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	num := func(name string) (float64, error) {
		s := cell(name)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: invalid number %q", name, s)
		}
		return v, nil
	}

	var seg traffic.Segment
	seg.ID = cell(traffic.ColID)
	seg.Direction = traffic.Direction(strings.ToUpper(cell(traffic.ColDirection)))
	seg.Facility = traffic.Facility(strings.ToUpper(cell(traffic.ColFacility)))

	length, err := num(traffic.ColLength)
	if err != nil {
		return seg, err
	}
	seg.Length = length

	for _, p := range traffic.Periods() {
		lanes, err := num(traffic.LaneColumn(p))
		if err != nil {
			return seg, err
		}
		seg.Lanes[p] = lanes

		auto := traffic.AutoFlowColumns(p)
		truck := traffic.TruckFlowColumns(p)
		var f traffic.PeriodFlows
		targets := []struct {
			col string
			dst *float64
		}{
			{auto[0], &f.DriveAlone},
			{auto[1], &f.Shared2},
			{auto[2], &f.Shared3},
			{truck[0], &f.LightTruck},
			{truck[1], &f.MediumTruck},
			{truck[2], &f.HeavyTruck},
		}
		for _, t := range targets {
			v, err := num(t.col)
			if err != nil {
				return seg, err
			}
			*t.dst = v
		}
		seg.Flows[p] = f
	}

	return seg, nil
}

// SectionPath builds the input path for a (year, section) pair from the
// configured filename pattern.
func SectionPath(dir, pattern string, year, section int) string {
	return filepath.Join(dir, fmt.Sprintf(pattern, year, section))
}

// LoadSection loads the CSV for one (year, section) pair.
func LoadSection(fsys fsutil.FileSystem, dir, pattern string, year, section int) (*traffic.Table, error) {
	return Load(fsys, SectionPath(dir, pattern, year, section), year, section)
}

// LoadAllSections loads each requested section for a year. Sections whose
// input file does not exist are logged and skipped; any other load error is
// returned immediately.
func LoadAllSections(fsys fsutil.FileSystem, dir, pattern string, year int, sections []int) ([]*traffic.Table, error) {
	tables := make([]*traffic.Table, 0, len(sections))
	for _, s := range sections {
		path := SectionPath(dir, pattern, year, s)
		if !fsys.Exists(path) {
			monitoring.Warnf("loader", "input file %s not found, skipping section %d", path, s)
			continue
		}
		table, err := Load(fsys, path, year, s)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}
