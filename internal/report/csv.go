package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSegmentsCSV exports the computed per-segment table: inputs first,
// derived metrics after, one row per segment.
func WriteSegmentsCSV(fsys fsutil.FileSystem, path string, tbl *traffic.Table) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"ID", "LENGTH", "DIRECT", "TYPE",
		"TOTAL_AADT", "AUTO_AADT", "TRUCK_AADT", "TRUCK_PCT"}
	for _, p := range traffic.PeakPeriods() {
		name := p.String()
		header = append(header,
			name+"_PEAK_TOTAL", name+"_PEAK_AUTO", name+"_PEAK_TRUCK",
			name+"_PCE_FLOW", name+"_CAPACITY", name+"_VC_RATIO", name+"_LOS")
	}
	header = append(header, "TRUCK_INTENSITY", "AM_TRUCK_RATIO", "PM_TRUCK_RATIO")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range tbl.Segments {
		s := &tbl.Segments[i]
		row := []string{
			s.ID, csvFloat(s.Length), string(s.Direction), string(s.Facility),
			csvFloat(s.TotalAADT), csvFloat(s.AutoAADT), csvFloat(s.TruckAADT), csvFloat(s.TruckPct),
		}
		for _, p := range traffic.PeakPeriods() {
			k := p.PeakIndex()
			row = append(row,
				csvFloat(s.PeakTotal[k]), csvFloat(s.PeakAuto[k]), csvFloat(s.PeakTruck[k]),
				csvFloat(s.PCEFlow[k]), csvFloat(s.Capacity[k]), csvFloat(s.VCRatio[k]),
				string(s.LOS[k]))
		}
		row = append(row, csvFloat(s.TruckIntensity), csvFloat(s.AMTruckRatio), csvFloat(s.PMTruckRatio))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write segment %s: %w", s.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteGroupsCSV exports the (direction, facility) group summaries: daily
// volumes, truck metrics and the per-period capacity stats.
func WriteGroupsCSV(fsys fsutil.FileSystem, path string, sec *Section) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"DIRECT", "TYPE", "SEGMENTS",
		"MEAN_AADT", "MEAN_AUTO_AADT", "MEAN_TRUCK_AADT", "MEAN_TRUCK_PCT",
		"MEAN_TRUCK_INTENSITY"}
	for _, p := range traffic.PeakPeriods() {
		name := p.String()
		header = append(header, name+"_MEAN_VC", name+"_DOMINANT_LOS")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	type capStats struct {
		meanVC float64
		los    traffic.Grade
	}
	capByKey := make(map[traffic.Period]map[string]capStats)
	for _, p := range traffic.PeakPeriods() {
		capByKey[p] = make(map[string]capStats)
		for _, g := range sec.CapacityGroups[p] {
			capByKey[p][string(g.Direction)+string(g.Facility)] = capStats{g.MeanVC, g.DominantLOS}
		}
	}
	truckByKey := make(map[string]float64)
	for _, g := range sec.TruckGroups {
		truckByKey[string(g.Direction)+string(g.Facility)] = g.MeanTruckIntensity
	}

	for _, g := range sec.AADTGroups {
		key := string(g.Direction) + string(g.Facility)
		row := []string{
			string(g.Direction), string(g.Facility), strconv.Itoa(g.Count),
			csvFloat(g.MeanTotalAADT), csvFloat(g.MeanAutoAADT),
			csvFloat(g.MeanTruckAADT), csvFloat(g.MeanTruckPct),
			csvFloat(truckByKey[key]),
		}
		for _, p := range traffic.PeakPeriods() {
			c := capByKey[p][key]
			row = append(row, csvFloat(c.meanVC), string(c.los))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write group %s %s: %w", g.Direction, g.Facility, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
