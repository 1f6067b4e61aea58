package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// Workbook sheet names, in tab order.
const (
	SheetSummary  = "Summary_all"
	SheetRawData  = "Raw_Data"
	SheetCalcs    = "Calculations"
	SheetTruck    = "Truck_Analysis"
	SheetPeakHour = "Peak_Hour_Analysis"
	SheetLOS      = "LOS_Analysis"
)

const headerFillColor = "366092"

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type wbStyles struct {
	header int
	int0   int
	dec1   int
	dec2   int
	pct1   int
}

func newWBStyles(f *excelize.File) (wbStyles, error) {
	var s wbStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Family: "Calibri", Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	numStyle := func(format string) (int, error) {
		return f.NewStyle(&excelize.Style{CustomNumFmt: &format, Border: thinBorder})
	}
	if s.int0, err = numStyle("#,##0"); err != nil {
		return s, err
	}
	if s.dec1, err = numStyle("#,##0.0"); err != nil {
		return s, err
	}
	if s.dec2, err = numStyle("#,##0.00"); err != nil {
		return s, err
	}
	if s.pct1, err = numStyle("0.0%"); err != nil {
		return s, err
	}
	return s, nil
}

// cell formats an undefined metric as the N/A marker instead of a NaN
// number, which spreadsheet readers reject.
func cell(v float64) interface{} {
	if math.IsNaN(v) {
		return "N/A"
	}
	return v
}

// writeTable writes a styled header row followed by data rows, starting at
// startRow. Returns the row after the written block.
func writeTable(f *excelize.File, styles wbStyles, sheet string, startRow int, headers []string, rows [][]interface{}) (int, error) {
	for c, h := range headers {
		name, err := excelize.CoordinatesToCellName(c+1, startRow)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheet, name, h); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(sheet, name, name, styles.header); err != nil {
			return 0, err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			name, err := excelize.CoordinatesToCellName(c+1, startRow+1+r)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(sheet, name, v); err != nil {
				return 0, err
			}
		}
	}
	return startRow + 1 + len(rows), nil
}

// WriteWorkbook renders the six-sheet analysis workbook for one section and
// writes it through the filesystem abstraction.
func WriteWorkbook(fsys fsutil.FileSystem, path string, sec *Section, meta RunMeta) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWBStyles(f)
	if err != nil {
		return fmt.Errorf("workbook styles: %w", err)
	}

	sheets := []struct {
		name  string
		write func(*excelize.File, wbStyles, *Section, RunMeta) error
	}{
		{SheetSummary, writeSummarySheet},
		{SheetRawData, writeRawDataSheet},
		{SheetCalcs, writeCalcsSheet},
		{SheetTruck, writeTruckSheet},
		{SheetPeakHour, writePeakSheet},
		{SheetLOS, writeLOSSheet},
	}
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		if err := sh.write(f, styles, sec, meta); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Write(w); err != nil {
		w.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	return w.Close()
}

func writeSummarySheet(f *excelize.File, styles wbStyles, sec *Section, meta RunMeta) error {
	sheet := SheetSummary
	if err := f.SetColWidth(sheet, "A", "B", 26); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "I", 16); err != nil {
		return err
	}

	metaRows := [][]interface{}{
		{"Model", meta.Model},
		{"Reference", meta.Reference},
		{"Run ID", meta.RunID.String()},
		{"Generated", meta.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Year", sec.Table.Year},
		{"Section", sec.Table.Section},
	}
	row, err := writeTable(f, styles, sheet, 1, []string{"Corridor Analysis", ""}, metaRows)
	if err != nil {
		return err
	}
	row++

	st := sec.AADTStats
	ts := sec.TruckStats
	statRows := [][]interface{}{
		{"Total segments", st.TotalSegments},
		{"Mean AADT", cell(st.MeanTotalAADT)},
		{"Min AADT", cell(st.MinTotalAADT)},
		{"Max AADT", cell(st.MaxTotalAADT)},
		{"Mean truck %", cell(st.MeanTruckPct)},
		{"Directions", st.Directions},
		{"Facility types", st.Facilities},
		{"High-truck segments", ts.HighTruckCount},
		{"Total truck AADT", cell(ts.TotalTruckAADT)},
	}
	row, err = writeTable(f, styles, sheet, row, []string{"Statistic", "Value"}, statRows)
	if err != nil {
		return err
	}
	row++

	groupRows := make([][]interface{}, 0, len(sec.AADTGroups))
	for _, g := range sec.AADTGroups {
		groupRows = append(groupRows, []interface{}{
			g.Direction.Name(), g.Facility.Name(), g.Count,
			cell(g.MeanTotalAADT), cell(g.MeanAutoAADT), cell(g.MeanTruckAADT),
			cell(g.MeanTruckPct / 100), cell(g.MinTotalAADT), cell(g.MaxTotalAADT),
		})
	}
	groupHeaderRow := row
	if _, err := writeTable(f, styles, sheet, row, []string{
		"Direction", "Facility", "Segments", "Mean AADT", "Mean Auto AADT",
		"Mean Truck AADT", "Mean Truck %", "Min AADT", "Max AADT",
	}, groupRows); err != nil {
		return err
	}
	if err := setColumnFormat(f, sheet, styles.int0, 4, 6, groupHeaderRow, len(groupRows)); err != nil {
		return err
	}
	return setColumnFormat(f, sheet, styles.pct1, 7, 7, groupHeaderRow, len(groupRows))
}

func writeRawDataSheet(f *excelize.File, styles wbStyles, sec *Section, _ RunMeta) error {
	sheet := SheetRawData
	if err := f.SetColWidth(sheet, "A", "S", 13); err != nil {
		return err
	}

	headers := []string{"ID", "Length (mi)", "Direction", "Facility"}
	for _, p := range traffic.Periods() {
		headers = append(headers,
			p.String()+" Lanes",
			p.String()+" Flow",
			p.String()+" Truck Flow")
	}

	rows := make([][]interface{}, 0, len(sec.Table.Segments))
	for i := range sec.Table.Segments {
		s := &sec.Table.Segments[i]
		row := []interface{}{s.ID, s.Length, string(s.Direction), string(s.Facility)}
		for _, p := range traffic.Periods() {
			row = append(row, s.Lanes[p], s.Flows[p].Total(), s.Flows[p].Truck())
		}
		rows = append(rows, row)
	}
	_, err := writeTable(f, styles, sheet, 1, headers, rows)
	if err != nil {
		return err
	}
	return setColumnFormat(f, sheet, styles.int0, 6, len(headers), 1, len(rows))
}

func writeCalcsSheet(f *excelize.File, styles wbStyles, sec *Section, _ RunMeta) error {
	sheet := SheetCalcs
	if err := f.SetColWidth(sheet, "A", "Q", 14); err != nil {
		return err
	}

	headers := []string{
		"ID", "Direction", "Facility",
		"Total AADT", "Auto AADT", "Truck AADT", "Truck %",
	}
	for _, p := range traffic.PeakPeriods() {
		headers = append(headers,
			p.String()+" Peak Flow",
			p.String()+" PCE Flow",
			p.String()+" Capacity",
			p.String()+" V/C",
			p.String()+" LOS")
	}

	rows := make([][]interface{}, 0, len(sec.Table.Segments))
	for i := range sec.Table.Segments {
		s := &sec.Table.Segments[i]
		row := []interface{}{
			s.ID, string(s.Direction), string(s.Facility),
			s.TotalAADT, s.AutoAADT, s.TruckAADT, s.TruckPct,
		}
		for _, p := range traffic.PeakPeriods() {
			k := p.PeakIndex()
			row = append(row,
				s.PeakTotal[k], s.PCEFlow[k], s.Capacity[k],
				cell(s.VCRatio[k]), string(s.LOS[k]))
		}
		rows = append(rows, row)
	}
	if _, err := writeTable(f, styles, sheet, 1, headers, rows); err != nil {
		return err
	}
	if err := setColumnFormat(f, sheet, styles.int0, 4, 6, 1, len(rows)); err != nil {
		return err
	}
	if err := setColumnFormat(f, sheet, styles.dec1, 7, 7, 1, len(rows)); err != nil {
		return err
	}
	// V/C columns for the AM and PM blocks.
	if err := setColumnFormat(f, sheet, styles.dec2, 11, 11, 1, len(rows)); err != nil {
		return err
	}
	return setColumnFormat(f, sheet, styles.dec2, 16, 16, 1, len(rows))
}

func writeTruckSheet(f *excelize.File, styles wbStyles, sec *Section, _ RunMeta) error {
	sheet := SheetTruck
	if err := f.SetColWidth(sheet, "A", "H", 16); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(sec.Table.Segments))
	for i := range sec.Table.Segments {
		s := &sec.Table.Segments[i]
		rows = append(rows, []interface{}{
			s.ID, string(s.Direction), string(s.Facility),
			s.TruckAADT, s.TruckPct, s.TruckIntensity,
			s.AMTruckRatio, s.PMTruckRatio,
		})
	}
	row, err := writeTable(f, styles, sheet, 1, []string{
		"ID", "Direction", "Facility", "Truck AADT", "Truck %",
		"Truck Intensity", "AM Truck Ratio", "PM Truck Ratio",
	}, rows)
	if err != nil {
		return err
	}
	row++

	compRows := make([][]interface{}, 0, len(sec.Composition))
	for _, c := range sec.Composition {
		compRows = append(compRows, []interface{}{
			c.Period.String(), c.Light, c.Medium, c.Heavy,
			c.LightShare, c.MediumShare, c.HeavyShare,
		})
	}
	row, err = writeTable(f, styles, sheet, row, []string{
		"Period", "Light", "Medium", "Heavy",
		"Light %", "Medium %", "Heavy %",
	}, compRows)
	if err != nil {
		return err
	}
	row++

	shareRows := make([][]interface{}, 0, len(sec.TruckShares))
	for _, s := range sec.TruckShares {
		shareRows = append(shareRows, []interface{}{
			s.Direction.Name(), s.Facility.Name(), cell(s.TruckAADT),
			cell(s.AMSharePct), cell(s.PMSharePct),
		})
	}
	row, err = writeTable(f, styles, sheet, row, []string{
		"Direction", "Facility", "Truck AADT",
		"AM Peak Share %", "PM Peak Share %",
	}, shareRows)
	if err != nil {
		return err
	}
	row++

	highRows := make([][]interface{}, 0, len(sec.HighTruck))
	for _, h := range sec.HighTruck {
		highRows = append(highRows, []interface{}{
			h.ID, h.Direction.Name(), h.Facility.Name(), h.TruckPct, h.TruckAADT,
		})
	}
	_, err = writeTable(f, styles, sheet, row, []string{
		"High-Truck Segment", "Direction", "Facility", "Truck %", "Truck AADT",
	}, highRows)
	return err
}

func writePeakSheet(f *excelize.File, styles wbStyles, sec *Section, _ RunMeta) error {
	sheet := SheetPeakHour
	if err := f.SetColWidth(sheet, "A", "H", 16); err != nil {
		return err
	}

	row := 1
	for _, p := range traffic.PeakPeriods() {
		groups := sec.PeakGroups[p]
		rows := make([][]interface{}, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []interface{}{
				g.Direction.Name(), g.Facility.Name(), g.Count,
				cell(g.MeanPeakTotal), cell(g.MeanPeakAuto), cell(g.MeanPeakTruck),
				cell(g.MinPeakTotal), cell(g.MaxPeakTotal),
			})
		}
		var err error
		row, err = writeTable(f, styles, sheet, row, []string{
			p.String() + " Direction", "Facility", "Segments",
			"Mean Peak Flow", "Mean Auto", "Mean Truck", "Min Peak", "Max Peak",
		}, rows)
		if err != nil {
			return err
		}
		row++
	}

	truckCmpRows := make([][]interface{}, 0, len(sec.TruckComparisons))
	for _, c := range sec.TruckComparisons {
		truckCmpRows = append(truckCmpRows, []interface{}{
			c.Direction.Name(), c.Facility.Name(),
			cell(c.AMMeanTruck), cell(c.PMMeanTruck), cell(c.Diff), c.WorsePeriod,
		})
	}
	_, err := writeTable(f, styles, sheet, row, []string{
		"Direction", "Facility", "AM Mean Truck", "PM Mean Truck",
		"Difference", "Heavier Period",
	}, truckCmpRows)
	return err
}

func writeLOSSheet(f *excelize.File, styles wbStyles, sec *Section, _ RunMeta) error {
	sheet := SheetLOS
	if err := f.SetColWidth(sheet, "A", "I", 16); err != nil {
		return err
	}

	row := 1
	for _, p := range traffic.PeakPeriods() {
		dist := sec.LOSDist[p]
		rows := make([][]interface{}, 0, len(dist.Grades)+1)
		for _, g := range dist.Grades {
			rows = append(rows, []interface{}{
				string(g.Grade), traffic.GradeDescription(g.Grade), g.Count, g.Pct,
			})
		}
		rows = append(rows, []interface{}{
			"Over capacity", "V/C above 1.0", dist.OverCapacity, dist.OverCapacityPct,
		})
		var err error
		row, err = writeTable(f, styles, sheet, row, []string{
			p.String() + " LOS", "Condition", "Segments", "Share %",
		}, rows)
		if err != nil {
			return err
		}
		row++
	}

	for _, p := range traffic.PeakPeriods() {
		groups := sec.CapacityGroups[p]
		rows := make([][]interface{}, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []interface{}{
				g.Direction.Name(), g.Facility.Name(), g.Count,
				cell(g.MeanPCEFlow), cell(g.MeanCap),
				cell(g.MeanVC), cell(g.MinVC), cell(g.MaxVC),
				string(g.DominantLOS),
			})
		}
		var err error
		row, err = writeTable(f, styles, sheet, row, []string{
			p.String() + " Direction", "Facility", "Segments", "Mean PCE Flow",
			"Mean Capacity", "Mean V/C", "Min V/C", "Max V/C", "Dominant LOS",
		}, rows)
		if err != nil {
			return err
		}
		row++
	}

	cmpRows := make([][]interface{}, 0, len(sec.Comparisons))
	for _, c := range sec.Comparisons {
		cmpRows = append(cmpRows, []interface{}{
			c.Direction.Name(), c.Facility.Name(),
			cell(c.AMMeanVC), cell(c.PMMeanVC), cell(c.VCDiff), c.WorsePeriod,
		})
	}
	row, err := writeTable(f, styles, sheet, row, []string{
		"Direction", "Facility", "AM Mean V/C", "PM Mean V/C",
		"Difference", "Worse Period",
	}, cmpRows)
	if err != nil {
		return err
	}
	row++

	botRows := make([][]interface{}, 0, len(sec.Bottlenecks))
	for _, b := range sec.Bottlenecks {
		botRows = append(botRows, []interface{}{
			b.ID, b.Direction.Name(), b.Facility.Name(), b.VCRatio, string(b.LOS),
		})
	}
	_, err = writeTable(f, styles, sheet, row, []string{
		"Bottleneck Segment", "Direction", "Facility", "PM V/C", "LOS",
	}, botRows)
	return err
}

// setColumnFormat applies a number style to a rectangular data range below
// the header row at headerRow.
func setColumnFormat(f *excelize.File, sheet string, style, firstCol, lastCol, headerRow, rowCount int) error {
	if rowCount == 0 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(firstCol, headerRow+1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(lastCol, headerRow+rowCount)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}
