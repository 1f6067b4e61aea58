// Command corridor-report runs the full corridor analysis for one or more
// (year, section) pairs and writes the delivery artifacts: the multi-sheet
// workbook, HTML charts, a V/C profile plot and CSV exports.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corridor-data/corridor.report/internal/config"
	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/loader"
	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/report"
)

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	years := flag.String("years", "", "Comma-separated analysis years (e.g. 2019,2045)")
	sections := flag.String("sections", "1,2,3", "Comma-separated section numbers")
	inputDir := flag.String("input", "data", "Directory holding the section CSV files")
	outputDir := flag.String("output", "output", "Directory for generated artifacts")
	paramsPath := flag.String("params", "", "Optional params JSON file")

	withWorkbook := flag.Bool("workbook", true, "Write the xlsx workbook")
	withCharts := flag.Bool("charts", true, "Write the HTML charts page")
	withPlots := flag.Bool("plots", true, "Write the V/C profile PNG")
	withCSV := flag.Bool("csv", true, "Write the CSV exports")

	flag.Parse()

	yearList, err := parseCSVIntSlice(*years)
	if err != nil || len(yearList) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -years value is required")
		flag.Usage()
		os.Exit(2)
	}
	sectionList, err := parseCSVIntSlice(*sections)
	if err != nil || len(sectionList) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -sections value is required")
		flag.Usage()
		os.Exit(2)
	}

	params := config.EmptyParams()
	if *paramsPath != "" {
		params, err = config.LoadParams(*paramsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load params: %v\n", err)
			os.Exit(2)
		}
	}

	fsys := fsutil.OSFileSystem{}
	meta := report.NewRunMeta()
	monitoring.Stepf("run", "starting run %s", meta.RunID)

	attempted, failed := 0, 0
	for _, year := range yearList {
		for _, section := range sectionList {
			path := loader.SectionPath(*inputDir, params.GetInputFilePattern(), year, section)
			if !fsys.Exists(path) {
				monitoring.Warnf("run", "input file %s not found, skipping", path)
				continue
			}
			attempted++
			if err := runSection(fsys, params, meta, *inputDir, *outputDir, year, section, sectionOutputs{
				workbook: *withWorkbook,
				charts:   *withCharts,
				plots:    *withPlots,
				csv:      *withCSV,
			}); err != nil {
				// One broken section never stops its siblings.
				monitoring.Warnf("run", "year %d section %d failed: %v", year, section, err)
				failed++
			}
		}
	}

	monitoring.Stepf("run", "done: %d sections processed, %d failed", attempted, failed)
	if attempted == 0 {
		fmt.Fprintln(os.Stderr, "no input files found")
		os.Exit(1)
	}
	if failed == attempted {
		os.Exit(1)
	}
}

type sectionOutputs struct {
	workbook bool
	charts   bool
	plots    bool
	csv      bool
}

// runSection loads one (year, section) input, runs the analysis and writes
// the requested artifacts under outputDir/<year>/sec<section>/.
func runSection(fsys fsutil.FileSystem, params *config.Params, meta report.RunMeta, inputDir, outputDir string, year, section int, outputs sectionOutputs) error {
	tbl, err := loader.LoadSection(fsys, inputDir, params.GetInputFilePattern(), year, section)
	if err != nil {
		return err
	}
	monitoring.Stepf("run", "year %d section %d: %d segments loaded", year, section, len(tbl.Segments))

	sec, err := report.BuildSection(tbl, params)
	if err != nil {
		return err
	}

	dir := filepath.Join(outputDir, strconv.Itoa(year), fmt.Sprintf("sec%d", section))
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if outputs.workbook {
		if err := report.WriteWorkbook(fsys, filepath.Join(dir, params.GetWorkbookName()), sec, meta); err != nil {
			return err
		}
	}
	if outputs.charts {
		if err := report.WriteCharts(fsys, filepath.Join(dir, "charts.html"), sec); err != nil {
			return err
		}
	}
	if outputs.plots {
		if err := report.WriteVCProfile(fsys, filepath.Join(dir, "vc_profile.png"), sec); err != nil {
			return err
		}
	}
	if outputs.csv {
		if err := report.WriteSegmentsCSV(fsys, filepath.Join(dir, "segments.csv"), sec.Table); err != nil {
			return err
		}
		if err := report.WriteGroupsCSV(fsys, filepath.Join(dir, "groups.csv"), sec); err != nil {
			return err
		}
	}
	return nil
}
