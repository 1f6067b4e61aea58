// Command section-summary loads a single section CSV and prints the group
// summaries to stdout. Useful for eyeballing an input file before a full
// report run.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/corridor-data/corridor.report/internal/analysis"
	"github.com/corridor-data/corridor.report/internal/config"
	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/loader"
	"github.com/corridor-data/corridor.report/internal/monitoring"
	"github.com/corridor-data/corridor.report/internal/report"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

func main() {
	file := flag.String("file", "", "Section CSV file to summarize")
	year := flag.Int("year", 0, "Analysis year")
	section := flag.Int("section", 0, "Section number")
	paramsPath := flag.String("params", "", "Optional params JSON file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		flag.Usage()
		os.Exit(2)
	}

	// Stage logging gets in the way of the table output.
	monitoring.SetLogger(nil)

	params := config.EmptyParams()
	if *paramsPath != "" {
		var err error
		params, err = config.LoadParams(*paramsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load params: %v\n", err)
			os.Exit(2)
		}
	}

	tbl, err := loader.Load(fsutil.OSFileSystem{}, *file, *year, *section)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	sec, err := report.BuildSection(tbl, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	st := sec.AADTStats
	fmt.Printf("Segments: %d   Mean AADT: %.0f   Mean truck: %.1f%%   High-truck: %d\n\n",
		st.TotalSegments, st.MeanTotalAADT, st.MeanTruckPct, sec.TruckStats.HighTruckCount)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DIR\tFAC\tN\tMEAN AADT\tTRUCK %\tAM V/C\tAM LOS\tPM V/C\tPM LOS")
	amByKey := capacityByKey(sec, traffic.AM)
	pmByKey := capacityByKey(sec, traffic.PM)
	for _, g := range sec.AADTGroups {
		key := string(g.Direction) + string(g.Facility)
		am, pm := amByKey[key], pmByKey[key]
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%.1f\t%.2f\t%s\t%.2f\t%s\n",
			g.Direction, g.Facility, g.Count, g.MeanTotalAADT, g.MeanTruckPct,
			am.MeanVC, am.DominantLOS, pm.MeanVC, pm.DominantLOS)
	}
	w.Flush()

	if len(sec.Bottlenecks) > 0 {
		fmt.Printf("\nBottlenecks above V/C %.2f (PM):\n", params.GetBottleneckVCThreshold())
		for _, b := range sec.Bottlenecks {
			fmt.Printf("  %s %s %s  V/C %.2f  LOS %s\n",
				b.ID, b.Direction, b.Facility, b.VCRatio, b.LOS)
		}
	}
}

func capacityByKey(sec *report.Section, p traffic.Period) map[string]analysis.CapacityGroup {
	out := make(map[string]analysis.CapacityGroup, len(sec.CapacityGroups[p]))
	for _, g := range sec.CapacityGroups[p] {
		out[string(g.Direction)+string(g.Facility)] = g
	}
	return out
}
