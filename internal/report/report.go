// Package report renders analysis results into the delivery artifacts:
// a formatted workbook, HTML charts, PNG plots and CSV exports.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corridor-data/corridor.report/internal/analysis"
	"github.com/corridor-data/corridor.report/internal/config"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// RunMeta identifies one report run. It is stamped into the workbook
// summary sheet and artifact filenames.
type RunMeta struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Model       string
	Reference   string
}

// NewRunMeta stamps a fresh run identifier.
func NewRunMeta() RunMeta {
	return RunMeta{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Model:       "Regional activity-based model link export",
		Reference:   "HCM 2010 freeway LOS thresholds",
	}
}

// Section bundles one (year, section) table with every derived summary the
// renderers consume.
type Section struct {
	Table *traffic.Table

	AADTGroups []analysis.AADTGroup
	AADTStats  *analysis.AADTStats

	PeakGroups     map[traffic.Period][]analysis.PeakGroup
	CapacityGroups map[traffic.Period][]analysis.CapacityGroup
	LOSDist        map[traffic.Period]*analysis.LOSDistribution
	Comparisons    []analysis.PeriodComparison
	Bottlenecks    []analysis.Bottleneck

	TruckGroups      []analysis.TruckGroup
	TruckStats       *analysis.TruckStats
	HighTruck        []analysis.HighTruckSegment
	TruckComparisons []analysis.TruckFlowComparison
	TruckShares      []analysis.TruckShare
	Composition      []analysis.ClassComposition
}

// BuildSection runs the full stage pipeline over a loaded table and collects
// every summary. Parameters control the truck lane-normalization period and
// the bottleneck/high-truck thresholds.
func BuildSection(tbl *traffic.Table, params *config.Params) (*Section, error) {
	lanePeriod, err := traffic.ParsePeriod(params.GetTruckIntensityLanePeriod())
	if err != nil {
		return nil, fmt.Errorf("invalid truck intensity lane period: %w", err)
	}

	out, err := analysis.ComputeAADT(tbl)
	if err != nil {
		return nil, fmt.Errorf("aadt stage: %w", err)
	}
	out, err = analysis.ComputePeakFlows(out)
	if err != nil {
		return nil, fmt.Errorf("peak stage: %w", err)
	}
	out, err = analysis.ComputeAllCapacity(out)
	if err != nil {
		return nil, fmt.Errorf("capacity stage: %w", err)
	}
	out, err = analysis.ComputeTruckMetrics(out, lanePeriod)
	if err != nil {
		return nil, fmt.Errorf("truck stage: %w", err)
	}

	sec := &Section{
		Table:          out,
		PeakGroups:     make(map[traffic.Period][]analysis.PeakGroup, traffic.NumPeakPeriods),
		CapacityGroups: make(map[traffic.Period][]analysis.CapacityGroup, traffic.NumPeakPeriods),
		LOSDist:        make(map[traffic.Period]*analysis.LOSDistribution, traffic.NumPeakPeriods),
	}

	if sec.AADTGroups, err = analysis.AllGroupsAADT(out); err != nil {
		return nil, err
	}
	if sec.AADTStats, err = analysis.AADTSummary(out); err != nil {
		return nil, err
	}
	for _, p := range traffic.PeakPeriods() {
		if sec.PeakGroups[p], err = analysis.AllGroupsPeak(out, p); err != nil {
			return nil, err
		}
		if sec.CapacityGroups[p], err = analysis.AllGroupsCapacity(out, p); err != nil {
			return nil, err
		}
		if sec.LOSDist[p], err = analysis.GetLOSDistribution(out, p); err != nil {
			return nil, err
		}
	}
	if sec.Comparisons, err = analysis.CompareAMPM(out); err != nil {
		return nil, err
	}
	if sec.Bottlenecks, err = analysis.IdentifyBottlenecks(out, traffic.PM, params.GetBottleneckVCThreshold()); err != nil {
		return nil, err
	}
	if sec.TruckGroups, err = analysis.AllGroupsTruck(out); err != nil {
		return nil, err
	}
	if sec.TruckStats, err = analysis.TruckSummary(out, params.GetHighTruckPctThreshold()); err != nil {
		return nil, err
	}
	if sec.HighTruck, err = analysis.IdentifyHighTruckSegments(out, params.GetHighTruckPctThreshold()); err != nil {
		return nil, err
	}
	if sec.TruckComparisons, err = analysis.CompareAMPMTruckFlows(out); err != nil {
		return nil, err
	}
	if sec.TruckShares, err = analysis.TruckShareOfDaily(out); err != nil {
		return nil, err
	}
	if sec.Composition, err = analysis.AnalyzeTruckComposition(out); err != nil {
		return nil, err
	}

	return sec, nil
}
