package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Params represents the tunable analysis parameters. Fields are pointers so
// a partial JSON file only overrides what it names; the Get* methods supply
// defaults for everything else.
type Params struct {
	// Analysis params
	TruckIntensityLanePeriod *string  `json:"truck_intensity_lane_period,omitempty"` // AM, PM, MD, EVE or NT
	HighTruckPctThreshold    *float64 `json:"high_truck_pct_threshold,omitempty"`
	BottleneckVCThreshold    *float64 `json:"bottleneck_vc_threshold,omitempty"`

	// I/O params
	InputFilePattern *string `json:"input_file_pattern,omitempty"` // fmt pattern taking year then section
	WorkbookName     *string `json:"workbook_name,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyParams returns a Params with all fields unset.
func EmptyParams() *Params {
	return &Params{}
}

// LoadParams loads Params from a JSON file. The file must have a .json
// extension and be under the max file size. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func LoadParams(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("params file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat params file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("params file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	p := EmptyParams()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse params JSON: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	return p, nil
}

// Validate checks that the parameter values are usable.
func (p *Params) Validate() error {
	if p.TruckIntensityLanePeriod != nil {
		switch *p.TruckIntensityLanePeriod {
		case "AM", "PM", "MD", "EVE", "NT":
		default:
			return fmt.Errorf("truck_intensity_lane_period must be one of AM, PM, MD, EVE, NT, got %q", *p.TruckIntensityLanePeriod)
		}
	}

	if p.HighTruckPctThreshold != nil {
		if *p.HighTruckPctThreshold < 0 || *p.HighTruckPctThreshold > 100 {
			return fmt.Errorf("high_truck_pct_threshold must be between 0 and 100, got %f", *p.HighTruckPctThreshold)
		}
	}

	if p.BottleneckVCThreshold != nil {
		if *p.BottleneckVCThreshold < 0 || *p.BottleneckVCThreshold > 3.0 {
			return fmt.Errorf("bottleneck_vc_threshold must be between 0 and 3.0, got %f", *p.BottleneckVCThreshold)
		}
	}

	if p.InputFilePattern != nil && *p.InputFilePattern == "" {
		return fmt.Errorf("input_file_pattern must not be empty")
	}

	return nil
}

// GetTruckIntensityLanePeriod returns the period whose lane count normalizes
// truck intensity, or the default.
func (p *Params) GetTruckIntensityLanePeriod() string {
	if p.TruckIntensityLanePeriod == nil || *p.TruckIntensityLanePeriod == "" {
		return "AM" // default
	}
	return *p.TruckIntensityLanePeriod
}

// GetHighTruckPctThreshold returns the high_truck_pct_threshold value or the default.
func (p *Params) GetHighTruckPctThreshold() float64 {
	if p.HighTruckPctThreshold == nil {
		return 15.0 // default
	}
	return *p.HighTruckPctThreshold
}

// GetBottleneckVCThreshold returns the bottleneck_vc_threshold value or the default.
func (p *Params) GetBottleneckVCThreshold() float64 {
	if p.BottleneckVCThreshold == nil {
		return 0.85 // default
	}
	return *p.BottleneckVCThreshold
}

// GetInputFilePattern returns the input_file_pattern value or the default.
func (p *Params) GetInputFilePattern() string {
	if p.InputFilePattern == nil || *p.InputFilePattern == "" {
		return "corridor-%d-sec%d.csv" // default
	}
	return *p.InputFilePattern
}

// GetWorkbookName returns the workbook_name value or the default.
func (p *Params) GetWorkbookName() string {
	if p.WorkbookName == nil || *p.WorkbookName == "" {
		return "Corridor_Analysis_Output.xlsx" // default
	}
	return *p.WorkbookName
}
