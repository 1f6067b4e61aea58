package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyParamsDefaults(t *testing.T) {
	t.Parallel()

	p := EmptyParams()

	assert.Equal(t, "AM", p.GetTruckIntensityLanePeriod())
	assert.Equal(t, 15.0, p.GetHighTruckPctThreshold())
	assert.Equal(t, 0.85, p.GetBottleneckVCThreshold())
	assert.Equal(t, "corridor-%d-sec%d.csv", p.GetInputFilePattern())
	assert.Equal(t, "Corridor_Analysis_Output.xlsx", p.GetWorkbookName())
}

func TestLoadParamsPartial(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "params.json")
	err := os.WriteFile(path, []byte(`{"bottleneck_vc_threshold": 0.9}`), 0644)
	require.NoError(t, err)

	p, err := LoadParams(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, p.GetBottleneckVCThreshold())
	// Unset fields keep defaults.
	assert.Equal(t, "AM", p.GetTruckIntensityLanePeriod())
	assert.Equal(t, 15.0, p.GetHighTruckPctThreshold())
}

func TestLoadParamsFull(t *testing.T) {
	t.Parallel()

	content := `{
		"truck_intensity_lane_period": "PM",
		"high_truck_pct_threshold": 20,
		"bottleneck_vc_threshold": 1.0,
		"input_file_pattern": "i5-%d-s%d.csv",
		"workbook_name": "out.xlsx"
	}`
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := LoadParams(path)
	require.NoError(t, err)

	assert.Equal(t, "PM", p.GetTruckIntensityLanePeriod())
	assert.Equal(t, 20.0, p.GetHighTruckPctThreshold())
	assert.Equal(t, 1.0, p.GetBottleneckVCThreshold())
	assert.Equal(t, "i5-%d-s%d.csv", p.GetInputFilePattern())
	assert.Equal(t, "out.xlsx", p.GetWorkbookName())
}

func TestLoadParamsRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	_, err := LoadParams(path)
	assert.Error(t, err)
}

func TestLoadParamsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadParams(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadParamsInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadParams(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  *Params
		wantErr bool
	}{
		{"empty", EmptyParams(), false},
		{"valid period", &Params{TruckIntensityLanePeriod: ptrString("EVE")}, false},
		{"bad period", &Params{TruckIntensityLanePeriod: ptrString("NOON")}, true},
		{"truck pct too high", &Params{HighTruckPctThreshold: ptrFloat64(101)}, true},
		{"truck pct negative", &Params{HighTruckPctThreshold: ptrFloat64(-1)}, true},
		{"truck pct boundary", &Params{HighTruckPctThreshold: ptrFloat64(100)}, false},
		{"vc threshold too high", &Params{BottleneckVCThreshold: ptrFloat64(3.5)}, true},
		{"vc threshold boundary", &Params{BottleneckVCThreshold: ptrFloat64(3.0)}, false},
		{"empty pattern", &Params{InputFilePattern: ptrString("")}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
