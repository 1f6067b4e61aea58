package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

var plotColors = map[traffic.Period]color.RGBA{
	traffic.AM: {R: 31, G: 119, B: 180, A: 255},
	traffic.PM: {R: 214, G: 39, B: 40, A: 255},
}

// WriteVCProfile renders the section's V/C ratio over segment index as a
// PNG, one line per peak period. Segments with undefined V/C leave gaps.
func WriteVCProfile(fsys fsutil.FileSystem, path string, sec *Section) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("V/C profile: year %d section %d", sec.Table.Year, sec.Table.Section)
	p.X.Label.Text = "Segment index"
	p.Y.Label.Text = "V/C ratio"
	p.Legend.Top = true

	for _, period := range traffic.PeakPeriods() {
		k := period.PeakIndex()
		pts := make(plotter.XYs, 0, len(sec.Table.Segments))
		for i := range sec.Table.Segments {
			vc := sec.Table.Segments[i].VCRatio[k]
			if math.IsNaN(vc) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(i), Y: vc})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", period, err)
		}
		line.Width = vg.Points(1.5)
		line.Color = plotColors[period]
		p.Add(line)
		p.Legend.Add(period.String(), line)
	}

	// Capacity threshold marker at V/C = 1.
	threshold := plotter.NewFunction(func(float64) float64 { return 1.0 })
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	threshold.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(threshold)

	wt, err := p.WriterTo(12*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("write plot: %w", err)
	}
	return w.Close()
}
