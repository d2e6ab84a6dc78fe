package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/formsense/repform/internal/exercise"
)

// SaveSeriesPNG renders the driving-metric time series of an analysis run to
// a PNG. Zero values mark frames where landmarks were invalid; they are
// skipped rather than plotted as real angles.
func SaveSeriesPNG(path string, cfg exercise.Config, series []float64) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s over frames", cfg.Name, cfg.DrivingMetric)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Angle (deg)"

	pts := make(plotter.XYs, 0, len(series))
	for i, v := range series {
		if v == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: v})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line plot: %w", err)
	}
	p.Add(line)

	entryLine := horizontalLine(cfg.EntryThreshold, len(series))
	exitLine := horizontalLine(cfg.ExitThreshold, len(series))
	if entry, err := plotter.NewLine(entryLine); err == nil {
		entry.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(entry)
	}
	if exit, err := plotter.NewLine(exitLine); err == nil {
		exit.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(6)}
		p.Add(exit)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func horizontalLine(y float64, n int) plotter.XYs {
	if n < 2 {
		n = 2
	}
	return plotter.XYs{{X: 0, Y: y}, {X: float64(n - 1), Y: y}}
}
