package export

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/mepsim/internal/analysis"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// EnergyPlot saves the average energy per iteration. The file format
// follows the extension of path (png, svg, pdf, ...).
func EnergyPlot(energies []float64, path string) error {
	if len(energies) == 0 {
		return fmt.Errorf("no energies to plot")
	}

	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i)
		pts[i].Y = e
	}

	p := plot.New()
	p.Title.Text = "Chain energy"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "average energy"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(plotWidth, plotHeight, path)
}

// ConvergencePlot saves |ΔE| per iteration on a log axis. Iterations that
// left the energy unchanged are skipped.
func ConvergencePlot(energies []float64, path string) error {
	var pts plotter.XYs
	for i := 1; i < len(energies); i++ {
		d := math.Abs(energies[i] - energies[i-1])
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: d})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no energy changes to plot")
	}

	p := plot.New()
	p.Title.Text = "Convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "|ΔE|"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(plotWidth, plotHeight, path)
}

// ProfilePlot saves energy against arc length and marks the saddle.
func ProfilePlot(prof *analysis.Profile, path string) error {
	if prof == nil || len(prof.Energies) == 0 {
		return fmt.Errorf("empty profile")
	}

	pts := make(plotter.XYs, len(prof.Energies))
	for i := range pts {
		pts[i].X = prof.Arc[i]
		pts[i].Y = prof.Energies[i]
	}

	p := plot.New()
	p.Title.Text = "Energy profile"
	p.X.Label.Text = "arc length"
	p.Y.Label.Text = "energy"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)

	s := prof.Saddle()
	saddle, err := plotter.NewScatter(plotter.XYs{{X: s.Arc, Y: s.Energy}})
	if err != nil {
		return err
	}
	saddle.Radius = vg.Points(5)
	p.Add(saddle)
	p.Legend.Add(fmt.Sprintf("saddle %.4f", s.Energy), saddle)

	return p.Save(plotWidth, plotHeight, path)
}
