package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/render"
)

// SVGOptions controls PathToSVG. Cells is the number of shaded squares per
// side of the background; zero skips the background.
type SVGOptions struct {
	Width, Height int
	Cells         int
	StrokeColor   string
	PointColor    string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 600, Height: 600, Cells: 60, StrokeColor: "#00ff00", PointColor: "#ff3030"}
}

// PathToSVG draws a chain over its surface inside the window of view. It
// returns "" for fewer than two points.
func PathToSVG(points []geom.Vec2, s neb.Surface, view render.ImageConfig, opts SVGOptions) string {
	if len(points) < 2 || view.Width <= 0 || view.Height <= 0 {
		return ""
	}

	width, height := float64(opts.Width), float64(opts.Height)
	toSVG := func(p geom.Vec2) (float64, float64) {
		x := (p.X - view.X0) / view.Width * width
		y := height - (p.Y-view.Y0)/view.Height*height
		return x, y
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height))

	if opts.Cells > 0 && s != nil {
		writeBackground(&sb, s, view, opts)
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.StrokeColor))
	for i, p := range points {
		x, y := toSVG(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", opts.PointColor))
	for _, p := range points {
		x, y := toSVG(p)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3"/>
`, x, y))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// writeBackground shades a Cells×Cells grid by energy, darkest at the
// minimum.
func writeBackground(sb *strings.Builder, s neb.Surface, view render.ImageConfig, opts SVGOptions) {
	n := opts.Cells
	energies := make([]float64, n*n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			p := geom.V(
				view.X0+view.Width*(float64(i)+0.5)/float64(n),
				view.Y0+view.Height*(float64(j)+0.5)/float64(n),
			)
			e := s.EnergyAt(p)
			energies[j*n+i] = e
			lo, hi = math.Min(lo, e), math.Max(hi, e)
		}
	}

	cw := float64(opts.Width) / float64(n)
	ch := float64(opts.Height) / float64(n)
	sb.WriteString("<g stroke=\"none\">\n")
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v := 0
			if hi > lo {
				v = int((energies[j*n+i] - lo) / (hi - lo) * 200)
			}
			y := float64(opts.Height) - float64(j+1)*ch
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="rgb(%d,%d,%d)"/>
`, float64(i)*cw, y, cw+0.5, ch+0.5, v/3, v/3, v))
		}
	}
	sb.WriteString("</g>\n")
}
