package analysis

import (
	"strings"

	"github.com/san-kum/mepsim/internal/geom"
)

type xy struct{ X, Y float64 }

// plotASCII scatters points on a width×height rune canvas with 10% padding
// and draws the axes when they are visible.
func plotASCII(points []xy, width, height int, mark func(i int) rune) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for i, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = mark(i)
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// ProfileToASCII plots energy against arc length; the saddle is drawn as ▲.
func ProfileToASCII(p *Profile, width, height int) string {
	if p == nil || len(p.Energies) == 0 {
		return ""
	}
	points := make([]xy, len(p.Energies))
	for i := range points {
		points[i] = xy{p.Arc[i], p.Energies[i]}
	}
	saddle := p.Saddle().Index
	return plotASCII(points, width, height, func(i int) rune {
		if i == saddle {
			return '▲'
		}
		return '•'
	})
}

// PathToASCII plots the chain in the plane with its anchors drawn as ◆.
func PathToASCII(path []geom.Vec2, width, height int) string {
	points := make([]xy, len(path))
	for i, p := range path {
		points[i] = xy{p.X, p.Y}
	}
	last := len(path) - 1
	return plotASCII(points, width, height, func(i int) rune {
		if i == 0 || i == last {
			return '◆'
		}
		return '•'
	})
}
