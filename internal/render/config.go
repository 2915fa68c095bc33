package render

import (
	"errors"
	"fmt"

	"github.com/san-kum/mepsim/internal/geom"
)

// ImageConfig maps a rectangle of the plane onto a pixel grid.
type ImageConfig struct {
	// ContourLines multiplies the 0..255 intensity before it wraps around,
	// turning the shading into that many contour bands.
	ContourLines float64 `yaml:"contour_lines" json:"contour_lines"`
	X0           float64 `yaml:"x0" json:"x0"`
	Y0           float64 `yaml:"y0" json:"y0"`
	Width        float64 `yaml:"width" json:"width"`
	Height       float64 `yaml:"height" json:"height"`
	ResolutionX  int     `yaml:"resolution_x" json:"resolution_x"`
	ResolutionY  int     `yaml:"resolution_y" json:"resolution_y"`
	PointSize    float64 `yaml:"point_size" json:"point_size"`
	LineWidth    float64 `yaml:"line_width" json:"line_width"`
}

var ErrInvalidImage = errors.New("render: invalid image configuration")

func (c ImageConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidImage)
	}
	if c.ResolutionX <= 0 || c.ResolutionY <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidImage, c.ResolutionX, c.ResolutionY)
	}
	if c.PointSize < 0 || c.LineWidth < 0 {
		return fmt.Errorf("%w: point size and line width must be non-negative", ErrInvalidImage)
	}
	return nil
}

// PointForPixel returns the plane coordinate of a pixel. The y axis points
// up in the plane and down in the image.
func (c ImageConfig) PointForPixel(x, y int) geom.Vec2 {
	return geom.Vec2{
		X: c.X0 + c.Width*float64(x)/float64(c.ResolutionX),
		Y: c.Y0 + c.Height - c.Height*float64(y)/float64(c.ResolutionY),
	}
}

// PixelForPoint returns the pixel of p, whether or not it lies on the canvas.
func (c ImageConfig) PixelForPoint(p geom.Vec2) (int, int) {
	px := (p.X - c.X0) / c.Width * float64(c.ResolutionX)
	py := (p.Y - c.Y0) / c.Height * float64(c.ResolutionY)
	return int(px), c.ResolutionY - 1 - int(py)
}

func (c ImageConfig) InBounds(x, y int) bool {
	return x >= 0 && x < c.ResolutionX && y >= 0 && y < c.ResolutionY
}

// thinLines reports whether a line of LineWidth is at most one pixel wide.
func (c ImageConfig) thinLines() bool {
	return c.LineWidth/c.Width*float64(c.ResolutionX) <= 1 &&
		c.LineWidth/c.Height*float64(c.ResolutionY) <= 1
}
