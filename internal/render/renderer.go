package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
)

var (
	ColorPoint      = color.RGBA{255, 0, 0, 255}
	ColorGradient   = color.RGBA{0, 0, 255, 255}
	ColorConnection = color.RGBA{0, 255, 0, 255}
	ColorLabel      = color.RGBA{255, 255, 0, 255}
)

// Renderer paints chains over a pre-rasterised surface.
type Renderer struct {
	cfg        ImageConfig
	background *image.RGBA
}

// NewRenderer rasterises s once so later frames only copy the background.
func NewRenderer(cfg ImageConfig, s neb.Surface) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{cfg: cfg}
	r.background = r.rasterise(s)
	return r, nil
}

func (r *Renderer) Config() ImageConfig { return r.cfg }

// Background returns a copy of the shaded surface.
func (r *Renderer) Background() *image.RGBA {
	return cloneRGBA(r.background)
}

func (r *Renderer) rasterise(s neb.Surface) *image.RGBA {
	w, h := r.cfg.ResolutionX, r.cfg.ResolutionY
	energies := make([]float64, w*h)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e := s.EnergyAt(r.cfg.PointForPixel(x, y))
			energies[y*w+x] = e
			lo = math.Min(lo, e)
			hi = math.Max(hi, e)
		}
	}

	span := hi - lo
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if span > 0 {
				intensity := (energies[y*w+x] - lo) / span * 255 * r.cfg.ContourLines
				v = uint8(uint32(intensity) & 0xff)
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// Paint draws points as discs, the downhill vector at each point, and the
// segments between neighbours. label, if non-empty, goes in the top-left
// corner.
func (r *Renderer) Paint(points []geom.Vec2, s neb.Surface, label string) *image.RGBA {
	img := cloneRGBA(r.background)

	for _, p := range points {
		r.drawCircle(img, p, r.cfg.PointSize, ColorPoint)
	}
	for _, p := range points {
		r.drawLine(img, p, p.Add(s.GradientAt(p)), ColorGradient)
	}
	for i := 0; i+1 < len(points); i++ {
		r.drawLine(img, points[i], points[i+1], ColorConnection)
	}

	if label != "" {
		drawLabel(img, label)
	}
	return img
}

// drawLine walks the segment with a DDA; wide lines are stamped as discs.
func (r *Renderer) drawLine(img *image.RGBA, start, end geom.Vec2, c color.RGBA) {
	sx, sy := r.cfg.PixelForPoint(start)
	ex, ey := r.cfg.PixelForPoint(end)
	dx, dy := ex-sx, ey-sy

	steps := max(absInt(dx), absInt(dy))
	if steps == 0 {
		return
	}

	stepX := float64(dx) / float64(steps)
	stepY := float64(dy) / float64(steps)
	x, y := float64(sx), float64(sy)
	thin := r.cfg.thinLines()

	for i := 0; i < steps; i++ {
		px, py := int(x), int(y)
		if thin {
			if r.cfg.InBounds(px, py) {
				img.SetRGBA(px, py, c)
			}
		} else {
			r.drawCircle(img, r.cfg.PointForPixel(px, py), r.cfg.LineWidth, c)
		}
		x += stepX
		y += stepY
	}
}

func (r *Renderer) drawCircle(img *image.RGBA, p geom.Vec2, radius float64, c color.RGBA) {
	cx, cy := r.cfg.PixelForPoint(p)
	rx := int(radius * float64(r.cfg.ResolutionX) / r.cfg.Width)
	ry := int(radius * float64(r.cfg.ResolutionY) / r.cfg.Height)
	r2 := radius * radius

	for dx := -rx; dx <= rx; dx++ {
		for dy := -ry; dy <= ry; dy++ {
			x, y := cx+dx, cy+dy
			if r.cfg.InBounds(x, y) && p.DistSq(r.cfg.PointForPixel(x, y)) < r2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawLabel(img *image.RGBA, label string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ColorLabel),
		Face: face,
		Dot:  fixed.P(4, 4+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
