package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/san-kum/mepsim/internal/sim"
)

// FrameWriter is a sim.Observer that saves every Every-th iteration as
// progress_NNNN.png in Dir and optionally feeds a GIF recorder.
type FrameWriter struct {
	Renderer *Renderer
	Dir      string
	Every    int
	// PNG disables the per-frame files when false; the recorder still runs.
	PNG      bool
	Recorder *GIFRecorder

	written int
	err     error
}

// NewFrameWriter creates dir if needed.
func NewFrameWriter(r *Renderer, dir string, every int) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create the image directory: %w", err)
	}
	if every < 1 {
		every = 1
	}
	return &FrameWriter{Renderer: r, Dir: dir, Every: every, PNG: true}, nil
}

func FrameName(index int) string {
	return fmt.Sprintf("progress_%04d.png", index)
}

func (w *FrameWriter) OnIteration(it sim.Iteration) {
	if w.err != nil || it.Index%w.Every != 0 {
		return
	}

	label := fmt.Sprintf("iter %d  E=%.6f", it.Index, it.Energy)
	img := w.Renderer.Paint(it.Chain.Points(), it.Field, label)

	if w.PNG {
		if err := SavePNG(filepath.Join(w.Dir, FrameName(it.Index)), img); err != nil {
			w.err = err
			return
		}
		w.written++
	}
	if w.Recorder != nil {
		w.Recorder.Add(img)
	}
}

// Written is the number of PNG files saved so far.
func (w *FrameWriter) Written() int { return w.written }

// Err returns the first write error; frames after it are skipped.
func (w *FrameWriter) Err() error { return w.err }

// GIFRecorder collects downscaled frames for an animated GIF.
type GIFRecorder struct {
	MaxSide int
	Delay   int
	frames  []*image.Paletted
}

func NewGIFRecorder(maxSide int) *GIFRecorder {
	if maxSide <= 0 {
		maxSide = 400
	}
	return &GIFRecorder{MaxSide: maxSide, Delay: 8}
}

func (g *GIFRecorder) Add(img image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > g.MaxSide || h > g.MaxSide {
		if w >= h {
			w, h = g.MaxSide, h*g.MaxSide/w
		} else {
			w, h = w*g.MaxSide/h, g.MaxSide
		}
	}
	w, h = max(w, 1), max(h, 1)

	frame := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	xdraw.ApproxBiLinear.Scale(frame, frame.Bounds(), img, b, xdraw.Src, nil)
	g.frames = append(g.frames, frame)
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) Save(path string) error {
	if len(g.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, g.Delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
