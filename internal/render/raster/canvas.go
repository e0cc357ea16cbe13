// Package raster renders the particle field into an in-memory RGBA image,
// for PNG export and the HTTP preview.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Canvas is a field.Surface backed by an *image.RGBA. It is not safe for
// concurrent use; callers serialise access (view.View.WithSurface).
type Canvas struct {
	img  *image.RGBA
	z    vector.Rasterizer
	mask []uint8 // reused coverage buffer for FillCircle
}

// New returns a transparent w x h canvas.
func New(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize replaces the backing image. Content is discarded.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

func (c *Canvas) Fill(col color.NRGBA) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, xdraw.Over)
}

// FillCircle rasterises an anti-aliased disc and composites it over the
// canvas. Discs hanging off an edge are clipped.
func (c *Canvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if r <= 0 || col.A == 0 {
		return
	}
	x0 := int(math.Floor(x - r))
	y0 := int(math.Floor(y - r))
	box := image.Rect(x0, y0, int(math.Ceil(x+r))+1, int(math.Ceil(y+r))+1)
	if !box.Overlaps(c.img.Bounds()) {
		return
	}
	w, h := box.Dx(), box.Dy()

	cx, cy := float32(x-float64(x0)), float32(y-float64(y0))
	rf, k := float32(r), float32(r*kappa)
	c.z.Reset(w, h)
	c.z.MoveTo(cx+rf, cy)
	c.z.CubeTo(cx+rf, cy+k, cx+k, cy+rf, cx, cy+rf)
	c.z.CubeTo(cx-k, cy+rf, cx-rf, cy+k, cx-rf, cy)
	c.z.CubeTo(cx-rf, cy-k, cx-k, cy-rf, cx, cy-rf)
	c.z.CubeTo(cx+k, cy-rf, cx+rf, cy-k, cx+rf, cy)
	c.z.ClosePath()

	// The rasteriser writes the mask as one contiguous w x h block, so the
	// stride must equal w.
	n := w * h
	if cap(c.mask) < n {
		c.mask = make([]uint8, n)
	} else {
		c.mask = c.mask[:n]
		clear(c.mask)
	}
	m := &image.Alpha{Pix: c.mask, Stride: w, Rect: image.Rect(0, 0, w, h)}
	c.z.Draw(m, m.Bounds(), image.Opaque, image.Point{})

	xdraw.DrawMask(c.img, box, image.NewUniform(col), image.Point{}, m, image.Point{}, xdraw.Over)
}

// Image returns the backing image. It is invalidated by Resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// Thumbnail returns a copy scaled to fit within maxW x maxH, preserving the
// aspect ratio. A canvas that already fits is copied unscaled.
func (c *Canvas) Thumbnail(maxW, maxH int) *image.RGBA {
	w, h := c.Size()
	if w == 0 || h == 0 || (w <= maxW && h <= maxH) || maxW <= 0 || maxH <= 0 {
		return c.Snapshot()
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))
	out := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), c.img, c.img.Bounds(), xdraw.Src, nil)
	return out
}

// EncodePNG writes the canvas as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return EncodePNG(w, c.img)
}

// EncodePNG writes img with fast compression; frames are written often.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
