package raster

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/view"
)

func TestFillCircle_PaintsCentreNotCorners(t *testing.T) {
	c := New(40, 40)
	c.FillCircle(20, 20, 8, color.NRGBA{R: 255, A: 255})

	centre := c.Image().RGBAAt(20, 20)
	assert.EqualValues(t, 255, centre.R)
	assert.EqualValues(t, 255, centre.A)
	assert.Zero(t, c.Image().RGBAAt(0, 0).A)
	assert.Zero(t, c.Image().RGBAAt(20, 5).A, "outside the radius")
}

func TestFillCircle_ClipsAtEdges(t *testing.T) {
	c := New(20, 20)
	require.NotPanics(t, func() {
		c.FillCircle(0, 0, 5, color.NRGBA{G: 255, A: 255})
		c.FillCircle(19.5, 19.5, 5, color.NRGBA{G: 255, A: 255})
		c.FillCircle(-50, -50, 5, color.NRGBA{G: 255, A: 255})
	})
	assert.InDelta(t, 255, int(c.Image().RGBAAt(0, 0).G), 1)
	assert.InDelta(t, 255, int(c.Image().RGBAAt(19, 19).G), 1)
}

func TestFillCircle_SubPixelIsFaint(t *testing.T) {
	c := New(10, 10)
	c.FillCircle(5, 5, 0.3, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	a := c.Image().RGBAAt(5, 5).A
	assert.Greater(t, a, uint8(0))
	assert.Less(t, a, uint8(255))
}

func TestFillCircle_ParticleSizedDiscLandsOnCentre(t *testing.T) {
	c := New(40, 40)
	c.FillCircle(20.5, 20.5, 1.5, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img := c.Image()

	assert.GreaterOrEqual(t, img.RGBAAt(20, 20).A, uint8(254), "centre pixel fully covered")
	for _, p := range [][2]int{{19, 20}, {21, 20}, {20, 19}, {20, 21}} {
		a := img.RGBAAt(p[0], p[1]).A
		assert.Greater(t, a, uint8(0), "neighbour %v partly covered", p)
		assert.Less(t, a, uint8(255), "neighbour %v only partly covered", p)
	}
	for _, p := range [][2]int{{17, 20}, {23, 20}, {20, 17}, {20, 23}, {0, 0}, {39, 39}} {
		assert.Zero(t, img.RGBAAt(p[0], p[1]).A, "pixel %v outside the disc", p)
	}
}

func TestFillCircle_RepeatedDiscsOfDifferentSizes(t *testing.T) {
	c := New(60, 30)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	// A large disc first grows the coverage buffer; the small ones reuse it.
	c.FillCircle(45, 15, 10, white)
	c.FillCircle(5.5, 5.5, 1, white)
	c.FillCircle(15.5, 25.5, 0.8, white)

	img := c.Image()
	assert.Greater(t, img.RGBAAt(5, 5).A, uint8(0))
	assert.Greater(t, img.RGBAAt(15, 25).A, uint8(0))
	assert.Zero(t, img.RGBAAt(5, 7).A)
	assert.Zero(t, img.RGBAAt(15, 23).A)
	assert.GreaterOrEqual(t, img.RGBAAt(45, 15).A, uint8(254))
}

func TestFill_CompositesTranslucentOver(t *testing.T) {
	c := New(4, 4)
	c.Fill(color.NRGBA{R: 255, A: 255})
	c.Fill(color.NRGBA{A: 26})
	px := c.Image().RGBAAt(1, 1)
	assert.EqualValues(t, 255, px.A)
	assert.InDelta(t, 229, int(px.R), 1, "10%% black over red")
}

func TestClearAndResize(t *testing.T) {
	c := New(8, 8)
	c.Fill(color.NRGBA{B: 255, A: 255})
	c.Clear()
	assert.Zero(t, c.Image().RGBAAt(3, 3).A)

	c.Resize(16, 4)
	w, h := c.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 4, h)
}

func TestThumbnail_KeepsAspect(t *testing.T) {
	c := New(640, 360)
	c.Fill(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	th := c.Thumbnail(160, 160)
	assert.Equal(t, 160, th.Bounds().Dx())
	assert.Equal(t, 90, th.Bounds().Dy())
	assert.InDelta(t, 20, int(th.RGBAAt(80, 45).G), 1)

	small := New(10, 10).Thumbnail(100, 100)
	assert.Equal(t, 10, small.Bounds().Dx())
}

func TestEncodePNG_Decodes(t *testing.T) {
	c := New(32, 16)
	c.FillCircle(16, 8, 4, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestHost_DrivesView(t *testing.T) {
	h := NewHost(200, 100, true)
	opts := field.DefaultDriftOptions()
	opts.Count = 100
	opts.Glow.Stationary = true
	opts.Glow.MouseRadius = 500
	v := view.Mount(h, view.Options{Variant: field.VariantDrift, Drift: opts, Seed: 3}, log.New(io.Discard))
	defer v.Stop()

	h.MovePointer(100, 50)
	require.True(t, v.Frame(time.Now()))
	assert.Equal(t, 100, v.Stats().Last.Glowing)

	h.SetViewport(50, 40)
	w, ht := h.Canvas().Size()
	assert.Equal(t, 50, w)
	assert.Equal(t, 40, ht)

	h.ToggleTheme()
	assert.False(t, h.Dark())

	require.NoError(t, v.Run(canceled(), nil))
	assert.Equal(t, view.Stopped, v.State())
}

func canceled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
