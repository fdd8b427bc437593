package render

import (
	"errors"
	"image/color"
	"testing"

	"shibori/internal/core"
	"shibori/internal/palette"
	"shibori/internal/surface"
)

func newRenderer(t *testing.T) *FrameRenderer {
	t.Helper()
	m, err := palette.NewMapper(palette.DefaultIndigo())
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	return NewFrameRenderer(m, 0)
}

func TestRenderPlainMatchesRamp(t *testing.T) {
	r := newRenderer(t)
	g := core.NewGrid(4, 2)
	g.Set(1, 0, 1)
	g.Set(2, 1, 0.55)
	dst := surface.NewCanvas(4, 2)
	if err := r.Render(g, dst, Options{Plain: true}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{250, 249, 246, 255}) {
		t.Fatalf("undyed pixel = %v", got)
	}
	if got := dst.RGBAAt(1, 0); got != (color.RGBA{16, 24, 58, 255}) {
		t.Fatalf("saturated pixel = %v", got)
	}
	mid := dst.RGBAAt(2, 1)
	want := r.Mapper().Map(0.55)
	if d := int(mid.B) - int(want.B); d < -2 || d > 2 {
		t.Fatalf("mid pixel = %v, want about %v", mid, want)
	}
}

func TestRenderNearestSampling(t *testing.T) {
	r := newRenderer(t)
	g := core.NewGrid(2, 2)
	g.Set(1, 1, 1)
	dst := surface.NewCanvas(4, 4)
	if err := r.Render(g, dst, Options{Plain: true}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	dark := color.RGBA{16, 24, 58, 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := x >= 2 && y >= 2
			if (dst.RGBAAt(x, y) == dark) != want {
				t.Fatalf("pixel (%d,%d) = %v", x, y, dst.RGBAAt(x, y))
			}
		}
	}
}

func TestRenderTextureStaysNearRamp(t *testing.T) {
	r := newRenderer(t)
	g := core.NewGrid(32, 32)
	dst := surface.NewCanvas(32, 32)
	if err := r.Render(g, dst, DefaultOptions()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	varied := false
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := dst.RGBAAt(x, y)
			if c.A != 255 || c.B < 210 {
				t.Fatalf("textured pixel (%d,%d) = %v", x, y, c)
			}
			if c.B != 246 {
				varied = true
			}
		}
	}
	if !varied {
		t.Fatalf("texture had no visible effect")
	}
}

func TestRenderUnavailableKeepsTarget(t *testing.T) {
	r := newRenderer(t)
	g := core.NewGrid(2, 2)
	if err := r.Render(g, nil, DefaultOptions()); !errors.Is(err, surface.ErrSurfaceUnavailable) {
		t.Fatalf("nil target: %v", err)
	}
	dst := surface.NewCanvas(2, 2)
	dst.Clear(color.Black)
	dst.Dispose()
	if err := r.Render(g, dst, DefaultOptions()); !errors.Is(err, surface.ErrSurfaceUnavailable) {
		t.Fatalf("disposed target: %v", err)
	}
	if dst.RGBAAt(0, 0) != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("disposed target was written")
	}
	live := surface.NewCanvas(2, 2)
	if err := r.Render(nil, live, DefaultOptions()); !errors.Is(err, ErrNilGrid) {
		t.Fatalf("nil grid: %v", err)
	}
}

// countingSurface records how many times pixels are uploaded.
type countingSurface struct {
	*surface.Canvas
	writes int
}

func (c *countingSurface) WritePixels(pix []byte) error {
	c.writes++
	return c.Canvas.WritePixels(pix)
}

func TestRenderSingleWrite(t *testing.T) {
	r := newRenderer(t)
	dst := &countingSurface{Canvas: surface.NewCanvas(8, 8)}
	if err := r.Render(core.NewGrid(8, 8), dst, DefaultOptions()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if dst.writes != 1 {
		t.Fatalf("WritePixels called %d times", dst.writes)
	}
}
