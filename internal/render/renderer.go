// Package render turns concentration grids into dyed-fabric pixels.
package render

import (
	"errors"
	"image/color"

	"shibori/internal/core"
	"shibori/internal/palette"
	"shibori/internal/surface"
)

// DefaultLUTSize is the number of precomputed ramp entries.
const DefaultLUTSize = 1024

// ErrNilGrid is returned when Render is called without a grid.
var ErrNilGrid = errors.New("render: nil grid")

// Options controls the fabric texture applied on top of the ramp.
type Options struct {
	WeaveAmplitude float64
	GrainAmplitude float64
	TextureSeed    int64
	// Plain disables weave and grain entirely.
	Plain bool
}

// DefaultOptions returns the standard cloth texture settings.
func DefaultOptions() Options {
	return Options{
		WeaveAmplitude: palette.DefaultWeaveAmplitude,
		GrainAmplitude: palette.DefaultGrainAmplitude,
		TextureSeed:    1,
	}
}

// FrameRenderer maps a grid through a color ramp into a surface. It caches
// its lookup table, texture and pixel buffer between frames.
type FrameRenderer struct {
	mapper   *palette.Mapper
	lut      []color.NRGBA
	textures palette.TextureCache
	buf      []byte
}

// NewFrameRenderer precomputes a lookup table of lutSize entries from m.
func NewFrameRenderer(m *palette.Mapper, lutSize int) *FrameRenderer {
	if lutSize <= 0 {
		lutSize = DefaultLUTSize
	}
	return &FrameRenderer{mapper: m, lut: m.LUT(lutSize)}
}

// Mapper returns the ramp the renderer was built with.
func (r *FrameRenderer) Mapper() *palette.Mapper { return r.mapper }

// Render writes one frame of g into dst with a single WritePixels call. On
// error dst keeps its previous contents.
func (r *FrameRenderer) Render(g *core.Grid, dst surface.Surface, opts Options) error {
	if !surface.Available(dst) {
		return surface.ErrSurfaceUnavailable
	}
	if g == nil {
		return ErrNilGrid
	}
	size := dst.Size()
	if n := surface.BufferLen(size); len(r.buf) != n {
		r.buf = make([]byte, n)
	}
	f := frame{
		cells: g.Cells(),
		gw:    g.W, gh: g.H,
		dw: size.W, dh: size.H,
		lut:   r.lut,
		weave: opts.WeaveAmplitude,
		grain: opts.GrainAmplitude,
	}
	if !opts.Plain && (opts.WeaveAmplitude != 0 || opts.GrainAmplitude != 0) {
		f.tex = r.textures.Get(size.W, size.H, opts.TextureSeed)
	}
	fillConcentrationRGBA(r.buf, f)
	if err := dst.WritePixels(r.buf); err != nil {
		return err
	}
	core.Logger().Debug("frame rendered", "w", size.W, "h", size.H, "grid_w", g.W, "grid_h", g.H)
	return nil
}
