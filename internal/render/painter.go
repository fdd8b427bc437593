//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"shibori/internal/surface"
)

// SurfacePainter uploads a surface into an ebiten image and draws it scaled.
type SurfacePainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewSurfacePainter allocates a painter for a w×h surface.
func NewSurfacePainter(w, h int) *SurfacePainter {
	return &SurfacePainter{w: w, h: h, img: ebiten.NewImage(w, h), buf: make([]byte, 4*w*h)}
}

// Blit copies src into the painter image and draws it onto dst.
func (sp *SurfacePainter) Blit(dst *ebiten.Image, src surface.Surface, scale int) error {
	if !surface.Available(src) {
		return surface.ErrSurfaceUnavailable
	}
	s := src.Size()
	if s.W != sp.w || s.H != sp.h {
		sp.Resize(s.W, s.H)
	}
	if err := src.ReadPixels(sp.buf); err != nil {
		return err
	}
	sp.img.WritePixels(sp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(sp.img, op)
	return nil
}

// Resize reallocates the backing image.
func (sp *SurfacePainter) Resize(w, h int) {
	if sp.img != nil {
		sp.img.Deallocate()
	}
	sp.w, sp.h = w, h
	sp.img = ebiten.NewImage(w, h)
	sp.buf = make([]byte, 4*w*h)
}

// Size returns the dimensions of the underlying image.
func (sp *SurfacePainter) Size() (int, int) { return sp.w, sp.h }
