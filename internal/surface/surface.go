// Package surface defines the minimal raster drawing contract used by the
// renderer, the compositor and the interaction loop, together with a
// software implementation backed by image.RGBA.
//
// Pixel buffers exchanged through WritePixels and ReadPixels are row-major,
// four bytes per pixel, premultiplied RGBA.
package surface

import (
	"errors"
	"image"
	"image/color"

	"shibori/internal/core"
)

// BlendMode selects how drawing operations combine with existing pixels.
type BlendMode uint8

const (
	// Normal is premultiplied source-over.
	Normal BlendMode = iota
	// Multiply darkens the destination by the source color.
	Multiply
)

func (m BlendMode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Multiply:
		return "multiply"
	default:
		return "unknown"
	}
}

var (
	// ErrSurfaceUnavailable is returned when a surface is nil or disposed.
	ErrSurfaceUnavailable = errors.New("surface: unavailable")
	// ErrSizeMismatch is returned when two surfaces must share dimensions.
	ErrSizeMismatch = errors.New("surface: size mismatch")
	// ErrBufferSize is returned when a pixel buffer has the wrong length.
	ErrBufferSize = errors.New("surface: pixel buffer size")
)

// Surface is a 2D raster drawing target.
//
// Clear, FillRect and FillRadial silently ignore a disposed surface and
// clip to its bounds. Operations that move whole buffers report failure.
type Surface interface {
	Size() core.Size
	// Clear replaces every pixel with c regardless of the blend mode.
	Clear(c color.Color)
	FillRect(r image.Rectangle, c color.Color)
	FillRadial(g RadialGradient)
	SetBlendMode(m BlendMode)
	BlendMode() BlendMode
	// Blit replaces the contents with a same-sized source.
	Blit(src Surface) error
	// Draw composites a same-sized source using the current blend mode with
	// the source alpha scaled by opacity.
	Draw(src Surface, opacity float64) error
	WritePixels(pix []byte) error
	ReadPixels(dst []byte) error
}

// BufferLen returns the byte length of a pixel buffer for s.
func BufferLen(s core.Size) int {
	return s.W * s.H * 4
}

// Available reports whether s can be drawn to.
func Available(s Surface) bool {
	if s == nil {
		return false
	}
	if d, ok := s.(interface{ Disposed() bool }); ok && d.Disposed() {
		return false
	}
	return true
}
