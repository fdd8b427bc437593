package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"shibori/internal/core"
)

// Canvas is the software Surface. The zero value is not usable; call
// NewCanvas.
type Canvas struct {
	img      *image.RGBA
	mode     BlendMode
	disposed bool
	scratch  []byte
}

var _ Surface = (*Canvas)(nil)

// NewCanvas allocates a transparent w×h canvas. Non-positive sizes become 1.
func NewCanvas(w, h int) *Canvas {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// FromImage copies img into a new canvas.
func FromImage(img image.Image) *Canvas {
	b := img.Bounds()
	c := NewCanvas(b.Dx(), b.Dy())
	for y := 0; y < c.img.Rect.Dy(); y++ {
		for x := 0; x < c.img.Rect.Dx(); x++ {
			c.img.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return c
}

func (c *Canvas) Size() core.Size {
	return core.Size{W: c.img.Rect.Dx(), H: c.img.Rect.Dy()}
}

// Image exposes the backing premultiplied image. Callers must not retain it
// past Dispose.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Dispose marks the canvas unusable. Later buffer operations fail with
// ErrSurfaceUnavailable and fills become no-ops.
func (c *Canvas) Dispose() {
	c.disposed = true
	c.scratch = nil
}

func (c *Canvas) Disposed() bool { return c.disposed }

func (c *Canvas) SetBlendMode(m BlendMode) {
	if m != Multiply {
		m = Normal
	}
	c.mode = m
}

func (c *Canvas) BlendMode() BlendMode { return c.mode }

// RGBAAt returns the premultiplied pixel at (x, y), or zero when outside.
func (c *Canvas) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return color.RGBA{}
	}
	return c.img.RGBAAt(x, y)
}

func (c *Canvas) Clear(col color.Color) {
	if c.disposed {
		return
	}
	r, g, b, a := rgba8(col)
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
}

func (c *Canvas) FillRect(rect image.Rectangle, col color.Color) {
	if c.disposed {
		return
	}
	rect = rect.Canon().Intersect(c.img.Rect)
	if rect.Empty() {
		return
	}
	r, g, b, a := rgba8(col)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := c.img.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			blendInto(c.mode, c.img.Pix[off:off+4], r, g, b, a)
			off += 4
		}
	}
}

// FillRadial paints the gradient disc. Pixel centers are sampled at +0.5.
// A radius below one pixel paints the single pixel under the center with
// the innermost stop.
func (c *Canvas) FillRadial(grad RadialGradient) {
	if c.disposed || len(grad.Stops) == 0 {
		return
	}
	cx, cy, radius := grad.CX, grad.CY, grad.Radius
	if math.IsNaN(cx) || math.IsNaN(cy) || math.IsInf(cx, 0) || math.IsInf(cy, 0) {
		return
	}
	stops := grad.sorted()
	if !(radius >= 1) {
		px, py := int(math.Floor(cx)), int(math.Floor(cy))
		if !(image.Point{X: px, Y: py}).In(c.img.Rect) {
			return
		}
		s := stops[0].Color
		r, g, b, a := premultiply(s.R, s.G, s.B, s.A)
		off := c.img.PixOffset(px, py)
		blendInto(c.mode, c.img.Pix[off:off+4], r, g, b, a)
		return
	}
	box := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius))+1, int(math.Ceil(cy+radius))+1,
	).Intersect(c.img.Rect)
	r2 := radius * radius
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		off := c.img.PixOffset(box.Min.X, y)
		for x := box.Min.X; x < box.Max.X; x, off = x+1, off+4 {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			s := colorAt(stops, math.Sqrt(d2)/radius)
			if s.A == 0 {
				continue
			}
			r, g, b, a := premultiply(s.R, s.G, s.B, s.A)
			blendInto(c.mode, c.img.Pix[off:off+4], r, g, b, a)
		}
	}
}

func (c *Canvas) Blit(src Surface) error {
	pix, err := c.source(src)
	if err != nil {
		return err
	}
	copy(c.img.Pix, pix)
	return nil
}

func (c *Canvas) Draw(src Surface, opacity float64) error {
	pix, err := c.source(src)
	if err != nil {
		return err
	}
	k := opacityByte(opacity)
	if k == 0 {
		return nil
	}
	dst := c.img.Pix
	for i := 0; i < len(dst); i += 4 {
		r, g, b, a := scalePixel(pix[i], pix[i+1], pix[i+2], pix[i+3], k)
		blendInto(c.mode, dst[i:i+4], r, g, b, a)
	}
	return nil
}

func (c *Canvas) WritePixels(pix []byte) error {
	if c.disposed {
		return ErrSurfaceUnavailable
	}
	if len(pix) != len(c.img.Pix) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(pix), len(c.img.Pix))
	}
	copy(c.img.Pix, pix)
	return nil
}

func (c *Canvas) ReadPixels(dst []byte) error {
	if c.disposed {
		return ErrSurfaceUnavailable
	}
	if len(dst) != len(c.img.Pix) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(dst), len(c.img.Pix))
	}
	copy(dst, c.img.Pix)
	return nil
}

// Pixels returns a copy of the premultiplied buffer.
func (c *Canvas) Pixels() []byte {
	out := make([]byte, len(c.img.Pix))
	copy(out, c.img.Pix)
	return out
}

// source validates src and returns its pixels, reading through the
// interface when src is not a Canvas.
func (c *Canvas) source(src Surface) ([]byte, error) {
	if c.disposed || !Available(src) {
		return nil, ErrSurfaceUnavailable
	}
	if src.Size() != c.Size() {
		return nil, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, src.Size(), c.Size())
	}
	if sc, ok := src.(*Canvas); ok {
		return sc.img.Pix, nil
	}
	if len(c.scratch) != len(c.img.Pix) {
		c.scratch = make([]byte, len(c.img.Pix))
	}
	if err := src.ReadPixels(c.scratch); err != nil {
		return nil, err
	}
	return c.scratch, nil
}

func rgba8(col color.Color) (r, g, b, a byte) {
	if col == nil {
		return 0, 0, 0, 0
	}
	c := color.RGBAModel.Convert(col).(color.RGBA)
	return c.R, c.G, c.B, c.A
}
