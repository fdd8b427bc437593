package layers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"shibori/internal/surface"
)

var (
	// ErrNothingToExport is returned when the stack has no layers.
	ErrNothingToExport = errors.New("layers: nothing to export")
	// ErrUnsupportedFormat is returned for raster formats other than png and jpeg.
	ErrUnsupportedFormat = errors.New("layers: unsupported format")
)

// DefaultJPEGQuality is used when quality is outside 1..100.
const DefaultJPEGQuality = 92

// Paper is the background JPEG exports are flattened onto.
var Paper = color.NRGBA{R: 250, G: 249, B: 246, A: 255}

// Format is a normalized raster format name.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts png, jpeg and jpg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MimeType returns the media type of f.
func (f Format) MimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w in format f. JPEG output is flattened onto Paper.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	var enc imgio.Encoder
	switch f {
	case PNG:
		enc = imgio.PNGEncoder()
	case JPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		enc = imgio.JPEGEncoder(quality)
		img = flattenOnto(img, Paper)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err := enc(w, img); err != nil {
		return fmt.Errorf("layers: encode %s: %w", f, err)
	}
	return nil
}

// EncodeSurface reads src and encodes it in the named format.
func EncodeSurface(src surface.Surface, format string, quality int) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	img, err := snapshot(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportComposite flattens the committed layers, ignoring scratch, and
// encodes the result.
func (s *Stack) ExportComposite(format string, quality int) ([]byte, error) {
	img, f, err := s.exportImage(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDataURL returns ExportComposite as a base64 data URL.
func (s *Stack) ExportDataURL(format string, quality int) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	raw, err := s.ExportComposite(string(f), quality)
	if err != nil {
		return "", err
	}
	return "data:" + f.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// ExportThumbnail encodes a PNG of the committed layers scaled so the longer
// side is at most maxSide pixels.
func (s *Stack) ExportThumbnail(maxSide int) ([]byte, error) {
	img, _, err := s.exportImage(string(PNG))
	if err != nil {
		return nil, err
	}
	w, h := thumbSize(s.size.W, s.size.H, maxSide)
	if w != s.size.W || h != s.size.H {
		img = transform.Resize(img, w, h, transform.Linear)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, PNG, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Stack) exportImage(format string) (image.Image, Format, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	if len(s.layers) == 0 {
		return nil, "", ErrNothingToExport
	}
	s.flatten(color.NRGBA{}, false)
	return s.work.Image(), f, nil
}

func thumbSize(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		return maxSide, max(1, h*maxSide/w)
	}
	return max(1, w*maxSide/h), maxSide
}

// snapshot copies src into a standalone premultiplied image.
func snapshot(src surface.Surface) (*image.RGBA, error) {
	if !surface.Available(src) {
		return nil, surface.ErrSurfaceUnavailable
	}
	s := src.Size()
	img := image.NewRGBA(image.Rect(0, 0, s.W, s.H))
	if err := src.ReadPixels(img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

func flattenOnto(img image.Image, bg color.NRGBA) image.Image {
	b := img.Bounds()
	c := surface.NewCanvas(b.Dx(), b.Dy())
	c.Clear(bg)
	src := surface.FromImage(img)
	_ = c.Draw(src, 1)
	return c.Image()
}
