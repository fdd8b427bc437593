// Package palette maps dye concentration to color and parses color specs.
package palette

import (
	"errors"
	"image/color"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Stop is one breakpoint on a concentration ramp.
type Stop struct {
	R, G, B uint8
	At      float64
}

// MidIndigo is the fallback dye color used when a color spec cannot be read.
var MidIndigo = color.NRGBA{R: 72, G: 101, B: 166, A: 255}

// ErrEmptyPalette is returned when a ramp has no usable stops.
var ErrEmptyPalette = errors.New("palette: no stops")

// DefaultIndigo returns the standard six-step indigo ramp, from undyed cloth
// to a saturated vat color.
func DefaultIndigo() []Stop {
	return []Stop{
		{R: 250, G: 249, B: 246, At: 0},
		{R: 214, G: 224, B: 240, At: 0.15},
		{R: 140, G: 167, B: 210, At: 0.35},
		{R: 72, G: 101, B: 166, At: 0.55},
		{R: 35, G: 55, B: 110, At: 0.75},
		{R: 16, G: 24, B: 58, At: 1},
	}
}

// Mapper converts concentration in [0, 1] to an opaque color.
type Mapper struct {
	stops  []Stop
	colors []colorful.Color
}

// NewMapper builds a mapper from stops. Stops are sorted by breakpoint; stops
// with a NaN breakpoint are dropped.
func NewMapper(stops []Stop) (*Mapper, error) {
	clean := make([]Stop, 0, len(stops))
	for _, s := range stops {
		if math.IsNaN(s.At) {
			continue
		}
		clean = append(clean, s)
	}
	if len(clean) == 0 {
		return nil, ErrEmptyPalette
	}
	slices.SortStableFunc(clean, func(a, b Stop) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	m := &Mapper{stops: clean, colors: make([]colorful.Color, len(clean))}
	for i, s := range clean {
		m.colors[i] = colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
	}
	return m, nil
}

// Stops returns a copy of the sorted ramp.
func (m *Mapper) Stops() []Stop { return slices.Clone(m.stops) }

// Map interpolates linearly between the two stops bracketing c. Values
// outside the ramp take the nearest end color.
func (m *Mapper) Map(c float64) color.NRGBA {
	last := len(m.stops) - 1
	if math.IsNaN(c) || c <= m.stops[0].At {
		return toNRGBA(m.colors[0])
	}
	if c >= m.stops[last].At {
		return toNRGBA(m.colors[last])
	}
	for i := 0; i < last; i++ {
		lo, hi := m.stops[i].At, m.stops[i+1].At
		if c < lo || c >= hi {
			continue
		}
		t := (c - lo) / (hi - lo)
		return toNRGBA(m.colors[i].BlendRgb(m.colors[i+1], t))
	}
	return toNRGBA(m.colors[last])
}

// LUT precomputes n evenly spaced samples over [0, 1].
func (m *Mapper) LUT(n int) []color.NRGBA {
	if n < 2 {
		n = 2
	}
	lut := make([]color.NRGBA, n)
	for i := range lut {
		lut[i] = m.Map(float64(i) / float64(n-1))
	}
	return lut
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Luminance returns the Rec. 709 relative luminance of c in [0, 255].
func Luminance(c color.NRGBA) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}
