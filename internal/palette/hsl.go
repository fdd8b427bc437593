package palette

import (
	"image/color"
	"math"

	"github.com/crazy3lf/colorconv"

	"shibori/internal/core"
)

// HSL is a hue/saturation/lightness triple. H is in degrees, S and L in [0, 1].
type HSL struct {
	H, S, L float64
}

// DefaultDye is the vat indigo used for interactive dye drops.
var DefaultDye = HSL{H: 224, S: 0.55, L: 0.32}

// NRGBA converts the triple to an opaque color. Hue wraps around; saturation
// or lightness outside [0, 1] is reported as an error.
func (c HSL) NRGBA() (color.NRGBA, error) {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	r, g, b, err := colorconv.HSLToRGB(h, c.S, c.L)
	if err != nil {
		return MidIndigo, err
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// OrDefault converts the triple, falling back to MidIndigo on bad input so a
// single malformed color cannot abort a frame.
func (c HSL) OrDefault() color.NRGBA {
	rgb, err := c.NRGBA()
	if err != nil {
		core.Logger().Warn("invalid dye color, using fallback", "h", c.H, "s", c.S, "l", c.L, "err", err)
		return MidIndigo
	}
	return rgb
}
