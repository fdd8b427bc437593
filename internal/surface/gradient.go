package surface

import (
	"image/color"
	"math"
	"slices"
)

// ColorStop is a straight-alpha color at an offset along a gradient.
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// RadialGradient describes a disc centered on (CX, CY). Offset 0 is the
// center and offset 1 is Radius; pixels outside the disc are not touched.
type RadialGradient struct {
	CX, CY float64
	Radius float64
	Stops  []ColorStop
}

// Fade returns a two-stop gradient from c at the given opacity in the center
// to fully transparent at the rim.
func Fade(cx, cy, radius float64, c color.NRGBA, opacity float64) RadialGradient {
	inner := c
	inner.A = mulDiv255(c.A, opacityByte(opacity))
	outer := c
	outer.A = 0
	return RadialGradient{
		CX: cx, CY: cy, Radius: radius,
		Stops: []ColorStop{{Offset: 0, Color: inner}, {Offset: 1, Color: outer}},
	}
}

func (g RadialGradient) sorted() []ColorStop {
	stops := slices.Clone(g.Stops)
	slices.SortStableFunc(stops, func(a, b ColorStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	return stops
}

// colorAt returns the straight-alpha color at t, padding past either end.
func colorAt(stops []ColorStop, t float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		hi := stops[i]
		if t > hi.Offset {
			continue
		}
		lo := stops[i-1]
		span := hi.Offset - lo.Offset
		if span <= 0 {
			return hi.Color
		}
		f := (t - lo.Offset) / span
		lerp := func(a, b uint8) uint8 {
			return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
		}
		return color.NRGBA{
			R: lerp(lo.Color.R, hi.Color.R),
			G: lerp(lo.Color.G, hi.Color.G),
			B: lerp(lo.Color.B, hi.Color.B),
			A: lerp(lo.Color.A, hi.Color.A),
		}
	}
	return last.Color
}
