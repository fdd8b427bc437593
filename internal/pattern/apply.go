package pattern

import (
	"fmt"
	"math"

	"shibori/internal/core"
)

// Apply paints tp into g. Contributions are additive: cell values never
// decrease and are clamped to 1. A nil rng uses an unseeded source, so only
// seeded calls are reproducible.
func Apply(g *core.Grid, tp TiePoint, rng *core.RNG) error {
	return ApplyBounded(g, tp, DefaultBounds(), rng)
}

// ApplyBounded is Apply with explicit symmetry and irregularity limits.
func ApplyBounded(g *core.Grid, tp TiePoint, b Bounds, rng *core.RNG) error {
	if g == nil {
		return nil
	}
	algo, ok := Lookup(tp.Pattern)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, tp.Pattern)
	}
	if rng == nil {
		rng = core.NewUnseededRNG()
	}
	tp = tp.Normalize(b)
	geo := Resolve(tp, g.W, g.H)
	if geo.Radius <= 0 || tp.Intensity == 0 {
		return nil
	}
	shade := algo.Build(tp, geo, rng)
	noise := tp.Irregularity * algo.NoiseScale

	x0 := max(0, int(math.Floor(geo.CX-geo.Radius)))
	x1 := min(g.W-1, int(math.Ceil(geo.CX+geo.Radius)))
	y0 := max(0, int(math.Floor(geo.CY-geo.Radius)))
	y1 := min(g.H-1, int(math.Ceil(geo.CY+geo.Radius)))

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - geo.CY
		row := y * g.W
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - geo.CX
			if !geo.InAnnulus(math.Hypot(dx, dy)) {
				continue
			}
			v := shade(dx, dy)
			if v <= 0 {
				continue
			}
			v += rng.Jitter(noise)
			if v > 0 {
				g.AddIndex(row+x, v)
			}
		}
	}
	core.Logger().Debug("pattern applied", "pattern", tp.Pattern, "x", tp.X, "y", tp.Y,
		"radius", geo.Radius, "symmetry", tp.Symmetry)
	return nil
}

// Field returns the noise-free contribution of tp at absolute grid
// coordinates, for inspecting a pattern without painting it.
func Field(tp TiePoint, w, h int, rng *core.RNG) (func(x, y float64) float64, error) {
	algo, ok := Lookup(tp.Pattern)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, tp.Pattern)
	}
	if rng == nil {
		rng = core.NewUnseededRNG()
	}
	tp = tp.Normalize(DefaultBounds())
	geo := Resolve(tp, w, h)
	shade := algo.Build(tp, geo, rng)
	return func(x, y float64) float64 {
		dx, dy := x-geo.CX, y-geo.CY
		if !geo.InAnnulus(math.Hypot(dx, dy)) {
			return 0
		}
		return max(0, shade(dx, dy))
	}, nil
}

// angularDistance returns the absolute difference between two angles in [0, π].
func angularDistance(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func degrees(d float64) float64 { return d * math.Pi / 180 }
