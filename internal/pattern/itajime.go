package pattern

import (
	"math"

	"shibori/internal/core"
)

// buildItajime folds the angle into its sector. The crease term is 1 along the
// middle of each panel and falls to 0 on the fold lines between panels.
func buildItajime(tp TiePoint, geo Geometry, _ *core.RNG) Shader {
	n := float64(tp.Symmetry)
	sector := 2 * math.Pi / n
	return func(dx, dy float64) float64 {
		a := math.Atan2(dy, dx) + sector/2
		local := math.Mod(a, sector)
		if local < 0 {
			local += sector
		}
		local -= sector / 2
		crease := math.Abs(math.Cos(local * n / 2))
		return tp.Intensity * geo.Falloff(math.Hypot(dx, dy)) * crease
	}
}

func init() {
	Register(Algorithm{Kind: Itajime, NoiseScale: 0.15, Build: buildItajime})
}
