package pattern

import (
	"math"

	"shibori/internal/core"
)

// kumoLineJitter is the largest angular perturbation of a radial line at
// full irregularity.
const kumoLineJitter = 10.0

func buildKumo(tp TiePoint, geo Geometry, rng *core.RNG) Shader {
	n := tp.Symmetry
	sector := 2 * math.Pi / float64(n)
	half := sector / 2
	lines := make([]float64, n)
	for i := range lines {
		lines[i] = float64(i)*sector + rng.Jitter(degrees(tp.Irregularity*kumoLineJitter))
	}
	return func(dx, dy float64) float64 {
		a := math.Atan2(dy, dx)
		nearest := math.Pi
		for _, l := range lines {
			if d := angularDistance(a, l); d < nearest {
				nearest = d
			}
		}
		proximity := core.Clamp01(1 - nearest/half)
		return tp.Intensity * geo.Falloff(math.Hypot(dx, dy)) * (0.5 + 0.5*proximity)
	}
}

func init() {
	Register(Algorithm{Kind: Kumo, NoiseScale: 0.15, Build: buildKumo})
}
