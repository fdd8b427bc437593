package pattern

import (
	"math"

	"shibori/internal/core"
)

const (
	arashiAngle       = 45.0
	arashiAngleJitter = 20.0
	arashiStripes     = 10.0
)

func buildArashi(tp TiePoint, geo Geometry, rng *core.RNG) Shader {
	theta := degrees(arashiAngle + rng.Jitter(tp.Irregularity*arashiAngleJitter))
	sin, cos := math.Sincos(theta)
	spacing := max(geo.Radius/arashiStripes, 1)
	return func(dx, dy float64) float64 {
		v := (-dx*sin + dy*cos) / spacing
		proximity := 1 - 2*math.Abs(v-math.Round(v))
		return tp.Intensity * geo.Falloff(math.Hypot(dx, dy)) * proximity
	}
}

func init() {
	Register(Algorithm{Kind: Arashi, NoiseScale: 0.2, Build: buildArashi})
}
