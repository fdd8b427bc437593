package pattern

import (
	"math"

	"shibori/internal/core"
)

const (
	kanokoBaseDots     = 10
	kanokoDotIntensity = 0.6
	kanokoDotRatio     = 0.14
	kanokoDotResist    = 0.3
)

type kanokoDot struct {
	x, y float64
}

func buildKanoko(tp TiePoint, geo Geometry, rng *core.RNG) Shader {
	count := kanokoBaseDots + 2*tp.Symmetry
	dots := make([]kanokoDot, count)
	step := 2 * math.Pi / float64(count)
	for i := range dots {
		a := float64(i)*step + rng.Jitter(tp.Irregularity*math.Pi)
		d := geo.Resist + rng.Float64()*(geo.Radius-geo.Resist)*0.9
		dots[i] = kanokoDot{x: d * math.Cos(a), y: d * math.Sin(a)}
	}
	dotR := max(1.5, kanokoDotRatio*geo.Radius)
	dotCore := kanokoDotResist * dotR
	peak := kanokoDotIntensity * tp.Intensity
	return func(dx, dy float64) float64 {
		var v float64
		for _, dot := range dots {
			d := math.Hypot(dx-dot.x, dy-dot.y)
			if d < dotCore || d > dotR {
				continue
			}
			v += peak * (dotR - d) / (dotR - dotCore)
		}
		return v
	}
}

func init() {
	Register(Algorithm{Kind: Kanoko, NoiseScale: 0.15, Build: buildKanoko})
}
