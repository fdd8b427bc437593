package palette

import (
	"image/color"
	"math"
	"sync"

	perlin "github.com/aquilax/go-perlin"

	"shibori/internal/core"
)

const (
	// DefaultWeaveAmplitude scales the weave term to roughly ±8% brightness.
	DefaultWeaveAmplitude = 0.08
	// DefaultGrainAmplitude scales the per-pixel grain to roughly ±5%.
	DefaultGrainAmplitude = 0.05

	threadPeriod  = 4.0
	twillPeriod   = 23.0
	mottleScale   = 48.0
	weaveJitter   = 0.1
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// Texture holds precomputed fabric modulation for one canvas size. Weave and
// Grain are row-major and normalized to [-1, 1].
type Texture struct {
	W, H  int
	Seed  int64
	Weave []float32
	Grain []float32
}

// NewTexture computes the weave and grain fields for a w×h canvas.
func NewTexture(w, h int, seed int64) *Texture {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	t := &Texture{W: w, H: h, Seed: seed, Weave: make([]float32, w*h), Grain: make([]float32, w*h)}
	noise := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)
	rng := core.NewRNG(seed)

	raw := make([]float64, w*h)
	peak := 0.0
	for y := 0; y < h; y++ {
		fy := float64(y)
		for x := 0; x < w; x++ {
			fx := float64(x)
			v := 0.35*math.Sin(2*math.Pi*fx/threadPeriod) +
				0.35*math.Sin(2*math.Pi*fy/threadPeriod) +
				0.2*math.Sin(2*math.Pi*(fx+fy)/twillPeriod) +
				0.3*noise.Noise2D(fx/mottleScale, fy/mottleScale) +
				rng.Jitter(weaveJitter)
			raw[y*w+x] = v
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
	}
	for i, v := range raw {
		if peak > 0 {
			v /= peak
		}
		t.Weave[i] = float32(v)
		t.Grain[i] = float32(rng.Range(-1, 1))
	}
	return t
}

// Factor returns the brightness multiplier at pixel index i.
func (t *Texture) Factor(i int, weaveAmp, grainAmp float64) float64 {
	if i < 0 || i >= len(t.Weave) {
		return 1
	}
	return (1 + weaveAmp*float64(t.Weave[i])) * (1 + grainAmp*float64(t.Grain[i]))
}

// Shade scales the color channels of c by f, saturating at 255.
func Shade(c color.NRGBA, f float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		s := float64(v)*f + 0.5
		switch {
		case s <= 0:
			return 0
		case s >= 255:
			return 255
		}
		return uint8(s)
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// TextureCache keeps the most recent texture and rebuilds it only when the
// requested size or seed changes.
type TextureCache struct {
	mu  sync.Mutex
	cur *Texture
}

// Get returns a texture for w×h and seed, reusing the cached one when it fits.
func (c *TextureCache) Get(w, h int, seed int64) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil && c.cur.W == w && c.cur.H == h && c.cur.Seed == seed {
		return c.cur
	}
	c.cur = NewTexture(w, h, seed)
	return c.cur
}
