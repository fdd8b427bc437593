// Package studio wires the dye loop, pattern engine, renderer and layer
// stack into one editing session.
package studio

import (
	"strconv"
	"strings"

	"shibori/internal/pattern"
)

// DefaultPalette is the indigo ramp written in the stop grammar.
const DefaultPalette = "#faf9f6@0; #d6e0f0@0.15; #8ca7d2@0.35; #4865a6@0.55; #23376e@0.75; #10183a@1"

// Params holds the tunables exposed on the HUD.
type Params struct {
	BaseRadius    float64
	RadiusJitter  float64
	BaseOpacity   float64
	OpacityJitter float64
	HueJitter     float64
	DurationMS    int
	Fade          float64
	DyeColor      string

	Pattern         pattern.Kind
	Size            float64
	Intensity       float64
	Symmetry        int
	Irregularity    float64
	SymmetryMin     int
	SymmetryMax     int
	IrregularityMax float64
	BleedIterations int

	Palette        string
	WeaveAmplitude float64
	GrainAmplitude float64
	LUTSize        int
	TextureSeed    int64
	FPS            int
}

// Config controls the session canvas and its tunables.
type Config struct {
	Width  int
	Height int

	Seed int64

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  480,
		Height: 360,
		Seed:   1337,
		Params: Params{
			BaseRadius:      40,
			RadiusJitter:    20,
			BaseOpacity:     0.55,
			OpacityJitter:   0.2,
			HueJitter:       8,
			DurationMS:      900,
			Fade:            0.35,
			DyeColor:        "hsl(224, 55%, 32%)",
			Pattern:         pattern.Kumo,
			Size:            40,
			Intensity:       0.8,
			Symmetry:        8,
			Irregularity:    0.2,
			SymmetryMin:     2,
			SymmetryMax:     24,
			IrregularityMax: 1,
			BleedIterations: 1,
			Palette:         DefaultPalette,
			WeaveAmplitude:  0.08,
			GrainAmplitude:  0.05,
			LUTSize:         1024,
			TextureSeed:     1,
			FPS:             60,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Values that fail to parse or fall outside their range are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	p := &c.Params
	readInt(cfg, "w", 1, &c.Width)
	readInt(cfg, "h", 1, &c.Height)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}

	readFloat(cfg, "radius", 0, &p.BaseRadius)
	readFloat(cfg, "radius_jitter", 0, &p.RadiusJitter)
	readFloat(cfg, "opacity", 0, &p.BaseOpacity)
	readFloat(cfg, "opacity_jitter", 0, &p.OpacityJitter)
	readFloat(cfg, "hue_jitter", 0, &p.HueJitter)
	readInt(cfg, "duration_ms", 0, &p.DurationMS)
	readFloat(cfg, "fade", 0, &p.Fade)
	if p.Fade > 1 {
		p.Fade = 1
	}
	if v, ok := cfg["dye_color"]; ok && strings.TrimSpace(v) != "" {
		p.DyeColor = v
	}

	if v, ok := cfg["pattern"]; ok {
		if kind := pattern.Kind(strings.ToLower(strings.TrimSpace(v))); pattern.Known(kind) {
			p.Pattern = kind
		}
	}
	readFloat(cfg, "size", 0, &p.Size)
	readFloat(cfg, "intensity", 0, &p.Intensity)
	readInt(cfg, "symmetry", 1, &p.Symmetry)
	readFloat(cfg, "irregularity", 0, &p.Irregularity)
	readInt(cfg, "symmetry_min", 1, &p.SymmetryMin)
	readInt(cfg, "symmetry_max", 1, &p.SymmetryMax)
	readFloat(cfg, "irregularity_max", 0, &p.IrregularityMax)
	readInt(cfg, "bleed_iterations", 0, &p.BleedIterations)
	if p.SymmetryMax < p.SymmetryMin {
		p.SymmetryMax = p.SymmetryMin
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if p.Intensity > 1 {
		p.Intensity = 1
	}

	if v, ok := cfg["palette"]; ok && strings.TrimSpace(v) != "" {
		p.Palette = v
	}
	readFloat(cfg, "weave", 0, &p.WeaveAmplitude)
	readFloat(cfg, "grain", 0, &p.GrainAmplitude)
	readInt(cfg, "lut_size", 2, &p.LUTSize)
	if v, ok := cfg["texture_seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.TextureSeed = parsed
		}
	}
	readInt(cfg, "fps", 1, &p.FPS)
	return c
}

func readInt(cfg map[string]string, key string, min int, dst *int) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= min {
		*dst = parsed
	}
}

func readFloat(cfg map[string]string, key string, min float64, dst *float64) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && parsed >= min {
		*dst = parsed
	}
}
