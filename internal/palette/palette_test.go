package palette

import (
	"errors"
	"image/color"
	"math"
	"slices"
	"testing"
)

func defaultMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper(DefaultIndigo())
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	return m
}

func TestMapEndpointsAndClamp(t *testing.T) {
	m := defaultMapper(t)
	white := color.NRGBA{R: 250, G: 249, B: 246, A: 255}
	dark := color.NRGBA{R: 16, G: 24, B: 58, A: 255}
	cases := []struct {
		c    float64
		want color.NRGBA
	}{
		{0, white},
		{-3, white},
		{math.NaN(), white},
		{1, dark},
		{7, dark},
		{0.55, MidIndigo},
	}
	for _, tc := range cases {
		if got := m.Map(tc.c); got != tc.want {
			t.Fatalf("Map(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestMapLuminanceMonotonic(t *testing.T) {
	m := defaultMapper(t)
	prev := math.Inf(1)
	for i := 0; i <= 200; i++ {
		l := Luminance(m.Map(float64(i) / 200))
		if l > prev+1e-9 {
			t.Fatalf("luminance rose at step %d: %v > %v", i, l, prev)
		}
		prev = l
	}
}

func TestMapInterpolatesBetweenStops(t *testing.T) {
	m, err := NewMapper([]Stop{{R: 0, G: 0, B: 0, At: 1}, {R: 200, G: 100, B: 50, At: 0}})
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	got := m.Map(0.5)
	want := color.NRGBA{R: 100, G: 50, B: 25, A: 255}
	if got != want {
		t.Fatalf("Map(0.5) = %v, want %v", got, want)
	}
}

func TestNewMapperRejectsEmpty(t *testing.T) {
	if _, err := NewMapper(nil); !errors.Is(err, ErrEmptyPalette) {
		t.Fatalf("expected ErrEmptyPalette, got %v", err)
	}
	if _, err := NewMapper([]Stop{{At: math.NaN()}}); !errors.Is(err, ErrEmptyPalette) {
		t.Fatalf("expected ErrEmptyPalette for NaN stops, got %v", err)
	}
}

func TestLUTMatchesMap(t *testing.T) {
	m := defaultMapper(t)
	lut := m.LUT(1024)
	if len(lut) != 1024 {
		t.Fatalf("LUT length = %d", len(lut))
	}
	if lut[0] != m.Map(0) || lut[1023] != m.Map(1) {
		t.Fatalf("LUT endpoints differ from Map")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#4865a6", color.NRGBA{72, 101, 166, 255}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 255}},
		{"  hsl(0, 100%, 50%) ", color.NRGBA{255, 0, 0, 255}},
		{"hsl(360, 100%, 50%)", color.NRGBA{255, 0, 0, 255}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "indigo", "#12", "rgb(1,2)", "rgb(300,0,0)", "hsl(10, 150%, 20%)", "cmyk(1,2,3)", "rgb(1,2,3"} {
		got, err := ParseColor(in)
		if !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("ParseColor(%q) err = %v, want ErrInvalidColor", in, err)
		}
		if got != MidIndigo {
			t.Fatalf("ParseColor(%q) = %v, want fallback", in, got)
		}
	}
	if ColorOrDefault("nope") != MidIndigo {
		t.Fatalf("ColorOrDefault did not fall back")
	}
}

func TestParseHSL(t *testing.T) {
	c, err := ParseHSL("hsl(224, 55%, 32%)")
	if err != nil {
		t.Fatalf("ParseHSL: %v", err)
	}
	if c != DefaultDye {
		t.Fatalf("ParseHSL = %+v, want %+v", c, DefaultDye)
	}
	red, err := ParseHSL("#ff0000")
	if err != nil {
		t.Fatalf("ParseHSL hex: %v", err)
	}
	if math.Abs(red.H) > 1e-6 || math.Abs(red.S-1) > 1e-6 || math.Abs(red.L-0.5) > 1e-6 {
		t.Fatalf("ParseHSL(#ff0000) = %+v", red)
	}
}

func TestHSLFallback(t *testing.T) {
	if got := (HSL{H: -120, S: 1, L: 0.5}).OrDefault(); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("negative hue should wrap, got %v", got)
	}
	if got := (HSL{H: 10, S: 2, L: 0.5}).OrDefault(); got != MidIndigo {
		t.Fatalf("bad saturation should fall back, got %v", got)
	}
}

func TestParseStops(t *testing.T) {
	stops, err := ParseStops("#faf9f6@0; hsl(0, 100%, 50%)@0.5 ;rgb(16,24,58)@1")
	if err != nil {
		t.Fatalf("ParseStops: %v", err)
	}
	want := []Stop{{250, 249, 246, 0}, {255, 0, 0, 0.5}, {16, 24, 58, 1}}
	if !slices.Equal(stops, want) {
		t.Fatalf("ParseStops = %v, want %v", stops, want)
	}
	if _, err := ParseStops("#fff"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("missing breakpoint: %v", err)
	}
	if _, err := ParseStops(" ; "); !errors.Is(err, ErrEmptyPalette) {
		t.Fatalf("empty ramp: %v", err)
	}
}

func TestTextureNormalizedAndDeterministic(t *testing.T) {
	a := NewTexture(64, 48, 7)
	b := NewTexture(64, 48, 7)
	if !slices.Equal(a.Weave, b.Weave) || !slices.Equal(a.Grain, b.Grain) {
		t.Fatalf("texture not deterministic for equal seeds")
	}
	for i := range a.Weave {
		if a.Weave[i] < -1 || a.Weave[i] > 1 || a.Grain[i] < -1 || a.Grain[i] > 1 {
			t.Fatalf("texture value out of range at %d: %v %v", i, a.Weave[i], a.Grain[i])
		}
		f := a.Factor(i, DefaultWeaveAmplitude, DefaultGrainAmplitude)
		if f < 0.87 || f > 1.14 {
			t.Fatalf("factor %v outside expected band", f)
		}
	}
	if got := a.Factor(-1, 1, 1); got != 1 {
		t.Fatalf("out-of-range factor = %v", got)
	}
}

func TestTextureCacheReuses(t *testing.T) {
	var c TextureCache
	a := c.Get(8, 8, 1)
	if c.Get(8, 8, 1) != a {
		t.Fatalf("cache rebuilt for identical key")
	}
	if c.Get(9, 8, 1) == a {
		t.Fatalf("cache reused texture for a different size")
	}
}

func TestShadeSaturates(t *testing.T) {
	got := Shade(color.NRGBA{200, 100, 0, 255}, 1.5)
	if got != (color.NRGBA{255, 150, 0, 255}) {
		t.Fatalf("Shade = %v", got)
	}
}
