package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/lucasb-eyer/go-colorful"

	"shibori/internal/core"
)

// ErrInvalidColor is returned for color specs that cannot be read.
var ErrInvalidColor = errors.New("palette: invalid color")

type colorSpec struct {
	Hex  *string    `@Hex`
	Func *colorFunc `| @@`
}

type colorFunc struct {
	Name string     `@Ident "("`
	Args []colorArg `@@ ("," @@)* ")"`
}

type colorArg struct {
	Value   float64 `@Number`
	Percent bool    `@("%")?`
}

var colorParser = participle.MustBuild[colorSpec](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Hex", Pattern: `#[0-9a-fA-F]+`},
		{Name: "Ident", Pattern: `[a-zA-Z]+`},
		{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)`},
		{Name: "Punct", Pattern: `[(),%]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
)

// ParseColor reads "#rgb", "#rrggbb", "rgb(r, g, b)", "rgba(r, g, b, a)",
// "hsl(h, s%, l%)" or "hsla(h, s%, l%, a)". Alpha is accepted but ignored.
func ParseColor(s string) (color.NRGBA, error) {
	spec, err := parseSpec(s)
	if err != nil {
		return MidIndigo, err
	}
	if spec.Hex != nil {
		c, err := colorful.Hex(*spec.Hex)
		if err != nil {
			return MidIndigo, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		return toNRGBA(c), nil
	}
	switch name := strings.ToLower(spec.Func.Name); name {
	case "rgb", "rgba":
		if err := checkArity(s, spec.Func.Args, name == "rgba"); err != nil {
			return MidIndigo, err
		}
		ch := [3]uint8{}
		for i := 0; i < 3; i++ {
			a := spec.Func.Args[i]
			v := a.Value
			if a.Percent {
				v = v / 100 * 255
			}
			if v < 0 || v > 255 {
				return MidIndigo, fmt.Errorf("%w: %q: channel %d out of range", ErrInvalidColor, s, i)
			}
			ch[i] = uint8(v + 0.5)
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
	case "hsl", "hsla":
		hsl, err := hslFromFunc(s, spec.Func)
		if err != nil {
			return MidIndigo, err
		}
		c, err := hsl.NRGBA()
		if err != nil {
			return MidIndigo, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		return c, nil
	default:
		return MidIndigo, fmt.Errorf("%w: %q: unknown function %q", ErrInvalidColor, s, spec.Func.Name)
	}
}

// ParseHSL reads a color spec as an HSL triple. Non-HSL specs are converted.
func ParseHSL(s string) (HSL, error) {
	spec, err := parseSpec(s)
	if err != nil {
		return DefaultDye, err
	}
	if spec.Func != nil {
		if name := strings.ToLower(spec.Func.Name); name == "hsl" || name == "hsla" {
			return hslFromFunc(s, spec.Func)
		}
	}
	c, err := ParseColor(s)
	if err != nil {
		return DefaultDye, err
	}
	h, sat, l := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hsl()
	return HSL{H: h, S: sat, L: l}, nil
}

// ColorOrDefault parses s and falls back to MidIndigo when it is invalid.
func ColorOrDefault(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		core.Logger().Warn("invalid color spec, using fallback", "spec", s, "err", err)
		return MidIndigo
	}
	return c
}

func parseSpec(s string) (*colorSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	spec, err := colorParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	return spec, nil
}

func checkArity(s string, args []colorArg, alpha bool) error {
	want := 3
	if alpha {
		want = 4
	}
	if len(args) != want {
		return fmt.Errorf("%w: %q: expected %d arguments, got %d", ErrInvalidColor, s, want, len(args))
	}
	return nil
}

func hslFromFunc(s string, f *colorFunc) (HSL, error) {
	if err := checkArity(s, f.Args, strings.EqualFold(f.Name, "hsla")); err != nil {
		return DefaultDye, err
	}
	frac := func(a colorArg) float64 {
		if a.Percent || a.Value > 1 {
			return a.Value / 100
		}
		return a.Value
	}
	c := HSL{H: f.Args[0].Value, S: frac(f.Args[1]), L: frac(f.Args[2])}
	if c.S < 0 || c.S > 1 || c.L < 0 || c.L > 1 {
		return DefaultDye, fmt.Errorf("%w: %q: saturation or lightness out of range", ErrInvalidColor, s)
	}
	return c, nil
}

// ParseStops reads a ramp written as "color@breakpoint" entries separated by
// semicolons, e.g. "#faf9f6@0; hsl(224, 55%, 32%)@1".
func ParseStops(s string) ([]Stop, error) {
	var stops []Stop
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		at := strings.LastIndex(part, "@")
		if at < 0 {
			return nil, fmt.Errorf("%w: stop %q has no breakpoint", ErrInvalidColor, part)
		}
		c, err := ParseColor(part[:at])
		if err != nil {
			return nil, err
		}
		var bp float64
		if _, err := fmt.Sscanf(strings.TrimSpace(part[at+1:]), "%g", &bp); err != nil {
			return nil, fmt.Errorf("%w: stop %q: %v", ErrInvalidColor, part, err)
		}
		stops = append(stops, Stop{R: c.R, G: c.G, B: c.B, At: bp})
	}
	if len(stops) == 0 {
		return nil, ErrEmptyPalette
	}
	return stops, nil
}
