package pattern

import (
	"slices"

	"shibori/internal/core"
)

// Shader returns the dye contribution at offset (dx, dy) from the tie point
// center, before noise. Offsets are in grid cells.
type Shader func(dx, dy float64) float64

// Algorithm describes one pattern family. Build is called once per
// application; draws that apply to the whole pattern (line jitter, stripe
// angle, dot layout) happen there so the shader itself is pure.
type Algorithm struct {
	Kind       Kind
	NoiseScale float64
	Build      func(tp TiePoint, geo Geometry, rng *core.RNG) Shader
}

var algorithms = map[Kind]Algorithm{}

// Register adds an algorithm under its kind.
func Register(a Algorithm) {
	if a.Kind == "" || a.Build == nil {
		return
	}
	algorithms[a.Kind] = a
}

// Lookup returns the algorithm registered for kind.
func Lookup(kind Kind) (Algorithm, bool) {
	a, ok := algorithms[kind]
	return a, ok
}

// Kinds lists registered pattern kinds in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(algorithms))
	for k := range algorithms {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Known reports whether kind has a registered algorithm.
func Known(kind Kind) bool {
	_, ok := algorithms[kind]
	return ok
}
