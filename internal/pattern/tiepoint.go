// Package pattern paints shibori resist-dye patterns into a concentration grid.
package pattern

import (
	"errors"
	"math"

	"shibori/internal/core"
)

// Kind names a pattern family.
type Kind string

const (
	// Kumo is the spider resist: dye gathers along radial lines.
	Kumo Kind = "kumo"
	// Itajime is the folded board clamp: repeated geometric sectors.
	Itajime Kind = "itajime"
	// Arashi is the pole-wrap storm: diagonal stripes.
	Arashi Kind = "arashi"
	// Kanoko is the fawn dot: scattered small resist rings.
	Kanoko Kind = "kanoko"
)

// ResistRatio is the share of the pattern radius that stays undyed.
const ResistRatio = 0.15

// ErrUnknownPattern is returned when a tie point names no registered algorithm.
var ErrUnknownPattern = errors.New("pattern: unknown pattern type")

// TiePoint describes one resist-dye application. X and Y are percentages of
// the grid size so a tie point means the same thing at any resolution.
type TiePoint struct {
	X, Y         float64
	Pattern      Kind
	Size         float64 // 0-100, drives the resist core and diffusion radius
	Intensity    float64 // 0-1, peak concentration contribution
	Symmetry     int     // radial repeats
	Irregularity float64 // 0-1, stochastic perturbation
}

// Bounds limits symmetry and irregularity to what the host allows.
type Bounds struct {
	SymmetryMin     int
	SymmetryMax     int
	IrregularityMax float64
}

// DefaultBounds returns the standard limits.
func DefaultBounds() Bounds {
	return Bounds{SymmetryMin: 2, SymmetryMax: 24, IrregularityMax: 1}
}

// Normalize clamps every field into its valid range. NaN values collapse to
// the low end of their range, except the position which falls back to center.
func (tp TiePoint) Normalize(b Bounds) TiePoint {
	if b.SymmetryMin < 1 {
		b.SymmetryMin = 1
	}
	if b.SymmetryMax < b.SymmetryMin {
		b.SymmetryMax = b.SymmetryMin
	}
	if math.IsNaN(b.IrregularityMax) || b.IrregularityMax < 0 || b.IrregularityMax > 1 {
		b.IrregularityMax = 1
	}
	if math.IsNaN(tp.X) {
		tp.X = 50
	}
	if math.IsNaN(tp.Y) {
		tp.Y = 50
	}
	tp.X = core.ClampRange(tp.X, 0, 100)
	tp.Y = core.ClampRange(tp.Y, 0, 100)
	tp.Size = core.ClampRange(tp.Size, 0, 100)
	tp.Intensity = core.Clamp01(tp.Intensity)
	tp.Irregularity = core.ClampRange(tp.Irregularity, 0, b.IrregularityMax)
	if tp.Symmetry < b.SymmetryMin {
		tp.Symmetry = b.SymmetryMin
	}
	if tp.Symmetry > b.SymmetryMax {
		tp.Symmetry = b.SymmetryMax
	}
	return tp
}

// Geometry is a tie point resolved against a concrete grid size.
type Geometry struct {
	CX, CY float64
	Radius float64
	Resist float64
}

// Resolve converts percent coordinates into pixel geometry for a w*h grid.
func Resolve(tp TiePoint, w, h int) Geometry {
	side := float64(min(w, h))
	radius := tp.Size / 100 * side / 2
	return Geometry{
		CX:     tp.X / 100 * float64(w),
		CY:     tp.Y / 100 * float64(h),
		Radius: radius,
		Resist: ResistRatio * radius,
	}
}

// Falloff decays linearly from 1 at the resist boundary to 0 at the radius.
func (g Geometry) Falloff(d float64) float64 {
	if d < g.Resist || d > g.Radius {
		return 0
	}
	span := g.Radius - g.Resist
	if span <= 0 {
		return 0
	}
	return (g.Radius - d) / span
}

// InAnnulus reports whether distance d lies between the resist core and the radius.
func (g Geometry) InAnnulus(d float64) bool {
	return d >= g.Resist && d <= g.Radius && g.Radius > 0
}
