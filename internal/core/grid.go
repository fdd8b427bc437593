package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid stores a 2D field of dye concentration values in row-major order.
// Every cell is kept in [0, 1]; accessors outside the grid are no-ops.
type Grid struct {
	W, H int
	data []float64
	tmp  []float64
}

// NewGrid allocates a zeroed grid with the given dimensions.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{W: w, H: h, data: make([]float64, w*h)}
}

// Size reports the grid dimensions.
func (g *Grid) Size() Size { return Size{W: g.W, H: g.H} }

// Cells exposes the backing slice for read-heavy loops. Callers that write
// through it must keep values in [0, 1].
func (g *Grid) Cells() []float64 { return g.data }

// Index returns the linear index for (x, y) and whether it lies in the grid.
func (g *Grid) Index(x, y float64) (int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	fx := math.Floor(x)
	fy := math.Floor(y)
	if fx < 0 || fy < 0 || fx >= float64(g.W) || fy >= float64(g.H) {
		return 0, false
	}
	return int(fy)*g.W + int(fx), true
}

// At returns the value at (x, y), or 0 outside the grid.
func (g *Grid) At(x, y float64) float64 {
	idx, ok := g.Index(x, y)
	if !ok {
		return 0
	}
	return g.data[idx]
}

// Set stores v at (x, y) after clamping it to [0, 1].
func (g *Grid) Set(x, y, v float64) {
	idx, ok := g.Index(x, y)
	if !ok {
		return
	}
	g.data[idx] = Clamp01(v)
}

// Add increases the value at (x, y) by dv and clamps the result.
func (g *Grid) Add(x, y, dv float64) {
	idx, ok := g.Index(x, y)
	if !ok {
		return
	}
	g.AddIndex(idx, dv)
}

// AddIndex is Add for a precomputed linear index. Out-of-range indexes are ignored.
func (g *Grid) AddIndex(idx int, dv float64) {
	if idx < 0 || idx >= len(g.data) || math.IsNaN(dv) {
		return
	}
	g.data[idx] = Clamp01(g.data[idx] + dv)
}

// Clear resets every cell to zero.
func (g *Grid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// Mass returns the sum of all cell values.
func (g *Grid) Mass() float64 { return floats.Sum(g.data) }

// Max returns the largest cell value.
func (g *Grid) Max() float64 { return floats.Max(g.data) }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, data: make([]float64, len(g.data))}
	copy(c.data, g.data)
	return c
}

// CopyFrom replaces the contents with src when the dimensions match.
func (g *Grid) CopyFrom(src *Grid) bool {
	if src == nil || src.W != g.W || src.H != g.H {
		return false
	}
	copy(g.data, src.data)
	return true
}

// Scratch returns a reusable buffer the size of the grid for double-buffered
// passes. Its contents are unspecified.
func (g *Grid) Scratch() []float64 {
	if len(g.tmp) != len(g.data) {
		g.tmp = make([]float64, len(g.data))
	}
	return g.tmp
}

// Swap exchanges the live cells with the scratch buffer.
func (g *Grid) Swap() {
	if len(g.tmp) != len(g.data) {
		return
	}
	g.data, g.tmp = g.tmp, g.data
}
