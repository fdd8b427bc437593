package core

import "math"

// Size describes the dimensions of a grid or drawing surface.
type Size struct {
	W int
	H int
}

// Area returns the number of cells covered by the size.
func (s Size) Area() int {
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W * s.H
}

// Contains reports whether the point (x, y) lies inside the size.
func (s Size) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(s.W) && y < float64(s.H)
}

// Point is a position in surface-local pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// ClampRange limits v to [lo, hi]. NaN maps to lo.
func ClampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
