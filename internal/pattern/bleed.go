package pattern

import "shibori/internal/core"

const (
	bleedCenter = 0.4
	bleedEdge   = 0.1
	bleedCorner = 0.05
)

var bleedTaps = [8]struct {
	dx, dy int
	w      float64
}{
	{-1, -1, bleedCorner}, {0, -1, bleedEdge}, {1, -1, bleedCorner},
	{-1, 0, bleedEdge}, {1, 0, bleedEdge},
	{-1, 1, bleedCorner}, {0, 1, bleedEdge}, {1, 1, bleedCorner},
}

// Bleed runs n passes of a 3x3 weighted average to mimic capillary dye
// spread. Taps that fall outside the grid reuse the center value, which keeps
// the total mass constant up to rounding.
func Bleed(g *core.Grid, n int) {
	if g == nil {
		return
	}
	for ; n > 0; n-- {
		src := g.Cells()
		dst := g.Scratch()
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				i := y*g.W + x
				c := src[i]
				sum := bleedCenter * c
				for _, t := range bleedTaps {
					nx, ny := x+t.dx, y+t.dy
					if nx < 0 || ny < 0 || nx >= g.W || ny >= g.H {
						sum += t.w * c
						continue
					}
					sum += t.w * src[ny*g.W+nx]
				}
				dst[i] = core.Clamp01(sum)
			}
		}
		g.Swap()
	}
}
