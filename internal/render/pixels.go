package render

import (
	"image/color"

	"shibori/internal/palette"
)

// frame describes one fill pass from grid cells to destination pixels.
type frame struct {
	cells  []float64
	gw, gh int
	dw, dh int
	lut    []color.NRGBA
	tex    *palette.Texture
	weave  float64
	grain  float64
}

// fillConcentrationRGBA converts concentration cells into opaque RGBA pixels
// in buf. When the grid and destination differ in size each pixel samples the
// nearest cell. An empty lookup table clears the buffer to transparent black.
func fillConcentrationRGBA(buf []byte, f frame) {
	if len(f.lut) == 0 {
		clear(buf)
		return
	}
	last := len(f.lut) - 1
	same := f.gw == f.dw && f.gh == f.dh
	for y := 0; y < f.dh; y++ {
		gy := y
		if !same {
			gy = y * f.gh / f.dh
		}
		for x := 0; x < f.dw; x++ {
			gx := x
			if !same {
				gx = x * f.gw / f.dw
			}
			c := f.cells[gy*f.gw+gx]
			idx := int(c*float64(last) + 0.5)
			if idx < 0 {
				idx = 0
			} else if idx > last {
				idx = last
			}
			col := f.lut[idx]
			i := y*f.dw + x
			if f.tex != nil {
				col = palette.Shade(col, f.tex.Factor(i, f.weave, f.grain))
			}
			base := i * 4
			buf[base+0] = col.R
			buf[base+1] = col.G
			buf[base+2] = col.B
			buf[base+3] = 255
		}
	}
}
