package surface

import (
	"math"
	"slices"
)

// Unblend writes into c the least opaque layer that, drawn with Normal
// blending over backdrop, reproduces src to within one step per channel.
// Pixels equal to the backdrop become transparent. Both inputs are expected
// to be opaque; pixels where either is not are copied from src unchanged.
// src may be c itself.
func (c *Canvas) Unblend(src, backdrop Surface) error {
	sp, err := c.source(src)
	if err != nil {
		return err
	}
	if _, ok := src.(*Canvas); !ok {
		sp = slices.Clone(sp)
	}
	bp, err := c.source(backdrop)
	if err != nil {
		return err
	}
	dst := c.img.Pix
	for i := 0; i < len(dst); i += 4 {
		s, b, d := sp[i:i+4], bp[i:i+4], dst[i:i+4]
		if s[3] != 255 || b[3] != 255 {
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3]
			continue
		}
		cover := max(coverage(s[0], b[0]), coverage(s[1], b[1]), coverage(s[2], b[2]))
		if cover == 0 {
			d[0], d[1], d[2], d[3] = 0, 0, 0, 0
			continue
		}
		a := byte(min(math.Ceil(cover*255-1e-9), 255))
		keep := float64(255-a) / 255
		for ch := 0; ch < 3; ch++ {
			v := math.Round(float64(s[ch]) - float64(b[ch])*keep)
			d[ch] = byte(min(max(v, 0), float64(a)))
		}
		d[3] = a
	}
	return nil
}

// coverage is the smallest alpha that moves backdrop channel b to s.
func coverage(s, b byte) float64 {
	switch {
	case s < b:
		return float64(b-s) / float64(b)
	case s > b:
		return float64(s-b) / float64(255-b)
	}
	return 0
}
