package surface

// mulDiv255 computes floor(a*b/255) without a division.
func mulDiv255(a, b byte) byte {
	t := uint16(a)*uint16(b) + 1
	return byte((t + (t >> 8)) >> 8)
}

func addSat(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// sourceOver: S + D*(1-Sa).
func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return addSat(sr, mulDiv255(dr, inv)),
		addSat(sg, mulDiv255(dg, inv)),
		addSat(sb, mulDiv255(db, inv)),
		addSat(sa, mulDiv255(da, inv))
}

// multiply: S*(1-Da) + D*(1-Sa) + S*D, alpha Sa + Da*(1-Sa).
func multiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if da == 0 {
		return sr, sg, sb, sa
	}
	invSa, invDa := 255-sa, 255-da
	ch := func(s, d byte) byte {
		return addSat(addSat(mulDiv255(s, invDa), mulDiv255(d, invSa)), mulDiv255(s, d))
	}
	return ch(sr, dr), ch(sg, dg), ch(sb, db), addSat(sa, mulDiv255(da, invSa))
}

// blendInto composites one premultiplied source pixel into d[0:4].
func blendInto(mode BlendMode, d []byte, sr, sg, sb, sa byte) {
	if sa == 0 {
		return
	}
	var r, g, b, a byte
	switch mode {
	case Multiply:
		r, g, b, a = multiply(sr, sg, sb, sa, d[0], d[1], d[2], d[3])
	default:
		if sa == 255 {
			d[0], d[1], d[2], d[3] = sr, sg, sb, sa
			return
		}
		r, g, b, a = sourceOver(sr, sg, sb, sa, d[0], d[1], d[2], d[3])
	}
	d[0], d[1], d[2], d[3] = r, g, b, a
}

// scalePixel multiplies a premultiplied pixel by an 8-bit coverage value.
func scalePixel(r, g, b, a, k byte) (byte, byte, byte, byte) {
	if k == 255 {
		return r, g, b, a
	}
	return mulDiv255(r, k), mulDiv255(g, k), mulDiv255(b, k), mulDiv255(a, k)
}

// premultiply converts a straight-alpha color to premultiplied bytes.
func premultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	if a == 255 {
		return r, g, b, a
	}
	return mulDiv255(r, a), mulDiv255(g, a), mulDiv255(b, a), a
}

// opacityByte maps [0, 1] to [0, 255]; NaN and negatives become 0.
func opacityByte(o float64) byte {
	if !(o > 0) {
		return 0
	}
	if o >= 1 {
		return 255
	}
	return byte(o*255 + 0.5)
}
