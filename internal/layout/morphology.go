package layout

// dilate expands foreground with a kw x kh rectangular kernel. The kernel
// extents are independent so a wide flat kernel can merge characters into
// line blobs without bridging adjacent lines.
func dilate(mask []bool, w, h, kw, kh int) []bool {
	if kw <= 1 && kh <= 1 {
		return mask
	}
	halfW, halfH := kw/2, kh/2
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if neighborhoodSet(mask, w, h, x, y, halfW, halfH) {
				out[y*w+x] = true
			}
		}
	}
	return out
}

func neighborhoodSet(mask []bool, w, h, x, y, halfW, halfH int) bool {
	for ky := -halfH; ky <= halfH; ky++ {
		ny := y + ky
		if ny < 0 || ny >= h {
			continue
		}
		row := ny * w
		for kx := -halfW; kx <= halfW; kx++ {
			nx := x + kx
			if nx >= 0 && nx < w && mask[row+nx] {
				return true
			}
		}
	}
	return false
}
