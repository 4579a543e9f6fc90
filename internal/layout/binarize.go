package layout

import "image"

// otsuThreshold picks the global threshold that maximizes between-class
// variance over the grayscale histogram.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int64
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := gray.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			hist[gray.Pix[i+x]]++
		}
	}

	total := int64(bounds.Dx()) * int64(bounds.Dy())
	var sumTotal float64
	for v, n := range hist {
		sumTotal += float64(v) * float64(n)
	}

	var sumBg, wBg float64
	varMax := -1.0
	threshold := 127
	for t := 0; t < 256; t++ {
		wBg += float64(hist[t])
		if wBg == 0 {
			continue
		}
		wFg := float64(total) - wBg
		if wFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])
		meanBg := sumBg / wBg
		meanFg := (sumTotal - sumBg) / wFg
		varBetween := wBg * wFg * (meanBg - meanFg) * (meanBg - meanFg)
		if varBetween > varMax {
			varMax = varBetween
			threshold = t
		}
	}
	return uint8(threshold)
}

// textMask marks pixels at or below the threshold as foreground. The Otsu
// threshold is the last bin of the dark class, and documents are dark ink
// on a light ground, so text is the dark side of the split.
func textMask(gray *image.Gray, threshold uint8) []bool {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		i := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			if gray.Pix[i+x] <= threshold {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}
