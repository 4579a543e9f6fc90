package layout

import (
	"fmt"
	"image"
	"math"

	"github.com/atlasocr/wasl/internal/utils"
)

// ProjectionClassifier implements Classifier with the stroke-projection
// heuristic: binarize, dilate strokes into line blobs, then compare each
// blob's column-sum variance against its row-sum variance over the
// grayscale patch.
type ProjectionClassifier struct {
	cfg Config
}

// NewProjectionClassifier builds a classifier, filling zero config fields
// from DefaultConfig.
func NewProjectionClassifier(cfg Config) *ProjectionClassifier {
	def := DefaultConfig()
	if cfg.KernelWidth <= 0 {
		cfg.KernelWidth = def.KernelWidth
	}
	if cfg.KernelHeight <= 0 {
		cfg.KernelHeight = def.KernelHeight
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.MinArea <= 0 {
		cfg.MinArea = def.MinArea
	}
	return &ProjectionClassifier{cfg: cfg}
}

// Classify implements Classifier. When the heuristic marks no blob as
// Arabic the whole page is registered as one Arabic region, so a miss
// degrades to a full-page Arabic pass instead of silently dropping the
// script.
func (c *ProjectionClassifier) Classify(img image.Image) (Layout, error) {
	if img == nil {
		return Layout{}, utils.ErrNilImage
	}
	gray := utils.ToGray(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return Layout{}, fmt.Errorf("layout: empty image")
	}

	mask := textMask(gray, otsuThreshold(gray))
	for i := 0; i < c.cfg.Iterations; i++ {
		mask = dilate(mask, w, h, c.cfg.KernelWidth, c.cfg.KernelHeight)
	}

	var out Layout
	for _, comp := range findComponents(mask, w, h) {
		if comp.area < c.cfg.MinArea {
			continue
		}
		if arabicLikely(gray, comp.box) {
			out.Arabic = append(out.Arabic, comp.box)
		} else {
			out.French = append(out.French, comp.box)
		}
	}
	if len(out.Arabic) == 0 {
		out.Arabic = []utils.Box{utils.NewBox(0, 0, w, h)}
	}
	return out, nil
}

// arabicLikely reports whether the patch's vertical projection varies more
// than its horizontal one. Cursive connected strokes swing the column sums
// harder than spaced Latin glyphs swing the row sums.
func arabicLikely(gray *image.Gray, box utils.Box) bool {
	colSums := make([]float64, box.W)
	rowSums := make([]float64, box.H)
	bounds := gray.Bounds()
	for y := 0; y < box.H; y++ {
		i := gray.PixOffset(bounds.Min.X+box.X, bounds.Min.Y+box.Y+y)
		for x := 0; x < box.W; x++ {
			v := float64(gray.Pix[i+x])
			colSums[x] += v
			rowSums[y] += v
		}
	}
	return stddev(colSums) > stddev(rowSums)
}

// stddev is the population standard deviation.
func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
