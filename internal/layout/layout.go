// Package layout discovers text-line regions on pages that carry no
// template and guesses each region's script, so auto-layout scans know
// which recognition pass to aim where. The guess is a projection heuristic,
// not a real script classifier: cursive Arabic lines produce higher
// column-projection variance than spaced Latin glyphs.
package layout

import (
	"image"

	"github.com/atlasocr/wasl/internal/utils"
)

// Layout is the per-script split of a page into candidate text regions.
// Boxes are in page pixel coordinates.
type Layout struct {
	Arabic []utils.Box
	French []utils.Box
}

// Classifier splits a page into per-script text regions.
type Classifier interface {
	Classify(img image.Image) (Layout, error)
}

// Config tunes the projection classifier.
type Config struct {
	// KernelWidth and KernelHeight shape the dilation that merges
	// character strokes into line blobs. Wide and short merges glyphs
	// along a line without bridging adjacent lines.
	KernelWidth  int
	KernelHeight int
	Iterations   int

	// MinArea drops blobs smaller than this many pixels before
	// classification, removing specks and punctuation debris.
	MinArea int
}

// DefaultConfig returns the tuning used for 150-300 DPI administrative
// scans.
func DefaultConfig() Config {
	return Config{
		KernelWidth:  15,
		KernelHeight: 3,
		Iterations:   3,
		MinArea:      500,
	}
}
