package layout

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/utils"
)

func whitePage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// verticalStripes draws 1px black columns every other x, mimicking the
// dense vertical stroke texture of cursive lines.
func verticalStripes(img *image.Gray, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x += 2 {
		for y := y0; y <= y1; y++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

// horizontalStripes draws 1px black rows every other y.
func horizontalStripes(img *image.Gray, x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y += 2 {
		for x := x0; x <= x1; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

func TestOtsuThresholdBimodal(t *testing.T) {
	img := whitePage(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 5; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	mask := textMask(img, otsuThreshold(img))
	assert.True(t, mask[0], "dark side is foreground")
	assert.False(t, mask[9], "light side is background")
}

func TestTextMaskAllWhite(t *testing.T) {
	img := whitePage(8, 4)
	mask := textMask(img, otsuThreshold(img))
	for _, v := range mask {
		assert.False(t, v)
	}
}

func TestDilateSinglePixel(t *testing.T) {
	w, h := 21, 9
	mask := make([]bool, w*h)
	mask[4*w+10] = true

	out := dilate(mask, w, h, 15, 3)

	count := 0
	for _, v := range out {
		if v {
			count++
		}
	}
	assert.Equal(t, 15*3, count)
	assert.True(t, out[3*w+3], "kernel corner covered")
	assert.False(t, out[4*w+2], "outside horizontal reach")
	assert.False(t, out[2*w+10], "outside vertical reach")
}

func TestFindComponents(t *testing.T) {
	w, h := 6, 3
	mask := make([]bool, w*h)
	set := func(x, y int) { mask[y*w+x] = true }
	set(0, 0)
	set(1, 0)
	set(1, 1)
	set(4, 0)
	set(5, 1) // touches (4,0) only diagonally

	comps := findComponents(mask, w, h)
	require.Len(t, comps, 3, "diagonal contact does not connect")

	assert.Equal(t, 3, comps[0].area)
	assert.Equal(t, utils.NewBox(0, 0, 2, 2), comps[0].box)
	assert.Equal(t, 1, comps[1].area)
	assert.Equal(t, utils.NewBox(4, 0, 1, 1), comps[1].box)
	assert.Equal(t, utils.NewBox(5, 1, 1, 1), comps[2].box)
}

func TestStddev(t *testing.T) {
	assert.InDelta(t, 2.0, stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Zero(t, stddev(nil))
	assert.Zero(t, stddev([]float64{3, 3, 3}))
}

func TestClassifySplitsScripts(t *testing.T) {
	img := whitePage(300, 160)
	verticalStripes(img, 20, 20, 119, 59)
	horizontalStripes(img, 20, 100, 119, 139)

	c := NewProjectionClassifier(Config{Iterations: 1})
	out, err := c.Classify(img)
	require.NoError(t, err)

	require.Len(t, out.Arabic, 1)
	require.Len(t, out.French, 1)
	assert.Less(t, out.Arabic[0].Y, 70, "vertical stroke block sits on top")
	assert.Greater(t, out.French[0].Y, 90, "horizontal stroke block sits below")
}

func TestClassifyBlankPageFallsBackToArabic(t *testing.T) {
	c := NewProjectionClassifier(DefaultConfig())
	out, err := c.Classify(whitePage(100, 80))
	require.NoError(t, err)

	assert.Equal(t, []utils.Box{utils.NewBox(0, 0, 100, 80)}, out.Arabic)
	assert.Empty(t, out.French)
}

func TestClassifyNilImage(t *testing.T) {
	c := NewProjectionClassifier(DefaultConfig())
	_, err := c.Classify(nil)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15, cfg.KernelWidth)
	assert.Equal(t, 3, cfg.KernelHeight)
	assert.Equal(t, 3, cfg.Iterations)
	assert.Equal(t, 500, cfg.MinArea)
}
