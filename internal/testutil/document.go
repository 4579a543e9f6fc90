package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PageSize is the pixel size of a rendered synthetic page.
type PageSize struct {
	Width  int
	Height int
}

// ScanSize matches the scan dimensions the bundled templates and the
// extraction tests assume.
var ScanSize = PageSize{Width: 1600, Height: 1100}

// TextLine places one line of text at a template-relative position, so a
// rendered line lands inside the region declared at the same coordinates.
type TextLine struct {
	Text string
	X    float64
	Y    float64
}

// DocumentConfig describes a synthetic administrative document page.
type DocumentConfig struct {
	Size       PageSize
	Background color.Color
	Foreground color.Color
	Lines      []TextLine
}

// DefaultDocumentConfig returns a blank white page at scan size.
func DefaultDocumentConfig() DocumentConfig {
	return DocumentConfig{
		Size:       ScanSize,
		Background: color.White,
		Foreground: color.Black,
	}
}

// RenderDocument draws each line at its relative position with the basic
// 7x13 face. Runes outside the face's coverage (all Arabic) render as
// replacement blocks, which is enough for geometry and cropping paths;
// recognition tests script the backend rather than reading pixels.
func RenderDocument(cfg DocumentConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Size.Width, cfg.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cfg.Foreground},
		Face: face,
	}
	for _, line := range cfg.Lines {
		x := int(line.X * float64(cfg.Size.Width))
		y := int(line.Y*float64(cfg.Size.Height)) + ascent
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line.Text)
	}
	return img
}

// Receipt renders a synthetic association deposit receipt whose lines sit
// inside the bundled assoc_receipt template's regions.
func Receipt() *image.RGBA {
	cfg := DefaultDocumentConfig()
	cfg.Lines = []TextLine{
		{Text: "PREFECTURE DE CASABLANCA - RECEPISSE DE DEPOT", X: 0.06, Y: 0.05},
		{Text: "وصل إيداع ملف جمعية", X: 0.30, Y: 0.13},
		{Text: "Commune de Casablanca", X: 0.06, Y: 0.23},
		{Text: "جماعة الدار البيضاء", X: 0.51, Y: 0.23},
		{Text: "Association Al Amal", X: 0.06, Y: 0.35},
		{Text: "جمعية الأمل", X: 0.35, Y: 0.43},
		{Text: "N 2024/1234", X: 0.06, Y: 0.56},
		{Text: "12/08/2025", X: 0.56, Y: 0.56},
	}
	return RenderDocument(cfg)
}

// PNGBytes encodes an image as PNG, for multipart upload bodies.
func PNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// SavePNG writes an image to path, creating parent directories.
func SavePNG(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)))

	file, err := os.Create(path) //nolint:gosec // G304: test-owned path
	require.NoError(t, err)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img))
}
