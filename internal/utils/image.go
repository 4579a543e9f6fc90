package utils

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// ImageError describes a failed image operation.
type ImageError struct {
	Op  string
	Err error
}

func (e *ImageError) Error() string {
	return "image " + e.Op + ": " + e.Err.Error()
}

func (e *ImageError) Unwrap() error { return e.Err }

// CropBox returns the pixels of img covered by box. The box is intersected
// with the image bounds; an empty intersection yields a 0x0 image.
func CropBox(img image.Image, box Box) image.Image {
	rect := box.ToRect().Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// Scale resizes img by the given factor using Catmull-Rom (cubic)
// resampling. Factors of 1.0 or below 0 return the image unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if img == nil || factor == 1.0 || factor <= 0 {
		return img
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.CatmullRom)
}

// ToGray converts an image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// ToRGBA returns img as a mutable RGBA copy.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// DrawBox draws the outline of box into dst with the given color and
// thickness. Used for debug overlays of located regions.
func DrawBox(dst *image.RGBA, box Box, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect := box.ToRect().Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}

// ErrNilImage is returned by operations that require a decoded image.
var ErrNilImage = errors.New("nil image")
