package utils

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists the file extensions accepted for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadImage opens and decodes a scanned document image.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, &ImageError{Op: "load", Err: fmt.Errorf("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, &ImageError{Op: "load", Err: fmt.Errorf("unsupported format %q", filepath.Ext(path))}
	}
	f, err := os.Open(path) //nolint:gosec // G304: user-provided document path is expected
	if err != nil {
		return nil, &ImageError{Op: "load", Err: err}
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ImageError{Op: "decode", Err: err}
	}
	return img, nil
}

// SaveImage writes an image to path, with the format chosen by extension.
func SaveImage(img image.Image, path string) error {
	if img == nil {
		return &ImageError{Op: "save", Err: ErrNilImage}
	}
	if err := imaging.Save(img, path); err != nil {
		return &ImageError{Op: "save", Err: err}
	}
	return nil
}
