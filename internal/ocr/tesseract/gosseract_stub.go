//go:build !cgo

package tesseract

import (
	"fmt"

	"github.com/atlasocr/wasl/internal/ocr"
)

// NewLib reports the library backend unavailable: the gosseract binding
// links libtesseract and needs a cgo build.
func NewLib(Options) (ocr.Backend, error) {
	return nil, fmt.Errorf("tesseract library backend needs a cgo build: %w", ocr.ErrUnavailable)
}
