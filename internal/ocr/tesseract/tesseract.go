// Package tesseract provides the Tesseract-backed recognition backends: a
// subprocess adapter around the tesseract binary and, when built with cgo,
// an in-process adapter over the linked library via gosseract.
//
// Tesseract and the language data for "fra" and "ara" must be installed on
// the host (tesseract-ocr, tesseract-ocr-fra, tesseract-ocr-ara on Debian
// derivatives).
package tesseract

import (
	"fmt"
	"time"

	"github.com/atlasocr/wasl/internal/ocr"
)

// Backend kinds accepted by New.
const (
	KindAuto = "auto"
	KindCLI  = "cli"
	KindLib  = "lib"
)

// Options configure backend construction. Zero values select the defaults:
// the "tesseract" binary from PATH, the system tessdata directory, and a 30
// second per-invocation timeout.
type Options struct {
	Binary   string
	Tessdata string
	Timeout  time.Duration
}

// New returns the backend selected by kind. "cli" shells out to the
// tesseract binary per call, "lib" uses the linked library, and "auto"
// prefers the library when the build carries it, falling back to the
// binary otherwise.
func New(kind string, opts Options) (ocr.Backend, error) {
	switch kind {
	case "", KindAuto:
		if backend, err := NewLib(opts); err == nil {
			return backend, nil
		}
		return NewCLI(opts), nil
	case KindCLI:
		return NewCLI(opts), nil
	case KindLib:
		return NewLib(opts)
	default:
		return nil, fmt.Errorf("unknown tesseract backend kind %q", kind)
	}
}
