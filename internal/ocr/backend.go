package ocr

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Request carries the settings for one recognition call. Zero values mean
// "unset": non-positive PSM/OEM/DPI and empty character sets are omitted
// from the generated configuration.
type Request struct {
	Language       string // Tesseract language code, e.g. "fra", "ara"
	PSM            int    // page segmentation mode
	OEM            int    // engine mode
	DPI            int    // user-defined DPI override
	Whitelist      string
	Blacklist      string
	PreserveSpaces bool
}

// Args renders the request as Tesseract command-line arguments, in the
// canonical order: psm, oem, dpi, space preservation, whitelist, blacklist.
// The language is passed separately (-l) by the adapters.
func (r Request) Args() []string {
	var args []string
	if r.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.PSM))
	}
	if r.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.OEM))
	}
	if r.DPI > 0 {
		args = append(args, "-c", fmt.Sprintf("user_defined_dpi=%d", r.DPI))
	}
	if r.PreserveSpaces {
		args = append(args, "-c", "preserve_interword_spaces=1")
	}
	if r.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+r.Whitelist)
	}
	if r.Blacklist != "" {
		args = append(args, "-c", "tessedit_char_blacklist="+r.Blacklist)
	}
	return args
}

// ConfigString returns the request's argument form as a single string,
// mainly for debug logging.
func (r Request) ConfigString() string {
	return strings.Join(r.Args(), " ")
}

// Backend is the external recognition capability. Implementations must
// discard rows with negative confidence or empty text and return
// crop-local pixel boxes.
type Backend interface {
	// Name identifies the adapter, e.g. "tesseract-exec".
	Name() string
	// Recognize runs OCR over the image with the given settings.
	Recognize(ctx context.Context, img image.Image, req Request) ([]Token, error)
	// Close releases any resources held by the adapter.
	Close() error
}
