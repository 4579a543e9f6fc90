//go:build cgo

package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

// lib recognizes through the linked libtesseract via gosseract. A fresh
// client per call keeps the backend safe for concurrent region workers at
// the cost of re-initializing the language model each time.
//
// The library fixes the engine mode at initialization, so req.OEM is
// honored only by the CLI backend.
type lib struct {
	tessdata string
}

// NewLib builds the in-process backend. Only available in cgo builds.
func NewLib(opts Options) (ocr.Backend, error) {
	return &lib{tessdata: opts.Tessdata}, nil
}

func (l *lib) Name() string { return "tesseract-lib" }

// Recognize implements ocr.Backend.
func (l *lib) Recognize(ctx context.Context, img image.Image, req ocr.Request) ([]ocr.Token, error) {
	// The C call cannot be interrupted; honor an already-expired context
	// before paying for client setup.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := l.configure(client, req); err != nil {
		return nil, &ocr.BackendError{Backend: l.Name(), Err: err}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &ocr.BackendError{Backend: l.Name(), Err: fmt.Errorf("encode crop: %w", err)}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &ocr.BackendError{Backend: l.Name(), Err: fmt.Errorf("set image: %w", err)}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &ocr.BackendError{Backend: l.Name(), Err: fmt.Errorf("get word boxes: %w", err)}
	}

	tokens := make([]ocr.Token, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || b.Confidence < 0 {
			continue
		}
		tokens = append(tokens, ocr.Token{
			Text:       text,
			Confidence: b.Confidence,
			Box:        utils.FromRect(b.Box),
			Page:       1,
		})
	}
	return tokens, nil
}

func (l *lib) configure(client *gosseract.Client, req ocr.Request) error {
	if l.tessdata != "" {
		if err := client.SetTessdataPrefix(l.tessdata); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if req.Language != "" {
		if err := client.SetLanguage(req.Language); err != nil {
			return fmt.Errorf("set language: %w", err)
		}
	}
	if req.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(req.PSM)); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if req.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(req.DPI)); err != nil {
			return fmt.Errorf("set dpi: %w", err)
		}
	}
	if req.PreserveSpaces {
		if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
			return fmt.Errorf("set preserve spaces: %w", err)
		}
	}
	if req.Whitelist != "" {
		if err := client.SetWhitelist(req.Whitelist); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
	}
	if req.Blacklist != "" {
		if err := client.SetBlacklist(req.Blacklist); err != nil {
			return fmt.Errorf("set blacklist: %w", err)
		}
	}
	return nil
}

func (l *lib) Close() error { return nil }
