// Package mock provides a scripted recognition backend for tests and for
// exercising the extraction pipeline without a Tesseract installation.
package mock

import (
	"context"
	"image"
	"sync"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

// Call captures one recognition invocation: the effective request and the
// size of the pixels presented, which is how tests tell regions apart.
type Call struct {
	Request ocr.Request
	Width   int
	Height  int
}

// Backend is a scripted ocr.Backend. Respond is consulted per call with the
// captured Call; a nil Respond recognizes nothing. Every call is recorded,
// and the recorder is safe for the concurrent region workers.
type Backend struct {
	BackendName string
	Respond     func(Call) ([]ocr.Token, error)

	mu    sync.Mutex
	calls []Call
}

// Static returns a backend that always replies with the given tokens.
func Static(tokens ...ocr.Token) *Backend {
	return &Backend{
		Respond: func(Call) ([]ocr.Token, error) {
			out := make([]ocr.Token, len(tokens))
			copy(out, tokens)
			return out, nil
		},
	}
}

// Empty returns a backend that recognizes nothing.
func Empty() *Backend {
	return &Backend{}
}

// Failing returns a backend that fails every call with err.
func Failing(err error) *Backend {
	return &Backend{
		Respond: func(Call) ([]ocr.Token, error) {
			return nil, err
		},
	}
}

func (b *Backend) Name() string {
	if b.BackendName == "" {
		return "mock"
	}
	return b.BackendName
}

// Recognize implements ocr.Backend.
func (b *Backend) Recognize(ctx context.Context, img image.Image, req ocr.Request) ([]ocr.Token, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	call := Call{Request: req}
	if img != nil {
		bounds := img.Bounds()
		call.Width = bounds.Dx()
		call.Height = bounds.Dy()
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()

	if b.Respond == nil {
		return nil, nil
	}
	return b.Respond(call)
}

func (b *Backend) Close() error { return nil }

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Word builds a token for scripted responses.
func Word(text string, conf float64, x, y, w, h int) ocr.Token {
	return ocr.Token{
		Text:       text,
		Confidence: conf,
		Box:        utils.NewBox(x, y, w, h),
		Page:       1,
	}
}
