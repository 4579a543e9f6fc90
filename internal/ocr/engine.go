package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/atlasocr/wasl/internal/utils"
)

// Recognizer turns a pixel region into tokens. Engine and Hybrid implement
// it; the extractor only ever sees this interface.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, hints Hints) ([]Token, error)
}

// Engine binds one recognition profile to a backend. It owns the
// profile-level concerns the dispatcher must not know about: pre-recognition
// scaling, the empty-result retry pass, and post-recognition rune filtering.
type Engine struct {
	profile Profile
	backend Backend
}

// NewEngine creates an engine for the given profile and backend.
func NewEngine(profile Profile, backend Backend) *Engine {
	return &Engine{profile: profile, backend: backend}
}

// Profile returns the engine's profile.
func (e *Engine) Profile() Profile { return e.profile }

// Recognize runs a single recognition pass, retrying once per the profile's
// retry policy when the first pass returns nothing.
func (e *Engine) Recognize(ctx context.Context, img image.Image, hints Hints) ([]Token, error) {
	req := e.profile.Merge(hints)

	work := img
	if s := e.profile.Scale; s > 0 && s != 1.0 {
		work = utils.Scale(work, s)
	}

	tokens, err := e.backend.Recognize(ctx, work, req)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 && e.profile.RetryScale > 0 {
		retry := req
		if e.profile.RetryPSM > 0 {
			retry.PSM = e.profile.RetryPSM
		}
		tokens, err = e.backend.Recognize(ctx, utils.Scale(work, e.profile.RetryScale), retry)
		if err != nil {
			return nil, err
		}
	}

	if e.profile.Keep != "" {
		tokens = keepRunes(tokens, e.profile.Keep)
	}
	if e.profile.Tag != "" {
		for i := range tokens {
			tokens[i].Lang = string(e.profile.Tag)
		}
	}
	return tokens, nil
}

// keepRunes strips token text down to the allowed rune set and drops tokens
// that end up empty.
func keepRunes(tokens []Token, allowed string) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		t.Text = strings.Map(func(r rune) rune {
			if strings.ContainsRune(allowed, r) {
				return r
			}
			return -1
		}, t.Text)
		if t.Text != "" {
			out = append(out, t)
		}
	}
	return out
}

// Hybrid is the fallback recognizer: it runs the Arabic and French engines
// over the same pixels, keeps each side's expected script, and reconciles
// cross-script overlaps.
type Hybrid struct {
	arabic Recognizer
	french Recognizer
}

// NewHybrid builds a hybrid recognizer from the two script engines.
func NewHybrid(arabic, french Recognizer) *Hybrid {
	return &Hybrid{arabic: arabic, french: french}
}

// Recognize implements Recognizer.
func (h *Hybrid) Recognize(ctx context.Context, img image.Image, hints Hints) ([]Token, error) {
	arabic, err := h.arabic.Recognize(ctx, img, hints)
	if err != nil {
		return nil, err
	}
	french, err := h.french.Recognize(ctx, img, hints)
	if err != nil {
		return nil, err
	}
	arabic = FilterScript(arabic, LangArabic)
	french = FilterScript(french, LangFrench)
	arabic, french = ResolveOverlaps(arabic, french)
	return append(arabic, french...), nil
}

// EngineSet is the registry the dispatcher resolves languages against.
type EngineSet struct {
	engines map[Language]Recognizer
}

// NewEngineSet returns an empty registry.
func NewEngineSet() *EngineSet {
	return &EngineSet{engines: make(map[Language]Recognizer)}
}

// Register adds or replaces the recognizer for a language.
func (s *EngineSet) Register(lang Language, r Recognizer) {
	s.engines[lang] = r
}

// Resolve returns the recognizer for a language, falling back to the hybrid
// entry. A miss on both is an UnknownEngineError.
func (s *EngineSet) Resolve(lang Language) (Recognizer, error) {
	if r, ok := s.engines[lang]; ok {
		return r, nil
	}
	if r, ok := s.engines[LangHybrid]; ok {
		return r, nil
	}
	return nil, &UnknownEngineError{Language: lang}
}

// Languages returns the registered language keys.
func (s *EngineSet) Languages() []Language {
	out := make([]Language, 0, len(s.engines))
	for l := range s.engines {
		out = append(out, l)
	}
	return out
}

// DefaultEngineSet wires the built-in profiles to a backend: french, arabic
// and receipt engines plus the hybrid fallback composed from the first two.
func DefaultEngineSet(backend Backend) *EngineSet {
	s := NewEngineSet()
	arabic := NewEngine(ArabicProfile(), backend)
	french := NewEngine(FrenchProfile(), backend)
	s.Register(LangArabic, arabic)
	s.Register(LangFrench, french)
	s.Register(LangReceipt, NewEngine(ReceiptProfile(), backend))
	s.Register(LangHybrid, NewHybrid(arabic, french))
	return s
}
