// Package ocr defines the recognition boundary: the token type returned by
// backends, recognition profiles and per-region request building, language
// routing, and the engine registry used by the extractor.
package ocr

import (
	"github.com/atlasocr/wasl/internal/utils"
)

// Token is one recognized text fragment. Backends normalize whatever shape
// they produce into this type at the adapter boundary; rows with negative
// confidence or empty text never make it out of an adapter.
type Token struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Box        utils.Box `json:"bbox"`
	Lang       string    `json:"language"`
	Page       int       `json:"page_number"`
}

// WeightedArea returns the token's box area, floored at one pixel so that
// confidence times area stays meaningful for degenerate boxes.
func (t Token) WeightedArea() int {
	if a := t.Box.Area(); a > 1 {
		return a
	}
	return 1
}

// IsArabicText reports whether s contains at least one rune in the Arabic
// Unicode block U+0600..U+06FF.
func IsArabicText(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// IsLatinText reports whether s contains at least one ASCII letter.
func IsLatinText(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// FilterScript keeps only tokens whose text matches the expected script for
// the given language: Arabic-range runes for arabic, ASCII letters for
// french. Tokens carrying neither script (stray digits, punctuation noise)
// are dropped from both sides. Other languages pass through unchanged.
func FilterScript(tokens []Token, lang Language) []Token {
	switch lang {
	case LangArabic:
		out := make([]Token, 0, len(tokens))
		for _, t := range tokens {
			if IsArabicText(t.Text) {
				out = append(out, t)
			}
		}
		return out
	case LangFrench:
		out := make([]Token, 0, len(tokens))
		for _, t := range tokens {
			if IsLatinText(t.Text) {
				out = append(out, t)
			}
		}
		return out
	default:
		return tokens
	}
}

// OffsetTokens returns the tokens with their boxes translated by dx, dy.
// Used to map crop-local detections back to page coordinates.
func OffsetTokens(tokens []Token, dx, dy int) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		t.Box = t.Box.Offset(dx, dy)
		out[i] = t
	}
	return out
}
