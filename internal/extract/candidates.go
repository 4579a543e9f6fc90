package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/utils"
	"github.com/atlasocr/wasl/internal/validate"
)

// digitBonus nudges the digits-only candidate ahead on exact ties without
// ever outweighing a real confidence difference on the 0-100 scale.
const digitBonus = 0.1

// candidate is one derived string competing to become a field's value.
type candidate struct {
	text string
	conf float64
	norm validate.Normalized
}

// resolveField turns one region's raw tokens into its FieldResult. Three
// candidates compete: the joined token texts, their digits-only reduction,
// and the single best token by confidence times area. Each is normalized for
// the region's semantic type; the winner maximizes (valid, confidence,
// length), earlier candidates keeping exact ties. No usable candidate yields
// an empty invalid placeholder, never an error.
func resolveField(tokens []ocr.Token, region template.Region, box utils.Box) FieldResult {
	out := FieldResult{
		Type: region.Type,
		Lang: region.Language,
		BBox: box,
	}

	best, ok := bestToken(tokens)
	if !ok {
		return out
	}

	conf := best.Confidence
	if digitConfs := digitishConfidences(tokens); len(digitConfs) > 0 {
		conf = median(digitConfs)
	}

	var cands []candidate
	if joined := joinTokens(tokens); joined != "" {
		cands = append(cands, candidate{text: joined, conf: conf})
		if digits := digitsOnly(joined); digits != "" {
			cands = append(cands, candidate{text: digits, conf: conf + digitBonus})
		}
	}
	if best.Text != "" {
		cands = append(cands, candidate{text: best.Text, conf: conf})
	}
	if len(cands) == 0 {
		return out
	}

	for i := range cands {
		cands[i].norm = validate.Normalize(region.Type, cands[i].text)
	}

	win := cands[0]
	for _, c := range cands[1:] {
		if betterCandidate(c, win) {
			win = c
		}
	}

	out.Value = win.text
	out.Norm = win.norm.Value
	out.Valid = win.norm.Valid
	out.Conf = win.conf
	return out
}

// bestToken picks the token maximizing confidence times box area, with the
// area floored at one pixel. Ties keep the earlier token.
func bestToken(tokens []ocr.Token) (ocr.Token, bool) {
	var (
		best  ocr.Token
		score = -1.0
		found bool
	)
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if s := t.Confidence * float64(t.WeightedArea()); s > score {
			best, score, found = t, s, true
		}
	}
	return best, found
}

// digitishConfidences collects the confidences of tokens whose text contains
// a digit (any script), a slash or a hyphen.
func digitishConfidences(tokens []ocr.Token) []float64 {
	var confs []float64
	for _, t := range tokens {
		if strings.ContainsFunc(t.Text, isDigitish) {
			confs = append(confs, t.Confidence)
		}
	}
	return confs
}

func isDigitish(r rune) bool {
	return unicode.IsDigit(r) || r == '/' || r == '-'
}

// median returns the upper median of vs.
func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// joinTokens concatenates token texts with single spaces in backend order.
func joinTokens(tokens []ocr.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if text := strings.TrimSpace(t.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// digitsOnly strips everything except digits, slashes and hyphens. Arabic-
// indic digits survive here and are transliterated by the normalizer.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigitish(r) {
			return r
		}
		return -1
	}, s)
}

// betterCandidate reports whether a strictly beats b on the ordered tuple
// (valid, confidence, text length).
func betterCandidate(a, b candidate) bool {
	if a.norm.Valid != b.norm.Valid {
		return a.norm.Valid
	}
	if a.conf != b.conf {
		return a.conf > b.conf
	}
	return len(a.text) > len(b.text)
}
