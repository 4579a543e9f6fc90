// Package postprocess turns merged recognition output into document-level
// metadata: a coarse document-type guess, the language inventory, and an
// aggregate confidence.
package postprocess

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/atlasocr/wasl/internal/ocr"
)

// DocType is the coarse class of an administrative document.
type DocType string

const (
	DocCertificate   DocType = "certificate"
	DocApplication   DocType = "application"
	DocAuthorization DocType = "authorization"
	DocDeclaration   DocType = "declaration"
	DocUnknown       DocType = "unknown"
)

var (
	// The optional e absorbs OCR dropping a letter from "declaration".
	reDeclaration = regexp.MustCompile(`de?claration`)
	reNonAZ       = regexp.MustCompile(`[^a-z]+`)
)

// StripAccents removes diacritics: NFKD decomposition with the combining
// marks dropped, so "Récépissé" folds to "Recepisse".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// DetectDocType guesses the document class from its combined text. French
// keywords are matched accent-insensitively; Arabic keywords are matched
// verbatim. The order encodes precedence: a document naming both a demande
// and an autorisation classifies as the application it requests.
func DetectDocType(text string) DocType {
	lower := strings.ToLower(text)
	fold := StripAccents(lower)
	letters := reNonAZ.ReplaceAllString(fold, "")

	switch {
	case strings.Contains(fold, "certificat") || strings.Contains(lower, "شهادة"):
		return DocCertificate
	case strings.Contains(fold, "demande") || strings.Contains(lower, "طلب"):
		return DocApplication
	case strings.Contains(fold, "autorisation") || strings.Contains(lower, "رخصة"):
		return DocAuthorization
	case reDeclaration.MatchString(letters) || strings.Contains(lower, "تصريح"):
		return DocDeclaration
	default:
		return DocUnknown
	}
}

// Summary is the document-level digest of a token stream.
type Summary struct {
	DocType    DocType
	Languages  []string
	Confidence float64
}

// Summarize digests recognized tokens: blank texts are skipped, languages
// come from the token tag or a script guess, and confidence is the mean
// over usable tokens.
func Summarize(tokens []ocr.Token) Summary {
	var (
		parts []string
		total float64
		count int
	)
	langSet := make(map[string]struct{})
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)

		lang := t.Lang
		if lang == "" {
			lang = guessLang(text)
		}
		if lang != "" {
			langSet[lang] = struct{}{}
		}
		if t.Confidence >= 0 {
			total += t.Confidence
			count++
		}
	}

	langs := make([]string, 0, len(langSet))
	for l := range langSet {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	s := Summary{
		DocType:   DetectDocType(strings.Join(parts, " ")),
		Languages: langs,
	}
	if count > 0 {
		s.Confidence = total / float64(count)
	}
	return s
}

func guessLang(text string) string {
	if ocr.IsArabicText(text) {
		return "arabic"
	}
	if ocr.IsLatinText(text) {
		return "french"
	}
	return ""
}
