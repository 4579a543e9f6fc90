// Package validate normalizes raw OCR text into canonical, typed field
// values for Moroccan administrative documents. Every normalizer is pure and
// total: garbled input degrades to Valid=false with best-effort cleanup, it
// never produces an error.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// FieldType identifies the semantic type of a template field.
type FieldType string

const (
	TypeCIN       FieldType = "cin"
	TypeDate      FieldType = "date"
	TypePhone     FieldType = "phone"
	TypeReceiptNo FieldType = "receipt_no"
	TypeICE       FieldType = "ice"
	TypeIF        FieldType = "if"
	TypeCommune   FieldType = "commune"
	TypeName      FieldType = "name"
	TypeText      FieldType = "text"
)

// Normalized is the outcome of normalizing one piece of raw text.
type Normalized struct {
	Type  FieldType `json:"type"`
	Value string    `json:"value"`
	Valid bool      `json:"valid"`
}

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reCIN      = regexp.MustCompile(`([A-Z]{1,2})\s*[- ]?(\d{5,6})`)
	reDate     = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	reNonDigit = regexp.MustCompile(`\D+`)
	reReceipt  = regexp.MustCompile(`(\d{1,6}(?:[/-]\d{2,4}){1,3})`)
	reIFKey    = regexp.MustCompile(`\bif\b`)
)

// Keyword tables for ClassifyKey, checked in order. The order encodes
// precedence: a key naming both a CIN and a date ("date_delivrance_cin")
// classifies as CIN.
var (
	cinKeys     = []string{"cin", "cnie"}
	dateKeys    = []string{"date", "deliv", "délivr", "naissance", "dob", "تاريخ"}
	phoneKeys   = []string{"tel", "tél", "phone", "gsm", "هاتف"}
	receiptKeys = []string{"recep", "récép", "receipt", "وصل", "رقم الوصل"}
	communeKeys = []string{"commune", "arrondissement", "prefecture", "wilaya", "province"}
	nameKeys    = []string{"président", "president", "secr", "trésor", "association", "intitul", "name", "nom", "اسم الجمعية"}
)

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ClassifyKey maps a "section.name" field key to its semantic type by
// substring matching on the lowercased key. Intended to run once per region
// at template load, not per extraction.
func ClassifyKey(key string) FieldType {
	k := strings.ToLower(key)
	switch {
	case containsAny(k, cinKeys):
		return TypeCIN
	case containsAny(k, dateKeys):
		return TypeDate
	case containsAny(k, phoneKeys):
		return TypePhone
	case containsAny(k, receiptKeys):
		return TypeReceiptNo
	case strings.Contains(k, "ice"):
		return TypeICE
	case reIFKey.MatchString(k):
		return TypeIF
	case containsAny(k, communeKeys):
		return TypeCommune
	case containsAny(k, nameKeys):
		return TypeName
	default:
		return TypeText
	}
}

// Normalize canonicalizes raw text according to the given field type.
// Arabic-indic digits are transliterated to ASCII before any matching.
func Normalize(ft FieldType, text string) Normalized {
	switch ft {
	case TypeCIN:
		return normalizeCIN(text)
	case TypeDate:
		return normalizeDate(text)
	case TypePhone:
		return normalizePhone(text)
	case TypeReceiptNo:
		return normalizeReceiptNo(text)
	case TypeICE:
		return normalizeICE(text)
	case TypeIF:
		return normalizeIF(text)
	case TypeCommune:
		return normalizeCommune(text)
	case TypeName:
		return normalizeName(text)
	default:
		return normalizeText(text)
	}
}

// NormalizeField classifies the key and normalizes the text in one step.
func NormalizeField(key, text string) Normalized {
	return Normalize(ClassifyKey(key), text)
}

// normalizeCIN extracts a national identity number: one or two letters
// followed by five or six digits, with an optional separator in between.
func normalizeCIN(s string) Normalized {
	raw := TransliterateDigits(strings.ToUpper(s))
	m := reCIN.FindStringSubmatch(raw)
	if m == nil {
		return Normalized{Type: TypeCIN, Value: SquashSpaces(s), Valid: false}
	}
	return Normalized{Type: TypeCIN, Value: m[1] + m[2], Valid: true}
}

// normalizeDate accepts d/m/y with '/', '-' or '.' separators and emits
// YYYY-MM-DD. Two-digit years below 50 map to 20xx, the rest to 19xx.
func normalizeDate(s string) Normalized {
	t := TransliterateDigits(s)
	t = strings.ReplaceAll(t, ".", "/")
	t = strings.ReplaceAll(t, "-", "/")
	m := reDate.FindStringSubmatch(t)
	if m == nil {
		return Normalized{Type: TypeDate, Value: SquashSpaces(s), Valid: false}
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	if y < 100 {
		if y < 50 {
			y += 2000
		} else {
			y += 1900
		}
	}
	ok := d >= 1 && d <= 31 && mo >= 1 && mo <= 12 && y >= 1900 && y <= 2100
	if !ok {
		return Normalized{Type: TypeDate, Value: SquashSpaces(s), Valid: false}
	}
	return Normalized{Type: TypeDate, Value: fmt.Sprintf("%04d-%02d-%02d", y, mo, d), Valid: true}
}

// normalizePhone canonicalizes Moroccan numbers to +212 followed by nine
// digits, dropping a leading country code or trunk zero.
func normalizePhone(s string) Normalized {
	t := reNonDigit.ReplaceAllString(TransliterateDigits(s), "")
	t = strings.TrimPrefix(t, "212")
	t = strings.TrimPrefix(t, "0")
	if len(t) != 9 {
		return Normalized{Type: TypePhone, Value: SquashSpaces(s), Valid: false}
	}
	return Normalized{Type: TypePhone, Value: "+212" + t, Valid: true}
}

// normalizeReceiptNo extracts a digit run followed by one to three
// separator+digit groups and canonicalizes separators to '/'.
func normalizeReceiptNo(s string) Normalized {
	t := TransliterateDigits(s)
	m := reReceipt.FindStringSubmatch(t)
	if m == nil {
		return Normalized{Type: TypeReceiptNo, Value: SquashSpaces(s), Valid: false}
	}
	return Normalized{Type: TypeReceiptNo, Value: strings.ReplaceAll(m[1], "-", "/"), Valid: true}
}

// normalizeICE keeps digits only; an ICE is valid at exactly 15 digits.
func normalizeICE(s string) Normalized {
	t := reNonDigit.ReplaceAllString(TransliterateDigits(s), "")
	return Normalized{Type: TypeICE, Value: t, Valid: len(t) == 15}
}

// normalizeIF keeps digits only; an IF is valid at 7 or 8 digits.
func normalizeIF(s string) Normalized {
	t := reNonDigit.ReplaceAllString(TransliterateDigits(s), "")
	return Normalized{Type: TypeIF, Value: t, Valid: len(t) >= 7 && len(t) <= 8}
}

// normalizeCommune title-cases the input and matches it against the commune
// gazetteer, substring in either direction, case-insensitively. Matching is
// best-effort canonicalization: any non-empty input stays valid.
func normalizeCommune(s string) Normalized {
	base := titleCase(SquashSpaces(s))
	if base == "" {
		return Normalized{Type: TypeCommune, Value: "", Valid: false}
	}
	lower := strings.ToLower(base)
	for _, c := range Communes {
		cl := strings.ToLower(c)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return Normalized{Type: TypeCommune, Value: c, Valid: true}
		}
	}
	return Normalized{Type: TypeCommune, Value: base, Valid: true}
}

func normalizeName(s string) Normalized {
	v := SquashSpaces(s)
	return Normalized{Type: TypeName, Value: v, Valid: v != ""}
}

func normalizeText(s string) Normalized {
	return Normalized{
		Type:  TypeText,
		Value: SquashSpaces(TransliterateDigits(s)),
		Valid: SquashSpaces(s) != "",
	}
}

// SquashSpaces collapses whitespace runs to single spaces and trims the ends.
func SquashSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// titleCase uppercases the first letter of every letter run and lowercases
// the rest, so "ben m'sick" becomes "Ben M'Sick".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
