package validate

import "strings"

// arabicIndicDigits maps the Arabic-indic digit block U+0660..U+0669 to
// ASCII digits.
var arabicIndicDigits = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// TransliterateDigits replaces Arabic-indic digits with their ASCII
// equivalents and leaves every other rune untouched.
func TransliterateDigits(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= '٠' && r <= '٩' }) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if d, ok := arabicIndicDigits[r]; ok {
			return d
		}
		return r
	}, s)
}
