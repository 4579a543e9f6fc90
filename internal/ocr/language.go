package ocr

// Language keys the engine registry. Template regions resolve to one of
// these at load time; explicit region hints pass through verbatim so that
// custom engine registrations remain addressable.
type Language string

const (
	LangFrench  Language = "french"
	LangArabic  Language = "arabic"
	LangReceipt Language = "receipt"
	// LangHybrid is the registry fallback: it runs both scripts over the
	// region and reconciles the results.
	LangHybrid Language = "hybrid"
)

// ResolveLanguage applies the routing policy for a template region, in
// priority order: an explicit lang hint wins; a field literally named
// receipt_no routes to the numeric receipt engine; a region named "ar" in
// the "title" section or a field name containing Arabic-range runes routes
// to arabic; everything else is french.
func ResolveLanguage(section, name, explicit string) Language {
	if explicit != "" {
		return Language(explicit)
	}
	if name == "receipt_no" {
		return LangReceipt
	}
	if (section == "title" && name == "ar") || IsArabicText(name) {
		return LangArabic
	}
	return LangFrench
}
