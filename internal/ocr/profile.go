package ocr

// Hints are the optional per-region recognition overrides a template may
// declare. Pointer fields distinguish "absent" from an explicit zero. The
// struct is embedded in the template region wire format.
type Hints struct {
	Lang           string   `json:"lang,omitempty"`
	PSM            *int     `json:"psm,omitempty"`
	OEM            *int     `json:"oem,omitempty"`
	DPI            *int     `json:"dpi,omitempty"`
	Scale          *float64 `json:"scale,omitempty"`
	Whitelist      string   `json:"whitelist,omitempty"`
	Blacklist      string   `json:"blacklist,omitempty"`
	PreserveSpaces bool     `json:"preserve_spaces,omitempty"`
}

// ScaleFactor returns the pre-recognition scale hint, or 1.0 when unset or
// nonsensical.
func (h Hints) ScaleFactor() float64 {
	if h.Scale == nil || *h.Scale <= 0 {
		return 1.0
	}
	return *h.Scale
}

// Profile is a named recognition configuration: the Tesseract language plus
// the default settings an engine applies before per-region hints.
type Profile struct {
	// Tag is the registry language stamped onto every token the engine
	// emits, so downstream consumers can tell which pass produced a token
	// even after hybrid merging.
	Tag Language

	Language       string // Tesseract language code
	PSM            int
	OEM            int
	DPI            int
	Whitelist      string
	Blacklist      string
	PreserveSpaces bool

	// Scale upscales the crop before recognition (cubic), e.g. the receipt
	// profile's treat-as-300-DPI convention. Zero or one means no scaling.
	Scale float64

	// Keep, when non-empty, post-filters recognized text to this rune set;
	// tokens left empty by the filter are dropped.
	Keep string

	// RetryScale/RetryPSM describe the engine-internal second pass taken
	// when the first pass yields no tokens. Zero RetryScale disables it.
	RetryScale float64
	RetryPSM   int
}

// Merge builds the effective request for one region: profile defaults with
// the region's explicit hints applied on top, setting by setting.
func (p Profile) Merge(h Hints) Request {
	req := Request{
		Language:       p.Language,
		PSM:            p.PSM,
		OEM:            p.OEM,
		DPI:            p.DPI,
		Whitelist:      p.Whitelist,
		Blacklist:      p.Blacklist,
		PreserveSpaces: p.PreserveSpaces || h.PreserveSpaces,
	}
	if h.PSM != nil {
		req.PSM = *h.PSM
	}
	if h.OEM != nil {
		req.OEM = *h.OEM
	}
	if h.DPI != nil {
		req.DPI = *h.DPI
	}
	if h.Whitelist != "" {
		req.Whitelist = h.Whitelist
	}
	if h.Blacklist != "" {
		req.Blacklist = h.Blacklist
	}
	return req
}

// asciiLetters is blacklisted for Arabic passes to stop Latin bleed-through
// on bilingual headers.
const asciiLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// FrenchProfile recognizes French administrative text as a uniform block.
func FrenchProfile() Profile {
	return Profile{Tag: LangFrench, Language: "fra", PSM: 6, OEM: 1}
}

// ArabicProfile recognizes Arabic text LSTM-only with interword spaces
// preserved. An empty first pass retries once at 1.3x scale in single-line
// mode, which recovers small ROIs that segment poorly at native size.
func ArabicProfile() Profile {
	return Profile{
		Tag:            LangArabic,
		Language:       "ara",
		PSM:            6,
		OEM:            1,
		PreserveSpaces: true,
		Blacklist:      asciiLetters,
		RetryScale:     1.3,
		RetryPSM:       7,
	}
}

// ReceiptProfile reads numeric receipt identifiers: single-line mode over a
// crop upscaled as if rendered at 300 DPI, constrained to digits and the
// slash separator.
func ReceiptProfile() Profile {
	return Profile{
		Tag:       LangReceipt,
		Language:  "fra",
		PSM:       7,
		OEM:       3,
		Whitelist: "0123456789/",
		Scale:     300.0 / 72.0,
		Keep:      "0123456789/",
	}
}
