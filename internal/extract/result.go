package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
	"github.com/atlasocr/wasl/internal/validate"
)

// FieldResult is the resolved outcome for one template field. Value is the
// raw text of the winning candidate, Norm its canonical form. A region whose
// recognition failed carries the failure in Error with everything else
// zeroed; sibling fields are unaffected.
type FieldResult struct {
	Value string             `json:"value"`
	Norm  string             `json:"norm"`
	Valid bool               `json:"valid"`
	Type  validate.FieldType `json:"type"`
	Conf  float64            `json:"conf"`
	Lang  ocr.Language       `json:"lang"`
	BBox  utils.Box          `json:"bbox"`
	Error string             `json:"error,omitempty"`
}

// Metadata is the template snapshot attached to every extraction result.
type Metadata struct {
	TemplateName   string   `json:"template_name"`
	TemplateNameAr string   `json:"template_name_ar"`
	Version        string   `json:"template_version"`
	RequiredFields []string `json:"required_fields"`
}

// Result aggregates one extraction run: the template metadata, one
// FieldResult per declared "section.name" key, and the raw token trail per
// resolved language. Raw token boxes are crop-local.
type Result struct {
	Metadata Metadata               `json:"metadata"`
	Fields   map[string]FieldResult `json:"fields"`
	Raw      map[string][]ocr.Token `json:"raw"`
}

// FieldKeys returns the result's field keys in sorted order.
func (r *Result) FieldKeys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MissingRequired lists the template's required fields that resolved invalid
// or empty, preserving the template's declaration order.
func (r *Result) MissingRequired() []string {
	var missing []string
	for _, key := range r.Metadata.RequiredFields {
		f, ok := r.Fields[key]
		if !ok || !f.Valid || strings.TrimSpace(f.Norm) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// ToJSON serializes a result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToText renders a result as a human-readable field table, one field per
// line in sorted key order, followed by the list of unmet required fields.
func ToText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}

	var b strings.Builder
	name := res.Metadata.TemplateName
	if res.Metadata.TemplateNameAr != "" {
		name += " / " + res.Metadata.TemplateNameAr
	}
	fmt.Fprintf(&b, "%s (v%s)\n", name, res.Metadata.Version)

	for _, key := range res.FieldKeys() {
		f := res.Fields[key]
		if f.Error != "" {
			fmt.Fprintf(&b, "  %-28s <error: %s>\n", key, f.Error)
			continue
		}
		mark := " "
		if f.Valid {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %-28s %s %-30s conf=%5.1f lang=%s\n", key, mark, f.Norm, f.Conf, f.Lang)
	}

	if missing := res.MissingRequired(); len(missing) > 0 {
		fmt.Fprintf(&b, "missing required: %s\n", strings.Join(missing, ", "))
	}
	return b.String(), nil
}
