// Package template loads declarative document layouts. A template names the
// fields a document carries, where each field lives on the page as fractions
// of the page size, and how each should be recognized. Region language and
// semantic field type are resolved once at load time so extraction runs work
// with typed values instead of re-deriving them from strings per run.
package template

import (
	"math"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
	"github.com/atlasocr/wasl/internal/validate"
)

// Template describes one known document layout. Templates are immutable
// after loading and safe to share across concurrent extraction runs.
type Template struct {
	ID             string
	Name           string
	NameAr         string
	Version        string
	RequiredFields []string
	Regions        []Region
}

// Region is one field's declared location plus its recognition settings.
// Coordinates are fractions of the page size in [0,1]. Language and Type are
// resolved from the section, name, and hints when the template is parsed.
type Region struct {
	Section string
	Name    string

	X, Y, W, H float64

	Hints    ocr.Hints
	Language ocr.Language
	Type     validate.FieldType
}

// Key returns the canonical field identifier "section.name".
func (r Region) Key() string {
	return r.Section + "." + r.Name
}

// Locate maps the region onto a concrete page: coordinates are scaled,
// rounded, then clamped so the resulting box is at least one pixel and lies
// inside the page even for degenerate or edge-touching regions.
func (r Region) Locate(width, height int) utils.Box {
	x := int(math.Round(r.X * float64(width)))
	y := int(math.Round(r.Y * float64(height)))
	w := int(math.Round(r.W * float64(width)))
	h := int(math.Round(r.H * float64(height)))

	x = utils.ClampInt(x, 0, width-1)
	y = utils.ClampInt(y, 0, height-1)
	w = utils.ClampInt(w, 1, width-x)
	h = utils.ClampInt(h, 1, height-y)
	return utils.NewBox(x, y, w, h)
}

// Field returns the region declared under the given "section.name" key.
func (t *Template) Field(key string) (Region, bool) {
	for _, r := range t.Regions {
		if r.Key() == key {
			return r, true
		}
	}
	return Region{}, false
}

// Sections lists the distinct section names in declaration order.
func (t *Template) Sections() []string {
	seen := make(map[string]struct{}, len(t.Regions))
	var out []string
	for _, r := range t.Regions {
		if _, ok := seen[r.Section]; ok {
			continue
		}
		seen[r.Section] = struct{}{}
		out = append(out, r.Section)
	}
	return out
}
