package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/validate"
)

// utf8BOM is tolerated at the start of template files. Templates are often
// authored on Windows and saved as UTF-8 with a signature.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// templateJSON is the wire form of one template entry. Regions stay raw so
// the parser can walk them token by token, preserving declaration order and
// catching duplicate keys that a plain map decode would silently collapse.
type templateJSON struct {
	Name           string          `json:"name"`
	NameAr         string          `json:"name_ar"`
	Version        string          `json:"template_version"`
	RequiredFields []string        `json:"required_fields"`
	Regions        json.RawMessage `json:"regions"`
}

// regionJSON is the wire form of one region. Coordinates are pointers so a
// missing value is distinguishable from an explicit zero.
type regionJSON struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	W *float64 `json:"w"`
	H *float64 `json:"h"`
	ocr.Hints
}

// Load reads a single template file into a fresh store.
func Load(path string) (*Store, error) {
	store := NewStore()
	if err := loadInto(store, path); err != nil {
		return nil, err
	}
	return store, nil
}

// LoadDir loads every .json file in dir into one store. Files are visited
// in lexical order; a template id declared twice across files is a
// ConfigError.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigError{Path: dir, Err: err}
	}
	store := NewStore()
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		if err := loadInto(store, filepath.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func loadInto(store *Store, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: template path comes from configuration
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	templates, err := Parse(data)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	for _, tpl := range templates {
		if err := store.Add(tpl); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}
	return nil
}

// ParseStore decodes a template document into a fresh store.
func ParseStore(data []byte) (*Store, error) {
	templates, err := Parse(data)
	if err != nil {
		return nil, err
	}
	store := NewStore()
	for _, tpl := range templates {
		if err := store.Add(tpl); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Parse decodes a template document: a JSON object mapping template id to
// template definition, optionally prefixed with a UTF-8 BOM. Templates are
// returned in declaration order.
func Parse(data []byte) ([]*Template, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	var templates []*Template
	seen := make(map[string]struct{})
	for dec.More() {
		id, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate template %q", id)
		}
		seen[id] = struct{}{}

		var tj templateJSON
		if err := dec.Decode(&tj); err != nil {
			return nil, fmt.Errorf("template %q: %w", id, err)
		}
		tpl, err := buildTemplate(id, tj)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("templates: trailing data after top-level object")
	}
	return templates, nil
}

func buildTemplate(id string, tj templateJSON) (*Template, error) {
	if len(tj.Regions) == 0 {
		return nil, fmt.Errorf("template %q: no regions declared", id)
	}
	regions, err := parseRegions(tj.Regions)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", id, err)
	}
	tpl := &Template{
		ID:             id,
		Name:           tj.Name,
		NameAr:         tj.NameAr,
		Version:        tj.Version,
		RequiredFields: tj.RequiredFields,
		Regions:        regions,
	}
	if tpl.Version == "" {
		tpl.Version = "1.0"
	}
	if tpl.RequiredFields == nil {
		tpl.RequiredFields = []string{}
	}
	return tpl, nil
}

// parseRegions walks the regions object {section: {name: region}} with a
// token decoder. Map decoding would lose declaration order and keep only
// the last of two colliding keys, so collisions are detected here instead.
func parseRegions(raw json.RawMessage) ([]Region, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	var regions []Region
	seen := make(map[string]struct{})
	for dec.More() {
		section, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("regions: %w", err)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("section %q: %w", section, err)
		}
		for dec.More() {
			name, err := stringToken(dec)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", section, err)
			}
			var rj regionJSON
			if err := dec.Decode(&rj); err != nil {
				return nil, fmt.Errorf("region %q: %w", section+"."+name, err)
			}
			region, err := buildRegion(section, name, rj)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[region.Key()]; dup {
				return nil, fmt.Errorf("duplicate region %q", region.Key())
			}
			seen[region.Key()] = struct{}{}
			regions = append(regions, region)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("section %q: %w", section, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}
	return regions, nil
}

func buildRegion(section, name string, rj regionJSON) (Region, error) {
	key := section + "." + name
	if rj.X == nil || rj.Y == nil || rj.W == nil || rj.H == nil {
		return Region{}, fmt.Errorf("region %q: missing x/y/w/h", key)
	}
	x, y, w, h := *rj.X, *rj.Y, *rj.W, *rj.H
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > 1 || y+h > 1 {
		return Region{}, fmt.Errorf("region %q: box (%g, %g, %g, %g) outside the unit square", key, x, y, w, h)
	}
	return Region{
		Section:  section,
		Name:     name,
		X:        x,
		Y:        y,
		W:        w,
		H:        h,
		Hints:    rj.Hints,
		Language: ocr.ResolveLanguage(section, name, rj.Hints.Lang),
		Type:     validate.ClassifyKey(key),
	}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %v", tok)
	}
	return s, nil
}
