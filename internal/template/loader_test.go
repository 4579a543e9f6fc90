package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/validate"
)

const receiptTemplate = `{
  "assoc_receipt": {
    "name": "Récépissé de dépôt",
    "name_ar": "وصل إيداع",
    "required_fields": ["title.fr", "body.receipt_no"],
    "regions": {
      "title": {
        "fr": {"x": 0.05, "y": 0.04, "w": 0.9, "h": 0.07},
        "ar": {"x": 0.25, "y": 0.12, "w": 0.5, "h": 0.07}
      },
      "header": {
        "commune.fr": {"x": 0.05, "y": 0.22, "w": 0.45, "h": 0.06},
        "commune.ar": {"x": 0.5, "y": 0.22, "w": 0.45, "h": 0.06, "lang": "arabic"}
      },
      "body": {
        "receipt_no": {"x": 0.05, "y": 0.55, "w": 0.4, "h": 0.06, "dpi": 300},
        "date.fr": {"x": 0.55, "y": 0.55, "w": 0.3, "h": 0.06}
      }
    }
  }
}`

func TestParseTemplate(t *testing.T) {
	templates, err := Parse([]byte(receiptTemplate))
	require.NoError(t, err)
	require.Len(t, templates, 1)

	tpl := templates[0]
	assert.Equal(t, "assoc_receipt", tpl.ID)
	assert.Equal(t, "Récépissé de dépôt", tpl.Name)
	assert.Equal(t, "وصل إيداع", tpl.NameAr)
	assert.Equal(t, "1.0", tpl.Version, "missing version defaults")
	assert.Equal(t, []string{"title.fr", "body.receipt_no"}, tpl.RequiredFields)

	keys := make([]string, 0, len(tpl.Regions))
	for _, r := range tpl.Regions {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{
		"title.fr", "title.ar",
		"header.commune.fr", "header.commune.ar",
		"body.receipt_no", "body.date.fr",
	}, keys, "declaration order preserved")
}

func TestParseResolvesLanguageAndType(t *testing.T) {
	templates, err := Parse([]byte(receiptTemplate))
	require.NoError(t, err)
	tpl := templates[0]

	tests := []struct {
		key  string
		lang ocr.Language
		typ  validate.FieldType
	}{
		{"title.fr", ocr.LangFrench, validate.TypeText},
		{"title.ar", ocr.LangArabic, validate.TypeText},
		{"header.commune.fr", ocr.LangFrench, validate.TypeCommune},
		{"header.commune.ar", ocr.LangArabic, validate.TypeCommune},
		{"body.receipt_no", ocr.LangReceipt, validate.TypeReceiptNo},
		{"body.date.fr", ocr.LangFrench, validate.TypeDate},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			r, ok := tpl.Field(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.lang, r.Language)
			assert.Equal(t, tt.typ, r.Type)
		})
	}
}

func TestParseKeepsHints(t *testing.T) {
	templates, err := Parse([]byte(receiptTemplate))
	require.NoError(t, err)

	r, ok := templates[0].Field("body.receipt_no")
	require.True(t, ok)
	require.NotNil(t, r.Hints.DPI)
	assert.Equal(t, 300, *r.Hints.DPI)
	assert.Nil(t, r.Hints.PSM)

	r, ok = templates[0].Field("header.commune.ar")
	require.True(t, ok)
	assert.Equal(t, "arabic", r.Hints.Lang)
}

func TestParseToleratesBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(receiptTemplate)...)
	templates, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "assoc_receipt", templates[0].ID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "malformed json",
			data:    `{"t": {`,
			wantErr: "template",
		},
		{
			name:    "not an object",
			data:    `[1, 2]`,
			wantErr: "expected",
		},
		{
			name:    "missing coordinate",
			data:    `{"t": {"regions": {"body": {"a": {"x": 0.1, "y": 0.1, "w": 0.2}}}}}`,
			wantErr: "missing x/y/w/h",
		},
		{
			name:    "box outside unit square",
			data:    `{"t": {"regions": {"body": {"a": {"x": 0.8, "y": 0.1, "w": 0.3, "h": 0.1}}}}}`,
			wantErr: "outside the unit square",
		},
		{
			name:    "negative coordinate",
			data:    `{"t": {"regions": {"body": {"a": {"x": -0.1, "y": 0.1, "w": 0.2, "h": 0.1}}}}}`,
			wantErr: "outside the unit square",
		},
		{
			name:    "duplicate field in section",
			data:    `{"t": {"regions": {"body": {"a": {"x": 0.1, "y": 0.1, "w": 0.2, "h": 0.1}, "a": {"x": 0.4, "y": 0.1, "w": 0.2, "h": 0.1}}}}}`,
			wantErr: `duplicate region "body.a"`,
		},
		{
			name:    "duplicate section",
			data:    `{"t": {"regions": {"body": {"a": {"x": 0.1, "y": 0.1, "w": 0.2, "h": 0.1}}, "body": {"a": {"x": 0.4, "y": 0.1, "w": 0.2, "h": 0.1}}}}}`,
			wantErr: `duplicate region "body.a"`,
		},
		{
			name:    "duplicate template id",
			data:    `{"t": {"regions": {"b": {"a": {"x": 0.1, "y": 0.1, "w": 0.2, "h": 0.1}}}}, "t": {"regions": {"b": {"a": {"x": 0.1, "y": 0.1, "w": 0.2, "h": 0.1}}}}}`,
			wantErr: `duplicate template "t"`,
		},
		{
			name:    "no regions",
			data:    `{"t": {"name": "empty"}}`,
			wantErr: "no regions declared",
		},
		{
			name:    "regions not an object",
			data:    `{"t": {"regions": [1, 2]}}`,
			wantErr: "expected",
		},
		{
			name:    "trailing data",
			data:    `{"t": {"regions": {"b": {"a": {"x": 0.1, "y": 0.1, "w": 0.2, "h": 0.1}}}}} extra`,
			wantErr: "trailing data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(receiptTemplate), 0o644))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	tpl, err := store.Get("assoc_receipt")
	require.NoError(t, err)
	assert.Len(t, tpl.Regions, 6)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Path, "nope.json")
}

func TestLoadBadFileWrapsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"t": {"regions": {}}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(receiptTemplate), 0o644))

	other := `{"cin_front": {"regions": {"body": {"cin": {"x": 0.1, "y": 0.1, "w": 0.5, "h": 0.1}}}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(other), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	store, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"assoc_receipt", "cin_front"}, store.List())
}

func TestLoadDirDuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(receiptTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(receiptTemplate), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, `duplicate template "assoc_receipt"`)
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore()
	_, err := store.Get("ghost")
	require.Error(t, err)

	var unknown *UnknownTemplateError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.ID)
}

func TestStoreInfo(t *testing.T) {
	templates, err := Parse([]byte(receiptTemplate))
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, store.Add(templates[0]))

	info, err := store.Info("assoc_receipt")
	require.NoError(t, err)
	assert.Equal(t, "assoc_receipt", info.ID)
	assert.Equal(t, "1.0", info.Version)
	assert.Equal(t, 6, info.RegionCount)
	assert.Equal(t, []string{"title", "header", "body"}, info.Sections)

	_, err = store.Info("ghost")
	assert.Error(t, err)
}
