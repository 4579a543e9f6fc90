package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlasocr/wasl/internal/utils"
)

func TestRegionKey(t *testing.T) {
	r := Region{Section: "header", Name: "commune.fr"}
	assert.Equal(t, "header.commune.fr", r.Key())
}

func TestRegionLocate(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		width  int
		height int
		want   utils.Box
	}{
		{
			name:   "full page",
			region: Region{X: 0, Y: 0, W: 1, H: 1},
			width:  1600,
			height: 1100,
			want:   utils.NewBox(0, 0, 1600, 1100),
		},
		{
			name:   "interior box rounds to nearest pixel",
			region: Region{X: 0.05, Y: 0.04, W: 0.9, H: 0.07},
			width:  1600,
			height: 1100,
			want:   utils.NewBox(80, 44, 1440, 77),
		},
		{
			name:   "fractional product rounds not truncates",
			region: Region{X: 0.336, Y: 0, W: 0.5, H: 0.5},
			width:  100,
			height: 100,
			want:   utils.NewBox(34, 0, 50, 50),
		},
		{
			name:   "edge touching region stays inside the page",
			region: Region{X: 0.98, Y: 0.98, W: 0.02, H: 0.02},
			width:  10,
			height: 10,
			want:   utils.NewBox(9, 9, 1, 1),
		},
		{
			name:   "degenerate zero size yields one pixel",
			region: Region{X: 0.5, Y: 0.5, W: 0, H: 0},
			width:  200,
			height: 200,
			want:   utils.NewBox(100, 100, 1, 1),
		},
		{
			name:   "oversized width clamps to remaining page",
			region: Region{X: 0.5, Y: 0.1, W: 0.6, H: 0.1},
			width:  100,
			height: 50,
			want:   utils.NewBox(50, 5, 50, 5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.region.Locate(tt.width, tt.height)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplateFieldLookup(t *testing.T) {
	tpl := &Template{
		Regions: []Region{
			{Section: "title", Name: "fr"},
			{Section: "body", Name: "receipt_no"},
		},
	}

	r, ok := tpl.Field("body.receipt_no")
	assert.True(t, ok)
	assert.Equal(t, "receipt_no", r.Name)

	_, ok = tpl.Field("body.missing")
	assert.False(t, ok)
}

func TestTemplateSections(t *testing.T) {
	tpl := &Template{
		Regions: []Region{
			{Section: "title", Name: "fr"},
			{Section: "title", Name: "ar"},
			{Section: "header", Name: "commune.fr"},
			{Section: "body", Name: "date.fr"},
			{Section: "header", Name: "commune.ar"},
		},
	}
	assert.Equal(t, []string{"title", "header", "body"}, tpl.Sections())
}
