package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		field    string
		explicit string
		want     Language
	}{
		{"explicit wins", "body", "receipt_no", "french", LangFrench},
		{"explicit custom key", "body", "notes", "spanish", Language("spanish")},
		{"receipt by name", "body", "receipt_no", "", LangReceipt},
		{"title ar", "title", "ar", "", LangArabic},
		{"arabic runes in name", "header", "اسم الجمعية", "", LangArabic},
		{"ar outside title", "header", "ar", "", LangFrench},
		{"default french", "body", "date.fr", "", LangFrench},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.section, tt.field, tt.explicit))
		})
	}
}

func TestScriptHelpers(t *testing.T) {
	assert.True(t, IsArabicText("جماعة الدار البيضاء"))
	assert.True(t, IsArabicText("mixed جماعة"))
	assert.False(t, IsArabicText("Commune de Casablanca"))
	assert.False(t, IsArabicText("2024/1234"))

	assert.True(t, IsLatinText("Commune"))
	assert.False(t, IsLatinText("جماعة"))
	assert.False(t, IsLatinText("2024/1234"))
}
