package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/ocr"
)

func texts(tokens []ocr.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestSortForReadingLatinLine(t *testing.T) {
	tokens := []ocr.Token{
		tok("Maroc", 90, 200, 10, 60, 20, "french"),
		tok("Royaume", 90, 10, 10, 90, 20, "french"),
		tok("du", 90, 110, 10, 30, 20, "french"),
	}

	got := SortForReading(tokens)

	assert.Equal(t, []string{"Royaume", "du", "Maroc"}, texts(got))
}

func TestSortForReadingArabicLineRightToLeft(t *testing.T) {
	tokens := []ocr.Token{
		tok("المغربية", 88, 200, 10, 70, 20, "arabic"),
		tok("المملكة", 88, 300, 10, 80, 20, "arabic"),
	}

	got := SortForReading(tokens)

	assert.Equal(t, []string{"المملكة", "المغربية"}, texts(got))
}

func TestSortForReadingBucketsLinesByHeight(t *testing.T) {
	tokens := []ocr.Token{
		// Second line, keys 40/20 and 45/20 both bucket to 2.
		tok("ligne2b", 80, 150, 45, 60, 20, "french"),
		tok("ligne2a", 80, 10, 40, 60, 20, "french"),
		// First line, slight vertical jitter stays in bucket 0.
		tok("ligne1b", 80, 150, 15, 60, 20, "french"),
		tok("ligne1a", 80, 10, 10, 60, 20, "french"),
	}

	got := SortForReading(tokens)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"ligne1a", "ligne1b", "ligne2a", "ligne2b"}, texts(got))
}

func TestSortForReadingMajorityDecidesDirection(t *testing.T) {
	t.Run("arabic majority reads right to left", func(t *testing.T) {
		tokens := []ocr.Token{
			tok("وصل", 85, 100, 10, 50, 20, "arabic"),
			tok("n7", 85, 10, 10, 30, 20, "french"),
			tok("إيداع", 85, 200, 10, 60, 20, "arabic"),
		}

		got := SortForReading(tokens)

		assert.Equal(t, []string{"إيداع", "وصل", "n7"}, texts(got))
	})

	t.Run("even split stays left to right", func(t *testing.T) {
		tokens := []ocr.Token{
			tok("جماعة", 85, 200, 10, 60, 20, "arabic"),
			tok("Commune", 85, 10, 10, 80, 20, "french"),
		}

		got := SortForReading(tokens)

		assert.Equal(t, []string{"Commune", "جماعة"}, texts(got))
	})
}

func TestSortForReadingZeroHeightBoxes(t *testing.T) {
	tokens := []ocr.Token{
		tok("b", 70, 50, 3, 20, 0, "french"),
		tok("a", 70, 10, 2, 20, 0, "french"),
	}

	got := SortForReading(tokens)

	// Height floors at one, so the keys stay distinct lines.
	assert.Equal(t, []string{"a", "b"}, texts(got))
}

func TestSortForReadingEmpty(t *testing.T) {
	assert.Nil(t, SortForReading(nil))
}

func TestRenderText(t *testing.T) {
	tokens := []ocr.Token{
		tok("du", 90, 110, 10, 30, 20, "french"),
		tok("Royaume", 90, 10, 10, 90, 20, "french"),
		tok("المغربية", 88, 200, 50, 70, 20, "arabic"),
		tok("المملكة", 88, 300, 50, 80, 20, "arabic"),
	}

	got := RenderText(tokens)

	assert.Equal(t, "Royaume du\nالمملكة المغربية", got)
}

func TestRenderTextEmpty(t *testing.T) {
	assert.Equal(t, "", RenderText(nil))
}
