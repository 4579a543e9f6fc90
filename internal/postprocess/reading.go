package postprocess

import (
	"sort"
	"strings"

	"github.com/atlasocr/wasl/internal/ocr"
)

// Lines groups tokens into reading-order lines: lines top to bottom, tokens
// left to right within a line, except that a line whose tokens are mostly
// Arabic is read right to left. Tokens land on the same line when they sit
// at the same vertical position relative to their own height.
func Lines(tokens []ocr.Token) [][]ocr.Token {
	if len(tokens) == 0 {
		return nil
	}

	buckets := make(map[int][]ocr.Token)
	for _, t := range tokens {
		key := t.Box.Y / max(1, t.Box.H)
		buckets[key] = append(buckets[key], t)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	lines := make([][]ocr.Token, 0, len(keys))
	for _, k := range keys {
		line := buckets[k]
		arabic := 0
		for _, t := range line {
			if strings.HasPrefix(strings.ToLower(t.Lang), "arab") {
				arabic++
			}
		}
		rtl := 2*arabic > len(line)
		sort.SliceStable(line, func(i, j int) bool {
			if rtl {
				return line[i].Box.X > line[j].Box.X
			}
			return line[i].Box.X < line[j].Box.X
		})
		lines = append(lines, line)
	}
	return lines
}

// SortForReading flattens Lines into a single reading-order token slice.
func SortForReading(tokens []ocr.Token) []ocr.Token {
	lines := Lines(tokens)
	if lines == nil {
		return nil
	}
	out := make([]ocr.Token, 0, len(tokens))
	for _, line := range lines {
		out = append(out, line...)
	}
	return out
}

// RenderText assembles tokens into page text: words joined with spaces,
// lines with newlines, in reading order.
func RenderText(tokens []ocr.Token) string {
	var lines []string
	for _, line := range Lines(tokens) {
		words := make([]string, 0, len(line))
		for _, t := range line {
			if text := strings.TrimSpace(t.Text); text != "" {
				words = append(words, text)
			}
		}
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return strings.Join(lines, "\n")
}
