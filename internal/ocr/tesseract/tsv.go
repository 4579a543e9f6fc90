package tesseract

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

// TSV column layout produced by tesseract's tsv config:
// level page_num block_num par_num line_num word_num left top width height conf text
const (
	colLevel   = 0
	colPage    = 1
	colLeft    = 6
	colTop     = 7
	colWidth   = 8
	colHeight  = 9
	colConf    = 10
	colText    = 11
	tsvColumns = 12

	wordLevel = 5
)

// parseTSV extracts word rows from tesseract TSV output. Page, block, para
// and line rows carry a -1 confidence and are skipped, as are words with an
// unusable confidence or empty text. Boxes are local to the recognized
// image, which for region dispatch is the crop.
func parseTSV(data string) []ocr.Token {
	var tokens []ocr.Token
	sc := bufio.NewScanner(strings.NewReader(data))
	header := true
	for sc.Scan() {
		line := sc.Text()
		if header {
			header = false
			continue
		}
		if line == "" {
			continue
		}
		cols := strings.SplitN(line, "\t", tsvColumns)
		if len(cols) < tsvColumns {
			continue
		}
		if level, err := strconv.Atoi(cols[colLevel]); err != nil || level != wordLevel {
			continue
		}
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[colText])
		if text == "" {
			continue
		}
		page := atoiOr(cols[colPage], 1)
		tokens = append(tokens, ocr.Token{
			Text:       text,
			Confidence: conf,
			Box: utils.NewBox(
				atoiOr(cols[colLeft], 0),
				atoiOr(cols[colTop], 0),
				atoiOr(cols[colWidth], 1),
				atoiOr(cols[colHeight], 1),
			),
			Page: page,
		})
	}
	return tokens
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
