package extract

import (
	"context"
	"image"

	"github.com/atlasocr/wasl/internal/common"
	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/postprocess"
	"github.com/atlasocr/wasl/internal/utils"
)

// ScanResult is the outcome of an auto-layout scan: the reconciled token
// trail per script, the page text in reading order, and the document-type
// guess. Token boxes are in page coordinates.
type ScanResult struct {
	Raw     map[string][]ocr.Token `json:"raw"`
	Text    string                 `json:"text"`
	DocType postprocess.DocType    `json:"doc_type"`
	AvgConf map[string]float64     `json:"avg_conf"`
}

// ScanImage recognizes a page without a template: the layout classifier
// proposes per-script regions, each script's engine reads its own regions
// (or the full page when the classifier found none for it), results are
// script-filtered and overlap-reconciled, and the merged tokens are
// assembled into reading-order text. Unlike template extraction, a backend
// failure here aborts the scan.
func (e *Engine) ScanImage(ctx context.Context, img image.Image) (*ScanResult, error) {
	if img == nil {
		return nil, utils.ErrNilImage
	}

	timer := common.NewNamedTimer("scan")

	lay, err := e.classifier.Classify(img)
	if err != nil {
		return nil, err
	}

	arabic, err := e.scanLanguage(ctx, img, ocr.LangArabic, lay.Arabic)
	if err != nil {
		return nil, err
	}
	french, err := e.scanLanguage(ctx, img, ocr.LangFrench, lay.French)
	if err != nil {
		return nil, err
	}

	arabic = ocr.FilterScript(arabic, ocr.LangArabic)
	french = ocr.FilterScript(french, ocr.LangFrench)
	arabic, french = ocr.ResolveOverlaps(arabic, french)

	merged := make([]ocr.Token, 0, len(arabic)+len(french))
	merged = append(merged, arabic...)
	merged = append(merged, french...)

	res := &ScanResult{
		Raw: map[string][]ocr.Token{
			string(ocr.LangArabic): arabic,
			string(ocr.LangFrench): french,
		},
		Text:    postprocess.RenderText(merged),
		DocType: postprocess.Summarize(merged).DocType,
		AvgConf: map[string]float64{
			string(ocr.LangArabic): meanConfidence(arabic),
			string(ocr.LangFrench): meanConfidence(french),
		},
	}

	e.logger.Info("scan complete",
		"arabic_tokens", len(arabic),
		"french_tokens", len(french),
		"arabic_conf", res.AvgConf[string(ocr.LangArabic)],
		"french_conf", res.AvgConf[string(ocr.LangFrench)],
		"doc_type", res.DocType,
		"duration_ms", timer.Stop().Milliseconds())
	return res, nil
}

// ScanFile loads an image from disk and scans it.
func (e *Engine) ScanFile(ctx context.Context, path string) (*ScanResult, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return e.ScanImage(ctx, img)
}

// scanLanguage runs one script's engine over its proposed regions, mapping
// crop-local boxes back to page coordinates. With no proposed regions the
// whole page is read in one pass.
func (e *Engine) scanLanguage(ctx context.Context, img image.Image, lang ocr.Language, boxes []utils.Box) ([]ocr.Token, error) {
	rec, err := e.engines.Resolve(lang)
	if err != nil {
		return nil, err
	}

	if len(boxes) == 0 {
		return rec.Recognize(ctx, img, ocr.Hints{})
	}

	var out []ocr.Token
	for _, box := range boxes {
		crop := utils.CropBox(img, box)
		tokens, err := rec.Recognize(ctx, crop, ocr.Hints{})
		if err != nil {
			return nil, err
		}
		out = append(out, ocr.OffsetTokens(tokens, box.X, box.Y)...)
	}
	return out, nil
}

// meanConfidence averages token confidences; empty input yields zero.
func meanConfidence(tokens []ocr.Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var total float64
	for _, t := range tokens {
		total += t.Confidence
	}
	return total / float64(len(tokens))
}
