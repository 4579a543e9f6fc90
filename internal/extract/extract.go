package extract

import (
	"context"
	"image"

	"github.com/atlasocr/wasl/internal/common"
	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

// ExtractImage runs one template extraction over img. Region recognition is
// parallel with a join barrier; candidate resolution is sequential and
// deterministic. A failing region surfaces in its own field slot while its
// siblings complete; the only run-level failures are an unknown template id,
// a nil image and context cancellation.
func (e *Engine) ExtractImage(ctx context.Context, img image.Image, templateID string) (*Result, error) {
	if img == nil {
		return nil, utils.ErrNilImage
	}
	tpl, err := e.store.Get(templateID)
	if err != nil {
		return nil, err
	}

	timer := common.NewNamedTimer("extract")

	outcomes := e.recognizeRegions(ctx, img, tpl.Regions)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Metadata: Metadata{
			TemplateName:   tpl.Name,
			TemplateNameAr: tpl.NameAr,
			Version:        tpl.Version,
			RequiredFields: tpl.RequiredFields,
		},
		Fields: make(map[string]FieldResult, len(tpl.Regions)),
		Raw:    make(map[string][]ocr.Token),
	}

	failures := 0
	for i, region := range tpl.Regions {
		out := outcomes[i]
		key := region.Key()

		if out.err != nil {
			failures++
			res.Fields[key] = FieldResult{
				Type:  region.Type,
				Lang:  region.Language,
				BBox:  out.box,
				Error: out.err.Error(),
			}
			e.logger.Warn("field recognition failed",
				"template", templateID, "field", key, "error", out.err)
			continue
		}

		res.Fields[key] = resolveField(out.tokens, region, out.box)

		// The raw trail keys every attempted language, empty or not.
		lang := string(region.Language)
		if res.Raw[lang] == nil {
			res.Raw[lang] = []ocr.Token{}
		}
		res.Raw[lang] = append(res.Raw[lang], out.tokens...)
	}

	e.logger.Info("extraction complete",
		"template", templateID,
		"fields", len(tpl.Regions),
		"failures", failures,
		"duration_ms", timer.Stop().Milliseconds())
	return res, nil
}

// ExtractFile loads an image from disk and extracts it.
func (e *Engine) ExtractFile(ctx context.Context, path, templateID string) (*Result, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractImage(ctx, img, templateID)
}
