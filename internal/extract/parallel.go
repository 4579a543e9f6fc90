package extract

import (
	"context"
	"image"
	"sync"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/utils"
)

// regionJob is one region recognition unit of work.
type regionJob struct {
	index  int
	region template.Region
}

// regionOutcome is one region's recognition output, captured in its slot so
// a failure never crosses into sibling fields.
type regionOutcome struct {
	box    utils.Box
	tokens []ocr.Token
	err    error
}

// recognizeRegions runs the per-region recognition phase over a bounded
// worker pool and joins before returning. Workers share only the read-only
// template regions and source image; each writes its own outcome slot.
// Cancellation marks the remaining slots with the context error.
func (e *Engine) recognizeRegions(ctx context.Context, img image.Image, regions []template.Region) []regionOutcome {
	outcomes := make([]regionOutcome, len(regions))

	workers := min(e.cfg.Workers, len(regions))
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan regionJob, len(regions))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					outcomes[job.index].err = ctx.Err()
				default:
					outcomes[job.index] = e.recognizeRegion(ctx, img, job.region)
				}
			}
		}()
	}

	for i, r := range regions {
		jobs <- regionJob{index: i, region: r}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// recognizeRegion locates, crops and recognizes a single region: locate and
// clamp the box, crop, apply the region's scale hint, resolve the engine for
// the region's language, dispatch once.
func (e *Engine) recognizeRegion(ctx context.Context, img image.Image, region template.Region) regionOutcome {
	bounds := img.Bounds()
	box := region.Locate(bounds.Dx(), bounds.Dy())

	crop := utils.CropBox(img, box)
	if f := region.Hints.ScaleFactor(); f != 1.0 {
		crop = utils.Scale(crop, f)
	}

	rec, err := e.engines.Resolve(region.Language)
	if err != nil {
		return regionOutcome{box: box, err: err}
	}

	tokens, err := rec.Recognize(ctx, crop, region.Hints)
	if err != nil {
		return regionOutcome{box: box, err: err}
	}
	return regionOutcome{box: box, tokens: tokens}
}
