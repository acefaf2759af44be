package translate

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// ItemResult is the outcome of translating one item. Exactly one of
// Translation and Err is set. Text is the rendered item, or the failure
// block when Err is set.
type ItemResult struct {
	ID          string
	Translation *Translation
	Err         error
	Text        string
	// Annotations holds the item's annotations, including the
	// conversion-failed annotation of a failed item.
	Annotations []Annotation
}

// Failure names one item that could not be converted.
type Failure struct {
	ID     string
	Reason string
}

// BatchResult summarises one batch run. Items keeps input order and only
// holds items that were scheduled before cancellation.
type BatchResult struct {
	RunID     uuid.UUID
	Items     []ItemResult
	Seen      int
	Converted int
	Failed    int
	Failures  []Failure
}

// TranslateBatch translates items on up to workers goroutines against one
// registry snapshot.
//
// Precondition: reg must be non-nil; workers < 1 is treated as 1.
// Postcondition: every scheduled item appears in the result exactly once, as
// converted or failed. A failed item never stops the batch. When ctx is
// cancelled no further items are scheduled and ctx.Err() is returned together
// with the partial result.
func (t *Translator) TranslateBatch(ctx context.Context, reg *mapping.Registry, items []*SourceItem, workers int) (*BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	res := &BatchResult{RunID: uuid.New()}
	log := t.logger.With(zap.String("run_id", res.RunID.String()), zap.String("schema", t.schema.Name))

	slots := make([]*ItemResult, len(items))
	var seen, converted, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			seen.Add(1)
			r := t.translateOne(reg, item, log)
			if r.Err != nil {
				failed.Add(1)
			} else {
				converted.Add(1)
			}
			slots[i] = r
			return nil
		})
	}
	_ = g.Wait()

	res.Seen = int(seen.Load())
	res.Converted = int(converted.Load())
	res.Failed = int(failed.Load())
	res.Items = make([]ItemResult, 0, res.Seen)
	for _, r := range slots {
		if r == nil {
			continue
		}
		res.Items = append(res.Items, *r)
		if r.Err != nil {
			res.Failures = append(res.Failures, Failure{ID: r.ID, Reason: r.Err.Error()})
		}
	}

	log.Info("batch translated",
		zap.Int("seen", res.Seen),
		zap.Int("converted", res.Converted),
		zap.Int("failed", res.Failed),
	)
	return res, ctx.Err()
}

func (t *Translator) translateOne(reg *mapping.Registry, item *SourceItem, log *zap.Logger) *ItemResult {
	tr, err := t.Translate(reg, item)
	if err != nil {
		log.Warn("item conversion failed",
			zap.String("item", item.SourceID),
			zap.Error(err),
		)
		return &ItemResult{
			ID:          item.SourceID,
			Err:         err,
			Text:        RenderFailure(item.SourceID, err),
			Annotations: []Annotation{Failed(item.SourceID, err)},
		}
	}
	return &ItemResult{
		ID:          item.SourceID,
		Translation: tr,
		Text:        RenderItem(tr),
		Annotations: tr.Annotations,
	}
}
