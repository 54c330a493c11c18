package effect

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/openvax/varcode-go/internal/variant"
)

// WorkItem is one variant queued for classification.
type WorkItem struct {
	Seq     int
	Variant *variant.Variant
}

// WorkResult holds the classification output for a single variant across
// all of its overlapping transcripts.
type WorkResult struct {
	Seq      int
	Variant  *variant.Variant
	Effects  []*Effect
	Failures []Failure
	Err      error // provider lookup error; per-pair failures go in Failures
}

// Failure is a typed failure entry for one (variant, transcript) pair.
// A failure never aborts sibling pairs: a batch run completes and reports
// the full manifest alongside the successful effects.
type Failure struct {
	Variant      *variant.Variant
	TranscriptID string
	Err          error
}

// classifyVariant classifies a variant against every transcript it
// overlaps, collecting per-pair failures instead of stopping at the first.
func (c *Classifier) classifyVariant(v *variant.Variant) ([]*Effect, []Failure, error) {
	transcripts, err := v.OverlappingTranscripts(c.provider)
	if err != nil {
		return nil, nil, err
	}

	var effects []*Effect
	var failures []Failure
	for _, t := range transcripts {
		e, err := c.Classify(v, t)
		if err != nil {
			failures = append(failures, Failure{Variant: v, TranscriptID: t.ID, Err: err})
			continue
		}
		effects = append(effects, e)
	}
	return effects, failures, nil
}

// ClassifyCollection classifies every variant in the collection against all
// of its overlapping transcripts, concatenating the resulting effects in
// (variant order, transcript order) regardless of worker completion order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Classifier) ClassifyCollection(vc *variant.Collection, workers int) (*Collection, []Failure) {
	items := make(chan WorkItem, 2*runtime.NumCPU())

	go func() {
		defer close(items)
		for i, v := range vc.Variants() {
			items <- WorkItem{Seq: i, Variant: v}
		}
	}()

	results := c.ParallelClassify(items, workers)

	var effects []*Effect
	var failures []Failure

	_ = OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			c.logger.Warn("transcript lookup failed",
				zap.String("contig", r.Variant.Contig),
				zap.Int64("pos", r.Variant.Pos),
				zap.Error(r.Err))
			failures = append(failures, Failure{Variant: r.Variant, Err: r.Err})
			return nil
		}
		for _, f := range r.Failures {
			c.logger.Warn("classification failed",
				zap.String("contig", f.Variant.Contig),
				zap.Int64("pos", f.Variant.Pos),
				zap.String("transcript", f.TranscriptID),
				zap.Error(f.Err))
		}
		effects = append(effects, r.Effects...)
		failures = append(failures, r.Failures...)
		return nil
	})

	return &Collection{effects: effects}, failures
}

// ParallelClassify classifies work items using a bounded pool of workers.
// Results arrive on the returned channel in completion order; use
// OrderedCollect to consume them in sequence-number order.
func (c *Classifier) ParallelClassify(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				effects, failures, err := c.classifyVariant(item.Variant)
				results <- WorkResult{
					Seq:      item.Seq,
					Variant:  item.Variant,
					Effects:  effects,
					Failures: failures,
					Err:      err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected sequence number
// arrives. Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
