package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// Outcome is the result of one request of a batch. Exactly one of Result and
// Err is set.
type Outcome struct {
	Index  int
	Result *Result
	Err    error
}

// EvaluateBatch evaluates every request with bounded concurrency. A failed
// request does not stop the others; outcomes are returned in request order.
func (e *Evaluator) EvaluateBatch(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.cfg.BatchConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := e.Evaluate(ctx, req)
			outcomes[i] = Outcome{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	e.logger.Info("batch evaluation finished",
		zap.Int("requests", len(reqs)),
		zap.Int("failed", failed),
	)

	return outcomes
}
