package workers

import (
	"context"
	"time"

	"hermes/internal/services/prices"
)

// PriceBackfillWorker fills stock price rows for article publish dates that
// have none yet, so new articles become usable by the correlation pipeline
// without a manual backfill.
type PriceBackfillWorker struct {
	*BaseWorker
	svc *prices.Service
}

// NewPriceBackfillWorker creates a price backfill worker
func NewPriceBackfillWorker(svc *prices.Service, interval time.Duration, enabled bool) *PriceBackfillWorker {
	return &PriceBackfillWorker{
		BaseWorker: NewBaseWorker("price_backfill", interval, enabled),
		svc:        svc,
	}
}

// Run executes one backfill pass
func (w *PriceBackfillWorker) Run(ctx context.Context) error {
	start := time.Now()

	result, err := w.svc.BackfillMissing(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	w.RecordRun(time.Since(start))
	if result.Missing > 0 {
		w.Log().Infow("Backfill iteration complete",
			"missing", result.Missing,
			"filled", result.Filled,
			"no_quote", result.NoQuote,
			"failed", result.Failed,
		)
	}
	return nil
}
