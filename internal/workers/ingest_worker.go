package workers

import (
	"context"
	"time"

	"hermes/internal/services/ingest"
)

// IngestWorker periodically fetches and analyzes a batch of news articles
type IngestWorker struct {
	*BaseWorker
	svc *ingest.Service
}

// NewIngestWorker creates an ingest worker
func NewIngestWorker(svc *ingest.Service, interval time.Duration, enabled bool) *IngestWorker {
	return &IngestWorker{
		BaseWorker: NewBaseWorker("news_ingest", interval, enabled),
		svc:        svc,
	}
}

// Run executes one ingest batch
func (w *IngestWorker) Run(ctx context.Context) error {
	start := time.Now()

	result, err := w.svc.RunBatch(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	w.RecordRun(time.Since(start))
	w.Log().Infow("Ingest iteration complete",
		"batch_id", result.BatchID.String(),
		"fetched", result.Fetched,
		"analyzed", result.Analyzed,
		"skipped", result.Skipped,
	)
	return nil
}
