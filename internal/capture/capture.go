// Package capture runs the scheduled lead-capture job: query the lead
// source, qualify, and deliver the ranked survivors to the sink.
package capture

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/qualify"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/resilience"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/leadsource"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/sheets"
)

const (
	// DefaultBatchSize is the sink append batch size.
	DefaultBatchSize = 300
	// DefaultBatchDelay paces sink appends between batches.
	DefaultBatchDelay = 3 * time.Second

	// sourceRateLimit caps lead source queries per window across runs.
	sourceRateLimit  = 10
	sourceRateWindow = time.Minute
)

// Report summarizes one capture run.
type Report struct {
	Fetched   int `json:"fetched"`
	Qualified int `json:"qualified"`
	Appended  int `json:"appended"`
	Batches   int `json:"batches"`
}

// Job is one configured capture pipeline. Zero-value batch settings fall
// back to the defaults.
type Job struct {
	Source    leadsource.Client
	Qualifier *qualify.Qualifier
	Sink      sheets.Sink
	Executor  *resilience.Executor
	Config    model.CaptureConfig

	BatchSize  int
	BatchDelay time.Duration

	// sleep is swapped in tests to avoid real batch delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewJob wires a capture pipeline with default batching.
func NewJob(source leadsource.Client, qualifier *qualify.Qualifier, sink sheets.Sink, exec *resilience.Executor, cfg model.CaptureConfig) *Job {
	return &Job{
		Source:    source,
		Qualifier: qualifier,
		Sink:      sink,
		Executor:  exec,
		Config:    cfg,
	}
}

// Run executes one capture cycle. The source query is rate limited and
// retried; sink appends go out in paced batches so the sheet backend is
// not flooded. Terminal errors surface to the caller.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	batchSize := j.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchDelay := j.BatchDelay
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}
	sleep := j.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	log := zap.L().With(
		zap.String("cnae", j.Config.CNAE),
		zap.Int("window_days", j.Config.WindowDays),
		zap.String("uf", j.Config.UFFilter),
	)
	log.Info("capture run started")

	if err := j.Executor.CheckRateLimit(ctx, "leadsource-query", sourceRateLimit, sourceRateWindow); err != nil {
		return nil, eris.Wrap(err, "capture: rate limit wait")
	}

	leads, err := resilience.ExecuteVal(ctx, j.Executor, "leadsource-query", func(ctx context.Context) ([]model.Lead, error) {
		return j.Source.Query(ctx, j.Config)
	})
	if err != nil {
		return nil, eris.Wrap(err, "capture: query lead source")
	}

	ranked := j.Qualifier.RankByScore(leads)
	var qualified []model.Lead
	for _, s := range ranked {
		if s.Qualification.Qualified {
			qualified = append(qualified, s.Lead)
		}
	}
	log.Info("leads qualified",
		zap.Int("fetched", len(leads)),
		zap.Int("qualified", len(qualified)))

	report := &Report{Fetched: len(leads), Qualified: len(qualified)}
	for start := 0; start < len(qualified); start += batchSize {
		end := min(start+batchSize, len(qualified))

		if report.Batches > 0 {
			if err := sleep(ctx, batchDelay); err != nil {
				return report, eris.Wrap(err, "capture: batch delay")
			}
		}

		batch := qualified[start:end]
		if err := j.Sink.Append(ctx, batch); err != nil {
			return report, eris.Wrapf(err, "capture: append batch %d", report.Batches+1)
		}
		report.Batches++
		report.Appended += len(batch)
		log.Info("batch appended",
			zap.Int("batch", report.Batches),
			zap.Int("size", len(batch)))
	}

	log.Info("capture run finished",
		zap.Int("appended", report.Appended),
		zap.Int("batches", report.Batches))
	return report, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
