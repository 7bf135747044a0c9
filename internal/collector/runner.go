package collector

import (
	"context"
	"time"

	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/metrics"
)

type outcome struct {
	source model.Source
	result *Result
}

// Run drives all collectors concurrently and waits for every one to finish.
// Each collector call carries its own timeout; a collector that times out or
// fails outright contributes an empty failed result and a warning instead of
// aborting the run. Cancellation of ctx aborts the whole run: no partial
// results are returned in that case.
func Run(ctx context.Context, timeout time.Duration, log *logger.Logger, collectors ...Collector) (map[model.Source]*Result, error) {
	results := make(map[model.Source]*Result, len(collectors))
	if len(collectors) == 0 {
		return results, nil
	}

	ch := make(chan outcome, len(collectors))
	for _, c := range collectors {
		go func(c Collector) {
			ch <- collectOne(ctx, timeout, log, c)
		}(c)
	}

	for range collectors {
		o := <-ch
		results[o.source] = o.result
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err)
	}

	return results, nil
}

func collectOne(ctx context.Context, timeout time.Duration, log *logger.Logger, c Collector) outcome {
	source := c.Source()
	slog := log.With("source", string(source))

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := c.Collect(cctx)
	elapsed := time.Since(start)

	if err != nil || ctx.Err() != nil {
		// On timeout or total failure the partial results are discarded;
		// the run proceeds with the remaining sources.
		cause := err
		if cause == nil {
			cause = ctx.Err()
		}
		slog.WithError(cause).Error("source collection failed")
		metrics.ObserveCollection(string(source), "failed", elapsed, 0)
		return outcome{source: source, result: &Result{
			Source:       source,
			Completeness: model.CompletenessFailed,
			Warnings: []model.Warning{{
				Component: model.ComponentCollector,
				ID:        string(source),
				Cause:     errors.Collection(string(source), cause, "collection failed").Error(),
			}},
		}}
	}

	if result.Completeness == "" {
		result.Completeness = model.CompletenessSuccess
	}
	slog.WithFields(map[string]interface{}{
		"resources":    len(result.Resources),
		"warnings":     len(result.Warnings),
		"completeness": string(result.Completeness),
		"elapsed":      elapsed.String(),
	}).Info("source collection completed")
	metrics.ObserveCollection(string(source), string(result.Completeness), elapsed, len(result.Resources))

	return outcome{source: source, result: result}
}
