// Package engine orchestrates one correlation run: concurrent collection,
// matching, drift detection, and report assembly.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/infrascope/infrascope/internal/collector"
	azurecollector "github.com/infrascope/infrascope/internal/collector/azure"
	"github.com/infrascope/infrascope/internal/collector/f5xc"
	"github.com/infrascope/infrascope/internal/collector/terraform"
	"github.com/infrascope/infrascope/internal/config"
	"github.com/infrascope/infrascope/internal/drift"
	"github.com/infrascope/infrascope/internal/graph"
	"github.com/infrascope/infrascope/internal/matcher"
	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/metrics"
)

// Engine runs point-in-time correlation over the configured sources.
// It holds no state between runs; every Run builds a fresh Report.
type Engine struct {
	cfg        *config.Config
	logger     *logger.Logger
	collectors []collector.Collector
	matcher    *matcher.Engine
	detector   *drift.Detector
}

// New creates an engine from validated configuration. Configuration problems
// are fatal and reported before any collection starts.
func New(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var collectors []collector.Collector
	if cfg.Terraform.Enabled {
		collectors = append(collectors, terraform.New(terraform.Config{
			StatePath: cfg.Terraform.StatePath,
			ConfigDir: cfg.Terraform.ConfigDir,
		}, cfg.Collection.Retry, log))
	}
	if cfg.Azure.Enabled {
		azc, err := azurecollector.New(azurecollector.Config{
			SubscriptionID: cfg.Azure.SubscriptionID,
			TenantID:       cfg.Azure.TenantID,
			ClientID:       cfg.Azure.ClientID,
			ClientSecret:   cfg.Azure.ClientSecret,
			ResourceGroups: cfg.Azure.ResourceGroups,
			Types:          cfg.Azure.Types,
			TagName:        cfg.Azure.TagName,
			TagValue:       cfg.Azure.TagValue,
		}, cfg.Collection.Retry, log)
		if err != nil {
			return nil, errors.Configurationf("azure source: %v", err)
		}
		collectors = append(collectors, azc)
	}
	if cfg.Platform.Enabled {
		collectors = append(collectors, f5xc.New(f5xc.Config{
			Tenant:            cfg.Platform.Tenant,
			BaseURL:           cfg.Platform.BaseURL,
			APIToken:          cfg.Platform.APIToken,
			Namespace:         cfg.Platform.Namespace,
			RequestsPerSecond: cfg.Platform.RequestsPerSecond,
		}, cfg.Collection.Retry, log))
	}

	return NewWithCollectors(cfg, log, collectors...), nil
}

// NewWithCollectors creates an engine over an explicit collector set. The
// caller is responsible for having validated cfg.
func NewWithCollectors(cfg *config.Config, log *logger.Logger, collectors ...collector.Collector) *Engine {
	e := &Engine{
		cfg:        cfg,
		logger:     log.With("component", "engine"),
		collectors: collectors,
		matcher: matcher.NewEngine(
			matcher.DefaultStrategies(cfg.Matching.TagKeys),
			cfg.Matching.MinConfidence,
			log,
		),
	}
	if cfg.Drift.Enabled {
		e.detector = drift.New(cfg.DriftDetectorConfig(), log)
	}
	return e
}

// Run executes one correlation run. It returns an error only for
// cancellation; source failures degrade the report and are recorded as
// warnings with a per-source completeness status.
func (e *Engine) Run(ctx context.Context) (*graph.Report, error) {
	start := time.Now()
	e.logger.WithFields(map[string]interface{}{
		"sources": len(e.collectors),
	}).Info("correlation run started")

	results, err := collector.Run(ctx, e.cfg.Collection.Timeout, e.logger, e.collectors...)
	if err != nil {
		return nil, err
	}

	resources, warnings, completeness := e.merge(results)

	relationships, matchWarnings := e.matcher.Match(resources)
	warnings = append(warnings, matchWarnings...)

	var findings []model.DriftFinding
	if e.detector != nil {
		byKey := make(map[model.Key]*model.Resource, len(resources))
		for i := range resources {
			byKey[resources[i].Key] = &resources[i]
		}
		findings = e.detector.Detect(byKey, relationships)
	}

	// A cancellation observed at any point means no partial report.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Cancelled(ctxErr)
	}

	report, err := graph.New(resources, relationships, findings, warnings, completeness)
	if err != nil {
		return nil, fmt.Errorf("report assembly failed: %w", err)
	}

	elapsed := time.Since(start)
	metrics.ObserveRun(elapsed)
	e.logger.WithFields(map[string]interface{}{
		"run_id":        report.RunID(),
		"resources":     len(resources),
		"relationships": len(relationships),
		"drift":         len(findings),
		"warnings":      len(warnings),
		"elapsed":       elapsed.String(),
	}).Info("correlation run completed")

	return report, nil
}

// merge flattens per-source results into one resource set, enforcing key
// uniqueness across the run.
func (e *Engine) merge(results map[model.Source]*collector.Result) ([]model.Resource, []model.Warning, map[model.Source]model.Completeness) {
	var resources []model.Resource
	var warnings []model.Warning
	completeness := make(map[model.Source]model.Completeness, len(results))
	seen := make(map[model.Key]bool)

	for source, result := range results {
		completeness[source] = result.Completeness
		warnings = append(warnings, result.Warnings...)

		for _, res := range result.Resources {
			if seen[res.Key] {
				warnings = append(warnings, model.Warning{
					Component: model.ComponentGraph,
					ID:        string(source),
					Cause:     fmt.Sprintf("duplicate resource key %s dropped", res.Key),
				})
				continue
			}
			seen[res.Key] = true
			resources = append(resources, res)
		}
	}

	return resources, warnings, completeness
}
