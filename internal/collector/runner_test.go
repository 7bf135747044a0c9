package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infrascope/infrascope/internal/model"
	engerrors "github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/logger"
)

// fakeCollector is a scriptable collector for runner tests
type fakeCollector struct {
	source  model.Source
	collect func(ctx context.Context) (*Result, error)
}

func (f *fakeCollector) Source() model.Source { return f.source }

func (f *fakeCollector) Collect(ctx context.Context) (*Result, error) {
	return f.collect(ctx)
}

func okCollector(source model.Source, count int) *fakeCollector {
	return &fakeCollector{
		source: source,
		collect: func(ctx context.Context) (*Result, error) {
			resources := make([]model.Resource, count)
			for i := range resources {
				resources[i] = model.Resource{
					Key: model.Key{Source: source, NativeID: string(rune('a' + i))},
				}
			}
			return &Result{Source: source, Resources: resources}, nil
		},
	}
}

func TestRun_AllSourcesSucceed(t *testing.T) {
	results, err := Run(context.Background(), time.Minute, logger.Nop(),
		okCollector(model.SourceTerraform, 2),
		okCollector(model.SourceAzure, 3),
		okCollector(model.SourceF5XC, 1),
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Run() returned %d results, want 3", len(results))
	}
	for source, result := range results {
		if result.Completeness != model.CompletenessSuccess {
			t.Errorf("source %s completeness = %s, want success", source, result.Completeness)
		}
	}
}

func TestRun_SingleFailureDoesNotAbortOthers(t *testing.T) {
	failing := &fakeCollector{
		source: model.SourceF5XC,
		collect: func(ctx context.Context) (*Result, error) {
			return nil, errors.New("platform unreachable")
		},
	}

	results, err := Run(context.Background(), time.Minute, logger.Nop(),
		okCollector(model.SourceTerraform, 1),
		okCollector(model.SourceAzure, 1),
		failing,
	)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	failed := results[model.SourceF5XC]
	if failed.Completeness != model.CompletenessFailed {
		t.Errorf("failed source completeness = %s, want failed", failed.Completeness)
	}
	if len(failed.Resources) != 0 {
		t.Errorf("failed source kept %d resources, want 0", len(failed.Resources))
	}
	if len(failed.Warnings) != 1 {
		t.Fatalf("failed source has %d warnings, want 1", len(failed.Warnings))
	}
	if failed.Warnings[0].Component != model.ComponentCollector {
		t.Errorf("warning component = %s, want %s", failed.Warnings[0].Component, model.ComponentCollector)
	}

	for _, source := range []model.Source{model.SourceTerraform, model.SourceAzure} {
		if results[source].Completeness != model.CompletenessSuccess {
			t.Errorf("source %s completeness = %s, want success", source, results[source].Completeness)
		}
	}
}

func TestRun_CollectorTimeoutIsIsolated(t *testing.T) {
	slow := &fakeCollector{
		source: model.SourceAzure,
		collect: func(ctx context.Context) (*Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	results, err := Run(context.Background(), 20*time.Millisecond, logger.Nop(),
		okCollector(model.SourceTerraform, 1),
		slow,
	)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if results[model.SourceAzure].Completeness != model.CompletenessFailed {
		t.Errorf("timed-out source completeness = %s, want failed", results[model.SourceAzure].Completeness)
	}
	if results[model.SourceTerraform].Completeness != model.CompletenessSuccess {
		t.Errorf("healthy source completeness = %s, want success", results[model.SourceTerraform].Completeness)
	}
}

func TestRun_GlobalCancellationAbortsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocking := &fakeCollector{
		source: model.SourceTerraform,
		collect: func(ctx context.Context) (*Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	results, err := Run(ctx, time.Minute, logger.Nop(), blocking, okCollector(model.SourceAzure, 1))
	if err == nil {
		t.Fatal("Run() error = nil, want cancellation error")
	}
	if !engerrors.IsCancelled(err) {
		t.Errorf("Run() error = %v, want cancellation error", err)
	}
	if results != nil {
		t.Errorf("Run() returned partial results on cancellation")
	}
}

func TestResult_AddWarningDowngradesCompleteness(t *testing.T) {
	result := &Result{Source: model.SourceAzure, Completeness: model.CompletenessSuccess}

	result.AddWarning("network", errors.New("listing failed"))

	if result.Completeness != model.CompletenessPartial {
		t.Errorf("completeness = %s, want partial", result.Completeness)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(result.Warnings))
	}
	if result.Warnings[0].ID != "azure/network" {
		t.Errorf("warning id = %s, want azure/network", result.Warnings[0].ID)
	}
	if result.Warnings[0].Cause != "network collection failed: listing failed" {
		t.Errorf("warning cause = %q", result.Warnings[0].Cause)
	}
}
