package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infrascope/infrascope/internal/collector"
	"github.com/infrascope/infrascope/internal/config"
	"github.com/infrascope/infrascope/internal/model"
	engerrors "github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/logger"
)

const azureVMID = "/subscriptions/x/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/vm-1"

// stubCollector returns a fixed result or error
type stubCollector struct {
	source model.Source
	result *collector.Result
	err    error
}

func (s *stubCollector) Source() model.Source { return s.source }

func (s *stubCollector) Collect(ctx context.Context) (*collector.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func stub(source model.Source, resources ...model.Resource) *stubCollector {
	return &stubCollector{
		source: source,
		result: &collector.Result{
			Source:       source,
			Resources:    resources,
			Completeness: model.CompletenessSuccess,
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Collection.Timeout = 5 * time.Second
	cfg.Collection.Retry.MaxAttempts = 1
	return cfg
}

func newTestEngine(cfg *config.Config, collectors ...collector.Collector) *Engine {
	return NewWithCollectors(cfg, logger.Nop(), collectors...)
}

func TestRun_IdentityMatchWithRegionDrift(t *testing.T) {
	declared := model.Resource{
		Key:           model.Key{Source: model.SourceTerraform, NativeID: "azurerm_linux_virtual_machine.vm-1"},
		Type:          model.TypeVirtualMachine,
		Name:          "vm-1",
		Attributes:    map[string]interface{}{"region": "eastus2"},
		IdentityHints: []string{azureVMID},
	}
	observed := model.Resource{
		Key:        model.Key{Source: model.SourceAzure, NativeID: azureVMID},
		Type:       model.TypeVirtualMachine,
		Name:       "vm-1",
		Attributes: map[string]interface{}{"region": "eastus"},
	}

	e := newTestEngine(testConfig(),
		stub(model.SourceTerraform, declared),
		stub(model.SourceAzure, observed),
	)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rels := report.Relationships()
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1", len(rels))
	}
	if rels[0].Type != model.RelIdentityMatch || rels[0].Confidence != 1.0 {
		t.Errorf("edge = %+v, want identity-match at 1.0", rels[0])
	}

	drift := report.Drift()
	if len(drift) != 1 {
		t.Fatalf("got %d drift findings, want 1", len(drift))
	}
	f := drift[0]
	if f.Field != "region" || f.Severity != model.SeverityError || f.Code != model.DriftValueMismatch {
		t.Errorf("finding = %+v", f)
	}
	if f.DeclaredValue != "eastus2" || f.ObservedValue != "eastus" {
		t.Errorf("values = %v / %v", f.DeclaredValue, f.ObservedValue)
	}
	if report.Completeness(model.SourceTerraform) != model.CompletenessSuccess {
		t.Errorf("terraform completeness = %s", report.Completeness(model.SourceTerraform))
	}
}

func TestRun_NetworkMatchCarriesNoDrift(t *testing.T) {
	pool := model.Resource{
		Key:           model.Key{Source: model.SourceF5XC, NativeID: "prod/origin_pools/app-pool"},
		Type:          model.TypeOriginPool,
		Name:          "app-pool",
		IdentityHints: []string{"10.1.1.4"},
	}
	vm := model.Resource{
		Key:           model.Key{Source: model.SourceAzure, NativeID: azureVMID},
		Type:          model.TypeVirtualMachine,
		Name:          "vm-1",
		Attributes:    map[string]interface{}{"region": "eastus"},
		IdentityHints: []string{"10.1.1.4"},
	}

	e := newTestEngine(testConfig(),
		stub(model.SourceF5XC, pool),
		stub(model.SourceAzure, vm),
	)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rels := report.Relationships()
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1", len(rels))
	}
	if rels[0].Type != model.RelNetworkMatch || rels[0].Confidence != 0.7 {
		t.Errorf("edge = %+v, want network-match at 0.7", rels[0])
	}
	if drift := report.Drift(); len(drift) != 0 {
		t.Errorf("drift = %v, want none for a non-identity edge", drift)
	}
}

func TestRun_EmptyInputsProduceEmptyReport(t *testing.T) {
	e := newTestEngine(testConfig(),
		stub(model.SourceTerraform),
		stub(model.SourceAzure),
	)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := report.Resources(); len(got) != 0 {
		t.Errorf("resources = %v, want empty", got)
	}
	if got := report.Relationships(); len(got) != 0 {
		t.Errorf("relationships = %v, want empty", got)
	}
	if got := report.Warnings(); len(got) != 0 {
		t.Errorf("warnings = %v, want empty", got)
	}
	if report.RunID() == "" {
		t.Error("report missing run id")
	}
}

func TestRun_FailedSourceDegradesReport(t *testing.T) {
	declared := model.Resource{
		Key:  model.Key{Source: model.SourceTerraform, NativeID: "azurerm_linux_virtual_machine.vm-1"},
		Type: model.TypeVirtualMachine,
		Name: "vm-1",
	}

	e := newTestEngine(testConfig(),
		stub(model.SourceTerraform, declared),
		&stubCollector{source: model.SourceAzure, err: errors.New("credentials expired")},
	)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want degraded report", err)
	}
	if got := report.Completeness(model.SourceAzure); got != model.CompletenessFailed {
		t.Errorf("azure completeness = %s, want failed", got)
	}
	if got := report.Completeness(model.SourceTerraform); got != model.CompletenessSuccess {
		t.Errorf("terraform completeness = %s, want success", got)
	}
	if len(report.Resources()) != 1 {
		t.Errorf("resources = %v, want the surviving source's resource", report.Resources())
	}
	warnings := report.Warnings()
	if len(warnings) != 1 || warnings[0].ID != string(model.SourceAzure) {
		t.Errorf("warnings = %v, want one for the failed source", warnings)
	}
}

func TestRun_DuplicateKeysAreDroppedWithWarning(t *testing.T) {
	res := model.Resource{
		Key:  model.Key{Source: model.SourceAzure, NativeID: azureVMID},
		Type: model.TypeVirtualMachine,
		Name: "vm-1",
	}

	e := newTestEngine(testConfig(), stub(model.SourceAzure, res, res))

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Resources()) != 1 {
		t.Errorf("resources = %v, want the duplicate dropped", report.Resources())
	}
	warnings := report.Warnings()
	if len(warnings) != 1 || warnings[0].Component != model.ComponentGraph {
		t.Errorf("warnings = %v, want one graph warning", warnings)
	}
}

func TestRun_CancellationYieldsNoReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(testConfig(), stub(model.SourceTerraform))

	report, err := e.Run(ctx)
	if report != nil {
		t.Error("Run() returned a report after cancellation")
	}
	if !engerrors.IsCancelled(err) {
		t.Errorf("Run() error = %v, want cancellation", err)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	// No source enabled.
	if _, err := New(cfg, logger.Nop()); err == nil {
		t.Fatal("New() error = nil, want configuration error")
	} else if !engerrors.IsConfiguration(err) {
		t.Errorf("New() error = %v, want configuration error", err)
	}
}
