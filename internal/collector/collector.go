// Package collector defines the source collector contract and the concurrent
// runner that drives all sources in one correlation run.
package collector

import (
	"context"

	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/errors"
)

// Result is the outcome of collecting one source. Per-category failures are
// accumulated as warnings with the partial resource set rather than aborting
// the collection.
type Result struct {
	Source       model.Source
	Resources    []model.Resource
	Warnings     []model.Warning
	Completeness model.Completeness
}

// AddWarning records a per-category collection failure and downgrades the
// completeness status to partial.
func (r *Result) AddWarning(category string, err error) {
	cause := errors.Collection(string(r.Source), err, category+" collection failed")
	r.Warnings = append(r.Warnings, model.Warning{
		Component: model.ComponentCollector,
		ID:        string(r.Source) + "/" + category,
		Cause:     cause.Error(),
	})
	if r.Completeness == model.CompletenessSuccess {
		r.Completeness = model.CompletenessPartial
	}
}

// Collector translates one external system's state into normalized resources.
// Collect is a pure read of the external system at call time: it must not
// mutate the source and must honor ctx cancellation.
type Collector interface {
	Source() model.Source
	Collect(ctx context.Context) (*Result, error)
}
