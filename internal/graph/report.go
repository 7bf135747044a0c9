// Package graph assembles the correlation result into an immutable report.
package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/infrascope/infrascope/internal/model"
)

// Report is the immutable aggregate of one correlation run. Accessors return
// copies; nothing can be mutated after construction, and a new run always
// produces a new Report.
type Report struct {
	runID         string
	generatedAt   time.Time
	resources     map[model.Key]model.Resource
	ordered       []model.Key
	relationships []model.Relationship
	drift         []model.DriftFinding
	warnings      []model.Warning
	completeness  map[model.Source]model.Completeness
}

// New builds a report and enforces the graph invariants: resource keys are
// unique and every edge references resources present in the set.
func New(
	resources []model.Resource,
	relationships []model.Relationship,
	drift []model.DriftFinding,
	warnings []model.Warning,
	completeness map[model.Source]model.Completeness,
) (*Report, error) {
	r := &Report{
		runID:         uuid.NewString(),
		generatedAt:   time.Now().UTC(),
		resources:     make(map[model.Key]model.Resource, len(resources)),
		relationships: append([]model.Relationship(nil), relationships...),
		drift:         append([]model.DriftFinding(nil), drift...),
		warnings:      append([]model.Warning(nil), warnings...),
		completeness:  make(map[model.Source]model.Completeness, len(completeness)),
	}

	for _, res := range resources {
		if _, exists := r.resources[res.Key]; exists {
			return nil, fmt.Errorf("duplicate resource key %s", res.Key)
		}
		r.resources[res.Key] = res
		r.ordered = append(r.ordered, res.Key)
	}

	for _, rel := range r.relationships {
		if _, ok := r.resources[rel.From]; !ok {
			return nil, fmt.Errorf("edge references unknown resource %s", rel.From)
		}
		if _, ok := r.resources[rel.To]; !ok {
			return nil, fmt.Errorf("edge references unknown resource %s", rel.To)
		}
	}

	for source, status := range completeness {
		r.completeness[source] = status
	}

	return r, nil
}

// RunID returns the unique identifier of this run
func (r *Report) RunID() string { return r.runID }

// GeneratedAt returns when the report was assembled
func (r *Report) GeneratedAt() time.Time { return r.generatedAt }

// Resources returns all resources in deterministic key order
func (r *Report) Resources() []model.Resource {
	out := make([]model.Resource, 0, len(r.ordered))
	for _, key := range r.ordered {
		out = append(out, r.resources[key])
	}
	model.SortResources(out)
	return out
}

// Resource looks up a single resource by key
func (r *Report) Resource(key model.Key) (model.Resource, bool) {
	res, ok := r.resources[key]
	return res, ok
}

// ResourcesBySource returns the resources collected from one source
func (r *Report) ResourcesBySource(source model.Source) []model.Resource {
	var out []model.Resource
	for _, res := range r.resources {
		if res.Key.Source == source {
			out = append(out, res)
		}
	}
	model.SortResources(out)
	return out
}

// Relationships returns the deduplicated edge set
func (r *Report) Relationships() []model.Relationship {
	return append([]model.Relationship(nil), r.relationships...)
}

// EdgesFor returns the edges incident to a resource key
func (r *Report) EdgesFor(key model.Key) []model.Relationship {
	var out []model.Relationship
	for _, rel := range r.relationships {
		if rel.From == key || rel.To == key {
			out = append(out, rel)
		}
	}
	return out
}

// Drift returns all drift findings
func (r *Report) Drift() []model.DriftFinding {
	return append([]model.DriftFinding(nil), r.drift...)
}

// Warnings returns the non-fatal failures recorded during the run
func (r *Report) Warnings() []model.Warning {
	return append([]model.Warning(nil), r.warnings...)
}

// Completeness returns the collection status for a source
func (r *Report) Completeness(source model.Source) model.Completeness {
	if status, ok := r.completeness[source]; ok {
		return status
	}
	return model.CompletenessFailed
}

// Document is the nested, source-agnostic serialization of a report
type Document struct {
	RunID         string                                  `json:"run_id"`
	GeneratedAt   time.Time                               `json:"generated_at"`
	Resources     []model.Resource                        `json:"resources"`
	Relationships []model.Relationship                    `json:"relationships"`
	Drift         []model.DriftFinding                    `json:"drift"`
	Warnings      []model.Warning                         `json:"warnings"`
	Completeness  map[model.Source]model.Completeness     `json:"collection_completeness"`
}

// Serialize produces the document consumed by downstream renderers
func (r *Report) Serialize() Document {
	completeness := make(map[model.Source]model.Completeness, len(r.completeness))
	for source, status := range r.completeness {
		completeness[source] = status
	}
	return Document{
		RunID:         r.runID,
		GeneratedAt:   r.generatedAt,
		Resources:     r.Resources(),
		Relationships: r.Relationships(),
		Drift:         r.Drift(),
		Warnings:      r.Warnings(),
		Completeness:  completeness,
	}
}

// MarshalJSON serializes the report as its document form
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Serialize())
}
