package matcher

import (
	"fmt"
	"sort"

	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/metrics"
)

// Engine evaluates the ordered strategy list over every cross-source
// resource pair and retains the single best relationship per unordered pair.
type Engine struct {
	strategies    []Strategy
	minConfidence float64
	logger        *logger.Logger
}

// NewEngine creates a matching engine. Edges below minConfidence are
// dropped before they reach the report.
func NewEngine(strategies []Strategy, minConfidence float64, log *logger.Logger) *Engine {
	return &Engine{
		strategies:    strategies,
		minConfidence: minConfidence,
		logger:        log.With("component", "matcher"),
	}
}

// DefaultStrategies returns the standard strategy list
func DefaultStrategies(tagKeys []string) []Strategy {
	return []Strategy{
		IdentityStrategy{},
		NetworkStrategy{},
		TagStrategy{Keys: tagKeys},
	}
}

// Match produces the deduplicated relationship set for the given resources.
// A strategy error drops that strategy's candidate for the affected pair and
// records a warning; it never aborts the run. The result is independent of
// input order.
func (e *Engine) Match(resources []model.Resource) ([]model.Relationship, []model.Warning) {
	// Canonical iteration order makes retention deterministic regardless
	// of how the caller enumerated resources.
	ordered := make([]model.Resource, len(resources))
	copy(ordered, resources)
	model.SortResources(ordered)

	best := make(map[string]model.Relationship)
	var warnings []model.Warning

	for _, rel := range dependencyEdges(ordered) {
		metrics.RecordCandidate("dependency")
		e.retain(best, rel)
	}

	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			a, b := &ordered[i], &ordered[j]
			// Same-source pairs are the dependency matcher's territory;
			// self pairs cannot happen past this guard either.
			if a.Key.Source == b.Key.Source {
				continue
			}
			warnings = append(warnings, e.matchPair(best, a, b)...)
		}
	}

	out := make([]model.Relationship, 0, len(best))
	for _, rel := range best {
		if rel.Confidence < e.minConfidence {
			continue
		}
		metrics.RecordEdge(string(rel.Type))
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From.Less(out[j].From)
		}
		return out[i].To.Less(out[j].To)
	})

	e.logger.WithFields(map[string]interface{}{
		"resources": len(resources),
		"edges":     len(out),
	}).Info("matching completed")

	return out, warnings
}

func (e *Engine) matchPair(best map[string]model.Relationship, a, b *model.Resource) []model.Warning {
	var warnings []model.Warning

	for _, strategy := range e.strategies {
		candidate, err := strategy.Match(a, b)
		if err != nil {
			cause := errors.Matcher(strategy.Name(), err, fmt.Sprintf("pair %s, %s", a.Key, b.Key))
			warnings = append(warnings, model.Warning{
				Component: model.ComponentMatcher,
				ID:        strategy.Name(),
				Cause:     cause.Error(),
			})
			continue
		}
		if candidate == nil {
			continue
		}
		metrics.RecordCandidate(strategy.Name())
		e.retain(best, model.Relationship{
			From:       a.Key,
			To:         b.Key,
			Type:       candidate.Type,
			Confidence: candidate.Confidence,
			Evidence:   candidate.Evidence,
		})
	}

	return warnings
}

// retain keeps the relationship only if it beats the current holder of its
// unordered pair slot.
func (e *Engine) retain(best map[string]model.Relationship, rel model.Relationship) {
	key := rel.PairKey()
	if current, ok := best[key]; ok && !rel.Beats(current) {
		return
	}
	best[key] = rel
}
