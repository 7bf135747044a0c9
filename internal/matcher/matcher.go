// Package matcher infers cross-source relationships between normalized
// resources. Strategies are independent pure functions over a resource pair;
// the engine retains the single best candidate per unordered pair.
package matcher

import "github.com/infrascope/infrascope/internal/model"

// Candidate is a proposed relationship between two resources
type Candidate struct {
	Type       model.RelationshipType
	Confidence float64
	Evidence   string
}

// Strategy evaluates one matching heuristic for a cross-source resource
// pair. Implementations must be pure and symmetric: Match(a, b) and
// Match(b, a) describe the same candidate.
type Strategy interface {
	Name() string
	Match(a, b *model.Resource) (*Candidate, error)
}
