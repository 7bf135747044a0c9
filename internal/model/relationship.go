package model

// RelationshipType classifies how two resources are related
type RelationshipType string

const (
	RelDependency    RelationshipType = "dependency"
	RelIdentityMatch RelationshipType = "identity-match"
	RelTagMatch      RelationshipType = "tag-match"
	RelNetworkMatch  RelationshipType = "network-match"
)

// Relationship is an edge between two resources in the correlation graph
type Relationship struct {
	From       Key              `json:"from_key"`
	To         Key              `json:"to_key"`
	Type       RelationshipType `json:"relationship_type"`
	Confidence float64          `json:"confidence"`
	Evidence   string           `json:"evidence"`
}

// PairKey returns a canonical identifier for the unordered resource pair.
// Both edge directions map to the same pair key, which is what the
// deduplication in the matching engine keys on.
func (r Relationship) PairKey() string {
	a, b := r.From, r.To
	if b.Less(a) {
		a, b = b, a
	}
	return a.String() + "|" + b.String()
}

// priority breaks confidence ties between relationship types
func (t RelationshipType) priority() int {
	switch t {
	case RelIdentityMatch:
		return 3
	case RelNetworkMatch:
		return 2
	case RelTagMatch:
		return 1
	default:
		return 0
	}
}

// Beats reports whether this relationship wins over other for the same pair:
// higher confidence first, then identity-match > network-match > tag-match.
func (r Relationship) Beats(other Relationship) bool {
	if r.Confidence != other.Confidence {
		return r.Confidence > other.Confidence
	}
	return r.Type.priority() > other.Type.priority()
}
