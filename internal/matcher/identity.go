package matcher

import (
	"fmt"

	"github.com/infrascope/infrascope/internal/model"
)

// IdentityStrategy matches when one resource's identity hints contain the
// other's native id. This is the strongest signal two records describe the
// same real-world object.
type IdentityStrategy struct{}

// Name identifies this strategy
func (IdentityStrategy) Name() string { return "identity" }

// Match implements Strategy
func (IdentityStrategy) Match(a, b *model.Resource) (*Candidate, error) {
	if a.HasHint(b.Key.NativeID) {
		return &Candidate{
			Type:       model.RelIdentityMatch,
			Confidence: 1.0,
			Evidence:   fmt.Sprintf("%s carries identity hint for %s", a.Key, b.Key),
		}, nil
	}
	if b.HasHint(a.Key.NativeID) {
		return &Candidate{
			Type:       model.RelIdentityMatch,
			Confidence: 1.0,
			Evidence:   fmt.Sprintf("%s carries identity hint for %s", b.Key, a.Key),
		}, nil
	}
	return nil, nil
}
