package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/infrascope/infrascope/internal/model"
)

const (
	tagBaseConfidence = 0.6
	tagStepConfidence = 0.1
	tagMaxConfidence  = 0.9
)

// compatiblePairs lists cross-type combinations the tag matcher accepts in
// addition to identical types.
var compatiblePairs = map[[2]model.ResourceType]bool{
	{model.TypeVirtualMachine, model.TypeNetworkInterface}: true,
	{model.TypeOriginPool, model.TypeVirtualMachine}:       true,
	{model.TypeSite, model.TypeNetwork}:                    true,
	{model.TypeLoadBalancer, model.TypeOriginPool}:         true,
}

// TagStrategy matches when the configured tag keys carry equal values on
// both sides and the resource types are compatible.
type TagStrategy struct {
	// Keys are the tag keys considered, typically ownership and
	// environment identifiers.
	Keys []string
}

// Name identifies this strategy
func (TagStrategy) Name() string { return "tag" }

// Match implements Strategy
func (s TagStrategy) Match(a, b *model.Resource) (*Candidate, error) {
	if len(s.Keys) == 0 || !typesCompatible(a.Type, b.Type) {
		return nil, nil
	}

	var matched []string
	for _, key := range s.Keys {
		av, aok := a.Tags[key]
		bv, bok := b.Tags[key]
		if aok && bok && av != "" && strings.EqualFold(av, bv) {
			matched = append(matched, key)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	confidence := tagBaseConfidence + tagStepConfidence*float64(len(matched)-1)
	if confidence > tagMaxConfidence {
		confidence = tagMaxConfidence
	}

	sort.Strings(matched)
	return &Candidate{
		Type:       model.RelTagMatch,
		Confidence: confidence,
		Evidence:   fmt.Sprintf("equal tags: %s", strings.Join(matched, ", ")),
	}, nil
}

func typesCompatible(a, b model.ResourceType) bool {
	if a == b {
		return true
	}
	return compatiblePairs[[2]model.ResourceType{a, b}] || compatiblePairs[[2]model.ResourceType{b, a}]
}
