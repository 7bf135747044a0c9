package matcher

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/infrascope/infrascope/internal/model"
)

const networkConfidence = 0.7

// NetworkStrategy matches when an IP or CIDR on one resource equals or
// overlaps an IP or CIDR on the other.
type NetworkStrategy struct{}

// Name identifies this strategy
func (NetworkStrategy) Name() string { return "network" }

// Match implements Strategy
func (NetworkStrategy) Match(a, b *model.Resource) (*Candidate, error) {
	aPrefixes := networkValues(a)
	if len(aPrefixes) == 0 {
		return nil, nil
	}
	bPrefixes := networkValues(b)
	if len(bPrefixes) == 0 {
		return nil, nil
	}

	for _, ap := range aPrefixes {
		for _, bp := range bPrefixes {
			if ap.Overlaps(bp) {
				return &Candidate{
					Type:       model.RelNetworkMatch,
					Confidence: networkConfidence,
					Evidence:   fmt.Sprintf("network overlap: %s and %s", ap, bp),
				}, nil
			}
		}
	}
	return nil, nil
}

// networkValues parses every IP and CIDR carried by a resource's identity
// hints and attributes into prefixes. A bare address becomes a single-host
// prefix.
func networkValues(r *model.Resource) []netip.Prefix {
	var out []netip.Prefix
	add := func(value string) {
		if p, ok := parsePrefix(value); ok {
			out = append(out, p)
		}
	}

	for _, hint := range r.IdentityHints {
		add(hint)
	}
	for _, value := range r.Attributes {
		if s, ok := value.(string); ok {
			add(s)
		}
	}
	return out
}

func parsePrefix(value string) (netip.Prefix, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return netip.Prefix{}, false
	}
	if strings.ContainsRune(value, '/') {
		p, err := netip.ParsePrefix(value)
		if err != nil {
			return netip.Prefix{}, false
		}
		return p.Masked(), true
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(addr, addr.BitLen()), true
}
