package collector

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`)

// FlattenAttributes flattens a nested attribute payload into the flat
// dot-separated key form every collector normalizes into. Lists are indexed,
// nil values are dropped.
func FlattenAttributes(prefix string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	flattenInto(out, prefix, in)
	return out
}

func flattenInto(out map[string]interface{}, prefix string, in map[string]interface{}) {
	for key, value := range in {
		path := normalizeKey(key)
		if prefix != "" {
			path = prefix + "." + path
		}

		switch v := value.(type) {
		case nil:
		case map[string]interface{}:
			flattenInto(out, path, v)
		case []interface{}:
			for i, item := range v {
				itemPath := fmt.Sprintf("%s.%d", path, i)
				if m, ok := item.(map[string]interface{}); ok {
					flattenInto(out, itemPath, m)
				} else if item != nil {
					out[itemPath] = item
				}
			}
		default:
			out[path] = v
		}
	}
}

// normalizeKey lowercases attribute keys so lookups are source-agnostic
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ExtractIPAddresses recursively scans a payload for IPv4 and CIDR literals.
// The result is sorted and deduplicated.
func ExtractIPAddresses(value interface{}) []string {
	seen := make(map[string]struct{})
	scanForIPs(value, seen)

	out := make([]string, 0, len(seen))
	for ip := range seen {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

func scanForIPs(value interface{}, seen map[string]struct{}) {
	switch v := value.(type) {
	case string:
		for _, m := range ipPattern.FindAllString(v, -1) {
			seen[m] = struct{}{}
		}
	case map[string]interface{}:
		for _, item := range v {
			scanForIPs(item, seen)
		}
	case []interface{}:
		for _, item := range v {
			scanForIPs(item, seen)
		}
	case []string:
		for _, item := range v {
			scanForIPs(item, seen)
		}
	}
}

// NormalizeTags converts a source tag/label map with interface values into
// the flat string map of the common schema.
func NormalizeTags(in map[string]interface{}) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[normalizeKey(k)] = fmt.Sprintf("%v", v)
	}
	return out
}

// CopyTags normalizes the keys of an already-flat string tag map
func CopyTags(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[normalizeKey(k)] = v
	}
	return out
}
