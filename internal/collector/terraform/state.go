package terraform

import (
	"encoding/json"
	"fmt"
)

// minSupportedStateVersion is the oldest state format the parser understands
const minSupportedStateVersion = 3

// ParseState parses Terraform state JSON content
func ParseState(content []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(content, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state document: %w", err)
	}

	if state.Version < minSupportedStateVersion {
		return nil, fmt.Errorf("unsupported state version: %d (minimum supported: %d)", state.Version, minSupportedStateVersion)
	}

	return &state, nil
}

// instanceName returns the resource name qualified with the instance index
// key, mirroring Terraform's own addressing for count and for_each.
func instanceName(name string, indexKey interface{}) string {
	switch v := indexKey.(type) {
	case float64:
		return fmt.Sprintf("%s[%d]", name, int(v))
	case string:
		return fmt.Sprintf("%s[%q]", name, v)
	default:
		return name
	}
}

// address builds the full Terraform address for one resource instance
func address(res StateResource, name string) string {
	addr := fmt.Sprintf("%s.%s", res.Type, name)
	if res.Module != "" {
		addr = fmt.Sprintf("%s.%s", res.Module, addr)
	}
	return addr
}

// extractProviderName extracts the provider name from the state provider
// string, e.g. `provider["registry.terraform.io/hashicorp/azurerm"]` -> "azurerm"
func extractProviderName(providerStr string) string {
	if providerStr == "" {
		return "unknown"
	}

	start, end := -1, -1
	for i := len(providerStr) - 1; i >= 0; i-- {
		if providerStr[i] == '/' {
			start = i + 1
			break
		}
	}
	for i := len(providerStr) - 1; i >= 0; i-- {
		if providerStr[i] == '"' || providerStr[i] == ']' {
			end = i
			break
		}
	}

	if start > 0 && end > start {
		return providerStr[start:end]
	}
	return "unknown"
}
