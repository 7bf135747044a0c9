// Package model defines the common schema every source is normalized into.
// Nothing downstream of collection is aware of source-specific field naming.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Source identifies the system a resource was collected from
type Source string

const (
	SourceTerraform Source = "terraform"
	SourceAzure     Source = "azure"
	SourceF5XC      Source = "f5xc"
)

// ResourceType is the controlled type vocabulary shared by all sources
type ResourceType string

const (
	TypeVirtualMachine   ResourceType = "virtual_machine"
	TypeNetwork          ResourceType = "network"
	TypeSubnet           ResourceType = "subnet"
	TypeNetworkInterface ResourceType = "network_interface"
	TypePublicIP         ResourceType = "public_ip"
	TypeSecurityGroup    ResourceType = "security_group"
	TypeLoadBalancer     ResourceType = "load_balancer"
	TypeOriginPool       ResourceType = "origin_pool"
	TypeSite             ResourceType = "site"
	TypeStorage          ResourceType = "storage"
	TypeGeneric          ResourceType = "generic"
)

// Key uniquely identifies a resource within a run
type Key struct {
	Source   Source `json:"source"`
	NativeID string `json:"native_id"`
}

// String returns the canonical "source/native_id" form
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Source, k.NativeID)
}

// Less provides a total order over keys, used for deterministic iteration
func (k Key) Less(other Key) bool {
	if k.Source != other.Source {
		return k.Source < other.Source
	}
	return k.NativeID < other.NativeID
}

// Resource is the normalized representation of an infrastructure resource
type Resource struct {
	Key           Key                    `json:"key"`
	Type          ResourceType           `json:"type"`
	Name          string                 `json:"name"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Tags          map[string]string      `json:"tags,omitempty"`
	IdentityHints []string               `json:"identity_hints,omitempty"`
	// Dependencies holds native ids of same-source resources this resource
	// declares a dependency on.
	Dependencies []string        `json:"dependencies,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// HasHint reports whether the resource carries the given identity hint.
// Comparison is case-insensitive: cloud resource ids differ in casing
// between systems.
func (r *Resource) HasHint(id string) bool {
	for _, h := range r.IdentityHints {
		if strings.EqualFold(h, id) {
			return true
		}
	}
	return false
}

// AddHint records an identity hint, ignoring empties and duplicates
func (r *Resource) AddHint(id string) {
	if id == "" || r.HasHint(id) {
		return
	}
	r.IdentityHints = append(r.IdentityHints, id)
}

// Attribute returns a flat attribute value
func (r *Resource) Attribute(key string) (interface{}, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// SortResources orders resources by key for deterministic output
func SortResources(resources []Resource) {
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Key.Less(resources[j].Key)
	})
}
