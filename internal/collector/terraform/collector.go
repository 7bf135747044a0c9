// Package terraform implements the declarative-state collector. It reads the
// provisioning tool's state document and normalizes declared resources,
// their attributes, and intra-document dependency references.
package terraform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/infrascope/infrascope/internal/collector"
	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/retry"
)

// Config configures the declarative-state collector
type Config struct {
	// StatePath points at the state JSON document.
	StatePath string
	// ConfigDir optionally points at a directory of HCL configuration files;
	// resources declared there but absent from state are collected as
	// declared-only resources.
	ConfigDir string
}

// Collector collects resources from a Terraform state document
type Collector struct {
	cfg      Config
	retryCfg retry.Config
	logger   *logger.Logger
}

// New creates a declarative-state collector
func New(cfg Config, retryCfg retry.Config, log *logger.Logger) *Collector {
	return &Collector{
		cfg:      cfg,
		retryCfg: retryCfg,
		logger:   log.With("collector", string(model.SourceTerraform)),
	}
}

// Source identifies this collector's source system
func (c *Collector) Source() model.Source {
	return model.SourceTerraform
}

// Collect reads and normalizes the declared state. A malformed resource entry
// is skipped with a warning; only an unreadable state document fails the
// collection outright.
func (c *Collector) Collect(ctx context.Context) (*collector.Result, error) {
	result := &collector.Result{
		Source:       model.SourceTerraform,
		Completeness: model.CompletenessSuccess,
	}

	var content []byte
	err := retry.Do(ctx, c.retryCfg, c.logger, "read terraform state", func() error {
		var readErr error
		content, readErr = os.ReadFile(c.cfg.StatePath)
		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read state document: %w", err)
	}

	state, err := ParseState(content)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, res := range state.Resources {
		if res.Mode != "managed" {
			continue
		}
		// Indexed instances still answer to the unindexed configuration
		// address the HCL scan resolves against.
		if res.Module == "" {
			seen[fmt.Sprintf("%s.%s", res.Type, res.Name)] = true
		}
		for _, instance := range res.Instances {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			resource, err := c.normalizeInstance(res, instance)
			if err != nil {
				result.AddWarning("state", fmt.Errorf("resource %s.%s: %w", res.Type, res.Name, err))
				continue
			}
			seen[resource.Key.NativeID] = true
			result.Resources = append(result.Resources, *resource)
		}
	}

	if c.cfg.ConfigDir != "" {
		declared, err := c.scanConfigDir(seen)
		if err != nil {
			result.AddWarning("hcl", err)
		} else {
			result.Resources = append(result.Resources, declared...)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"resources": len(result.Resources),
		"serial":    state.Serial,
	}).Debug("terraform state collected")

	return result, nil
}

// normalizeInstance converts one state resource instance into the common schema
func (c *Collector) normalizeInstance(res StateResource, instance StateInstance) (*model.Resource, error) {
	if res.Type == "" || res.Name == "" {
		return nil, fmt.Errorf("missing type or name")
	}

	name := instanceName(res.Name, instance.IndexKey)
	addr := address(res, name)

	raw, err := json.Marshal(instance.Attributes)
	if err != nil {
		return nil, fmt.Errorf("unserializable attributes: %w", err)
	}

	resource := &model.Resource{
		Key:  model.Key{Source: model.SourceTerraform, NativeID: addr},
		Type: normalizeType(res.Type),
		Name: name,
		Tags: map[string]string{},
		Raw:  raw,
	}

	// Identity hints come from the raw attributes: the embedded cloud
	// resource id, addresses, and hostnames are what link this resource to
	// its observed counterpart.
	if id := stringAttr(instance.Attributes, "id"); id != "" {
		resource.AddHint(id)
	}
	if fqdn := stringAttr(instance.Attributes, "fqdn"); fqdn != "" {
		resource.AddHint(fqdn)
	}
	for _, ip := range collector.ExtractIPAddresses(instance.Attributes) {
		resource.AddHint(ip)
	}

	attrs := make(map[string]interface{})
	for key, value := range instance.Attributes {
		if computedAttributes[key] {
			continue
		}
		switch key {
		case "tags":
			if tagMap, ok := value.(map[string]interface{}); ok {
				resource.Tags = collector.NormalizeTags(tagMap)
			}
		default:
			attrs[aliasKey(key)] = value
		}
	}
	resource.Attributes = collector.FlattenAttributes("", attrs)
	resource.Attributes["provider"] = extractProviderName(res.Provider)

	for _, dep := range instance.Dependencies {
		resource.Dependencies = append(resource.Dependencies, dependencyID(dep))
	}

	return resource, nil
}
