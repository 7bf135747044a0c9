// Package f5xc implements the platform-API collector for the SaaS edge
// platform. It reads load balancers, origin pools, and sites over the REST
// API and normalizes them into the common schema.
package f5xc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/infrascope/infrascope/internal/collector"
	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/retry"
)

// systemNamespace holds tenant-wide objects such as sites
const systemNamespace = "system"

// Config configures the platform-API collector
type Config struct {
	// Tenant names the platform tenant; the API base URL is derived from it
	// unless BaseURL overrides it.
	Tenant  string
	BaseURL string
	// APIToken is never logged or recorded in warnings.
	APIToken  string
	Namespace string
	// RequestsPerSecond caps the client-side request rate.
	RequestsPerSecond float64
}

// category binds one platform endpoint to its normalized resource type
type category struct {
	name      string
	endpoint  string
	namespace string
	resType   model.ResourceType
}

// Collector collects resources from the platform API
type Collector struct {
	cfg      Config
	client   *client
	retryCfg retry.Config
	logger   *logger.Logger
}

// New creates a platform-API collector
func New(cfg Config, retryCfg retry.Config, log *logger.Logger) *Collector {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.console.ves.volterra.io/api", cfg.Tenant)
	}
	return &Collector{
		cfg:      cfg,
		client:   newClient(baseURL, cfg.APIToken, cfg.RequestsPerSecond),
		retryCfg: retryCfg,
		logger:   log.With("collector", string(model.SourceF5XC)),
	}
}

// Source identifies this collector's source system
func (c *Collector) Source() model.Source {
	return model.SourceF5XC
}

// Collect reads each resource category independently: a failing endpoint
// records a warning and leaves the result partial instead of aborting the
// remaining categories.
func (c *Collector) Collect(ctx context.Context) (*collector.Result, error) {
	result := &collector.Result{
		Source:       model.SourceF5XC,
		Completeness: model.CompletenessSuccess,
	}

	namespace := c.cfg.Namespace
	if namespace == "" {
		namespace = systemNamespace
	}

	categories := []category{
		{"http_loadbalancers", "config/namespaces/%s/http_loadbalancers", namespace, model.TypeLoadBalancer},
		{"origin_pools", "config/namespaces/%s/origin_pools", namespace, model.TypeOriginPool},
		{"virtual_sites", "config/namespaces/%s/virtual_sites", namespace, model.TypeSite},
		{"sites", "config/namespaces/%s/sites", systemNamespace, model.TypeSite},
	}

	failed := 0
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var listed *apiList
		err := retry.Do(ctx, c.retryCfg, c.logger, "list "+cat.name, func() error {
			var listErr error
			listed, listErr = c.client.list(ctx, fmt.Sprintf(cat.endpoint, cat.namespace), cat.namespace)
			return listErr
		})
		if err != nil {
			result.AddWarning(cat.name, err)
			failed++
			continue
		}

		for _, item := range listed.Items {
			res, err := c.normalizeObject(cat, item)
			if err != nil {
				result.AddWarning(cat.name, err)
				continue
			}
			result.Resources = append(result.Resources, *res)
		}
	}

	if failed == len(categories) {
		return nil, fmt.Errorf("all platform endpoints failed")
	}

	c.logger.WithFields(map[string]interface{}{
		"resources": len(result.Resources),
		"namespace": namespace,
	}).Debug("platform resources collected")

	return result, nil
}

// normalizeObject converts one platform API object into the common schema
func (c *Collector) normalizeObject(cat category, item apiObject) (*model.Resource, error) {
	name, _ := item.Metadata["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("object missing metadata.name")
	}
	objNamespace, _ := item.Metadata["namespace"].(string)
	if objNamespace == "" {
		objNamespace = cat.namespace
	}

	raw, _ := json.Marshal(item)
	res := &model.Resource{
		Key: model.Key{
			Source: model.SourceF5XC,
			// Platform objects are unique per namespace and kind, not
			// globally; the native id carries all three parts.
			NativeID: fmt.Sprintf("%s/%s/%s", objNamespace, cat.name, name),
		},
		Type:       cat.resType,
		Name:       name,
		Attributes: collector.FlattenAttributes("", item.Spec),
		Tags:       map[string]string{},
		Raw:        raw,
	}
	res.Attributes["namespace"] = objNamespace

	if labels, ok := item.Metadata["labels"].(map[string]interface{}); ok {
		res.Tags = collector.NormalizeTags(labels)
	}

	// Origin server addresses and domains are what tie platform objects
	// to resources in the other sources.
	for _, ip := range collector.ExtractIPAddresses(item.Spec) {
		res.AddHint(ip)
	}
	for _, dns := range originDNSNames(item.Spec) {
		res.AddHint(dns)
	}
	for _, domain := range stringSlice(item.Spec["domains"]) {
		res.AddHint(domain)
	}

	return res, nil
}

// originDNSNames extracts origin server DNS names from an origin pool spec
func originDNSNames(spec map[string]interface{}) []string {
	var out []string
	servers, ok := spec["origin_servers"].([]interface{})
	if !ok {
		return nil
	}
	for _, server := range servers {
		srv, ok := server.(map[string]interface{})
		if !ok {
			continue
		}
		for _, variant := range []string{"public_name", "private_name"} {
			if named, ok := srv[variant].(map[string]interface{}); ok {
				if dns, ok := named["dns_name"].(string); ok && dns != "" {
					out = append(out, dns)
				}
			}
		}
	}
	return out
}

func stringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
