// Package azure implements the cloud-inventory collector. It lists the
// subscription's resource inventory, enriches compute, network, and storage
// records from the typed APIs, and normalizes everything into the common
// schema.
package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/infrascope/infrascope/internal/collector"
	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/retry"
)

// Config configures the cloud-inventory collector
type Config struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	ClientSecret   string

	// Filter narrows the inventory query.
	ResourceGroups []string
	Types          []string
	TagName        string
	TagValue       string
}

// Collector collects resources from the cloud inventory service
type Collector struct {
	cfg      Config
	api      inventoryAPI
	retryCfg retry.Config
	logger   *logger.Logger
}

// New creates a cloud-inventory collector
func New(cfg Config, retryCfg retry.Config, log *logger.Logger) (*Collector, error) {
	api, err := newARMAPI(cfg)
	if err != nil {
		return nil, err
	}
	return newWithAPI(cfg, api, retryCfg, log), nil
}

func newWithAPI(cfg Config, api inventoryAPI, retryCfg retry.Config, log *logger.Logger) *Collector {
	return &Collector{
		cfg:      cfg,
		api:      api,
		retryCfg: retryCfg,
		logger:   log.With("collector", string(model.SourceAzure)),
	}
}

// Source identifies this collector's source system
func (c *Collector) Source() model.Source {
	return model.SourceAzure
}

// Collect lists the inventory and enriches it per category. A failed
// enrichment category records a warning and leaves the result partial; only
// a failed base listing fails the source.
func (c *Collector) Collect(ctx context.Context) (*collector.Result, error) {
	result := &collector.Result{
		Source:       model.SourceAzure,
		Completeness: model.CompletenessSuccess,
	}

	var listed []genericResource
	err := retry.Do(ctx, c.retryCfg, c.logger, "list cloud inventory", func() error {
		var listErr error
		listed, listErr = c.api.ListResources(ctx, c.serverFilter())
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("inventory listing failed: %w", err)
	}

	byID := make(map[string]*model.Resource)
	for _, item := range listed {
		if !c.matchesFilter(item) {
			continue
		}
		res := c.normalizeResource(item)
		byID[strings.ToLower(res.Key.NativeID)] = res
	}

	c.enrichNetwork(ctx, result, byID)
	c.enrichCompute(ctx, result, byID)
	c.enrichStorage(ctx, result, byID)

	for _, res := range byID {
		result.Resources = append(result.Resources, *res)
	}
	model.SortResources(result.Resources)

	c.logger.WithFields(map[string]interface{}{
		"resources": len(result.Resources),
	}).Debug("cloud inventory collected")

	return result, nil
}

// serverFilter builds the server-side filter expression. Only tag filters
// are expressible; type and group filters are applied client-side.
func (c *Collector) serverFilter() string {
	if c.cfg.TagName != "" && c.cfg.TagValue != "" {
		return fmt.Sprintf("tagName eq '%s' and tagValue eq '%s'", c.cfg.TagName, c.cfg.TagValue)
	}
	return ""
}

func (c *Collector) matchesFilter(item genericResource) bool {
	if len(c.cfg.ResourceGroups) > 0 {
		group := resourceGroupFromID(item.ID)
		found := false
		for _, rg := range c.cfg.ResourceGroups {
			if strings.EqualFold(rg, group) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.cfg.Types) > 0 {
		found := false
		for _, t := range c.cfg.Types {
			if strings.EqualFold(t, item.Type) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (c *Collector) normalizeResource(item genericResource) *model.Resource {
	raw, _ := json.Marshal(item)
	res := &model.Resource{
		Key:  model.Key{Source: model.SourceAzure, NativeID: item.ID},
		Type: normalizeType(item.Type),
		Name: item.Name,
		Attributes: map[string]interface{}{
			"region":         strings.ToLower(item.Location),
			"resource_group": resourceGroupFromID(item.ID),
			"native_type":    item.Type,
		},
		Tags: derefTags(item.Tags),
		Raw:  raw,
	}
	// The short name links this record to the declarative source, which
	// addresses the same object without the full inventory id.
	res.AddHint(nameFromID(item.ID))
	return res
}

// enrichNetwork reads network interface and public IP properties and folds
// the discovered addresses into identity hints, both on the network resource
// itself and on the virtual machine it is attached to.
func (c *Collector) enrichNetwork(ctx context.Context, result *collector.Result, byID map[string]*model.Resource) {
	vmIPs := make(map[string][]string)

	for _, res := range byID {
		if res.Type != model.TypeNetworkInterface && res.Type != model.TypePublicIP {
			continue
		}

		var props map[string]interface{}
		err := retry.Do(ctx, c.retryCfg, c.logger, "read network resource", func() error {
			var getErr error
			props, getErr = c.api.GetResourceProperties(ctx, res.Key.NativeID)
			return getErr
		})
		if err != nil {
			result.AddWarning("network", fmt.Errorf("resource %s: %w", res.Name, err))
			continue
		}

		ips := collector.ExtractIPAddresses(props)
		for _, ip := range ips {
			res.AddHint(ip)
		}
		if len(ips) > 0 {
			res.Attributes["ip_addresses"] = strings.Join(ips, ",")
		}

		if vm, ok := props["virtualMachine"].(map[string]interface{}); ok {
			if vmID, ok := vm["id"].(string); ok {
				vmIPs[strings.ToLower(vmID)] = append(vmIPs[strings.ToLower(vmID)], ips...)
			}
		}
	}

	for vmID, ips := range vmIPs {
		vm, ok := byID[vmID]
		if !ok {
			continue
		}
		for _, ip := range ips {
			vm.AddHint(ip)
		}
		vm.Attributes["ip_addresses"] = strings.Join(ips, ",")
	}
}

// enrichCompute merges the typed VM attributes the generic listing omits
func (c *Collector) enrichCompute(ctx context.Context, result *collector.Result, byID map[string]*model.Resource) {
	var details []vmDetail
	err := retry.Do(ctx, c.retryCfg, c.logger, "list virtual machines", func() error {
		var listErr error
		details, listErr = c.api.ListVirtualMachines(ctx)
		return listErr
	})
	if err != nil {
		result.AddWarning("compute", err)
		return
	}

	for _, d := range details {
		res, ok := byID[strings.ToLower(d.ID)]
		if !ok {
			continue
		}
		if d.Size != "" {
			res.Attributes["vm_size"] = d.Size
		}
		if d.OSType != "" {
			res.Attributes["os_type"] = strings.ToLower(d.OSType)
		}
		if d.ComputerName != "" {
			res.Attributes["computer_name"] = d.ComputerName
			res.AddHint(d.ComputerName)
		}
	}
}

// enrichStorage merges the typed storage account attributes
func (c *Collector) enrichStorage(ctx context.Context, result *collector.Result, byID map[string]*model.Resource) {
	var details []storageDetail
	err := retry.Do(ctx, c.retryCfg, c.logger, "list storage accounts", func() error {
		var listErr error
		details, listErr = c.api.ListStorageAccounts(ctx)
		return listErr
	})
	if err != nil {
		result.AddWarning("storage", err)
		return
	}

	for _, d := range details {
		res, ok := byID[strings.ToLower(d.ID)]
		if !ok {
			continue
		}
		if d.SKU != "" {
			res.Attributes["sku"] = d.SKU
		}
		if d.Kind != "" {
			res.Attributes["kind"] = d.Kind
		}
	}
}
