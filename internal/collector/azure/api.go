package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	armcompute "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	armresources "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	armstorage "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// networkAPIVersion is used for point reads of network resources
const networkAPIVersion = "2023-09-01"

// genericResource is the slim view of an inventory record the collector
// normalizes from.
type genericResource struct {
	ID       string
	Name     string
	Type     string
	Location string
	Tags     map[string]*string
}

// vmDetail carries the compute attributes the generic listing omits
type vmDetail struct {
	ID           string
	Size         string
	OSType       string
	ComputerName string
}

// storageDetail carries the storage attributes the generic listing omits
type storageDetail struct {
	ID   string
	SKU  string
	Kind string
}

// inventoryAPI abstracts the cloud inventory service so the collector can be
// exercised against a fake in tests.
type inventoryAPI interface {
	ListResources(ctx context.Context, filter string) ([]genericResource, error)
	GetResourceProperties(ctx context.Context, resourceID string) (map[string]interface{}, error)
	ListVirtualMachines(ctx context.Context) ([]vmDetail, error)
	ListStorageAccounts(ctx context.Context) ([]storageDetail, error)
}

// armAPI implements inventoryAPI against Azure Resource Manager
type armAPI struct {
	resources *armresources.Client
	compute   *armcompute.VirtualMachinesClient
	storage   *armstorage.AccountsClient
}

func newARMAPI(cfg Config) (*armAPI, error) {
	cred, err := buildCredential(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential: %w", err)
	}

	resClient, err := armresources.NewClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	vmClient, err := armcompute.NewVirtualMachinesClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	stClient, err := armstorage.NewAccountsClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	return &armAPI{resources: resClient, compute: vmClient, storage: stClient}, nil
}

func buildCredential(cfg Config) (azcore.TokenCredential, error) {
	if cfg.TenantID != "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		return azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	}
	return azidentity.NewDefaultAzureCredential(nil)
}

func (a *armAPI) ListResources(ctx context.Context, filter string) ([]genericResource, error) {
	opts := &armresources.ClientListOptions{}
	if filter != "" {
		opts.Filter = to.Ptr(filter)
	}

	var out []genericResource
	pager := a.resources.NewListPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, res := range page.Value {
			if res == nil {
				continue
			}
			out = append(out, genericResource{
				ID:       deref(res.ID),
				Name:     deref(res.Name),
				Type:     deref(res.Type),
				Location: deref(res.Location),
				Tags:     res.Tags,
			})
		}
	}
	return out, nil
}

func (a *armAPI) GetResourceProperties(ctx context.Context, resourceID string) (map[string]interface{}, error) {
	resp, err := a.resources.GetByID(ctx, resourceID, networkAPIVersion, nil)
	if err != nil {
		return nil, err
	}
	props, _ := resp.Properties.(map[string]interface{})
	return props, nil
}

func (a *armAPI) ListVirtualMachines(ctx context.Context) ([]vmDetail, error) {
	var out []vmDetail
	pager := a.compute.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, vm := range page.Value {
			if vm == nil || vm.ID == nil {
				continue
			}
			detail := vmDetail{ID: *vm.ID}
			if vm.Properties != nil {
				if hw := vm.Properties.HardwareProfile; hw != nil && hw.VMSize != nil {
					detail.Size = string(*hw.VMSize)
				}
				if os := vm.Properties.OSProfile; os != nil {
					detail.ComputerName = deref(os.ComputerName)
				}
				if sp := vm.Properties.StorageProfile; sp != nil && sp.OSDisk != nil && sp.OSDisk.OSType != nil {
					detail.OSType = string(*sp.OSDisk.OSType)
				}
			}
			out = append(out, detail)
		}
	}
	return out, nil
}

func (a *armAPI) ListStorageAccounts(ctx context.Context) ([]storageDetail, error) {
	var out []storageDetail
	pager := a.storage.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, acc := range page.Value {
			if acc == nil || acc.ID == nil {
				continue
			}
			detail := storageDetail{ID: *acc.ID}
			if acc.SKU != nil && acc.SKU.Name != nil {
				detail.SKU = string(*acc.SKU.Name)
			}
			if acc.Kind != nil {
				detail.Kind = string(*acc.Kind)
			}
			out = append(out, detail)
		}
	}
	return out, nil
}
