package terraform

import (
	"strings"

	"github.com/infrascope/infrascope/internal/model"
)

// typeVocabulary maps Terraform resource types onto the shared controlled
// vocabulary. Unlisted types normalize to generic.
var typeVocabulary = map[string]model.ResourceType{
	"azurerm_virtual_machine":            model.TypeVirtualMachine,
	"azurerm_linux_virtual_machine":      model.TypeVirtualMachine,
	"azurerm_windows_virtual_machine":    model.TypeVirtualMachine,
	"azurerm_virtual_machine_scale_set":  model.TypeVirtualMachine,
	"azurerm_virtual_network":            model.TypeNetwork,
	"azurerm_subnet":                     model.TypeSubnet,
	"azurerm_network_interface":          model.TypeNetworkInterface,
	"azurerm_public_ip":                  model.TypePublicIP,
	"azurerm_network_security_group":     model.TypeSecurityGroup,
	"azurerm_lb":                         model.TypeLoadBalancer,
	"azurerm_application_gateway":        model.TypeLoadBalancer,
	"azurerm_storage_account":            model.TypeStorage,
	"volterra_http_loadbalancer":         model.TypeLoadBalancer,
	"volterra_origin_pool":               model.TypeOriginPool,
	"volterra_azure_vnet_site":           model.TypeSite,
}

// computedAttributes are provider-generated values that carry no declared
// intent and are excluded from the normalized attribute map. Identity hints
// are extracted from the raw attributes before this filter runs.
var computedAttributes = map[string]bool{
	"id":                 true,
	"virtual_machine_id": true,
	"unique_id":          true,
	"guid":               true,
	"etag":               true,
}

// normalizeType maps a Terraform resource type into the controlled vocabulary
func normalizeType(terraformType string) model.ResourceType {
	if t, ok := typeVocabulary[terraformType]; ok {
		return t
	}
	return model.TypeGeneric
}

// attributeAliases renames source-specific attribute keys to the shared ones
var attributeAliases = map[string]string{
	"location": "region",
}

func aliasKey(key string) string {
	if alias, ok := attributeAliases[key]; ok {
		return alias
	}
	return key
}

// stringAttr returns a string-typed attribute or ""
func stringAttr(attrs map[string]interface{}, key string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// dependencyID strips the instance index from a depends_on address so it
// resolves against the native id of the target resource.
func dependencyID(dep string) string {
	if i := strings.IndexByte(dep, '['); i > 0 {
		return dep[:i]
	}
	return dep
}
