package azure

import (
	"strings"

	"github.com/infrascope/infrascope/internal/model"
)

// typeVocabulary maps Azure resource types onto the shared controlled
// vocabulary. Keys are lowercase; unlisted types normalize to generic.
var typeVocabulary = map[string]model.ResourceType{
	"microsoft.compute/virtualmachines":          model.TypeVirtualMachine,
	"microsoft.compute/virtualmachinescalesets":  model.TypeVirtualMachine,
	"microsoft.network/virtualnetworks":          model.TypeNetwork,
	"microsoft.network/virtualnetworks/subnets":  model.TypeSubnet,
	"microsoft.network/networkinterfaces":        model.TypeNetworkInterface,
	"microsoft.network/publicipaddresses":        model.TypePublicIP,
	"microsoft.network/networksecuritygroups":    model.TypeSecurityGroup,
	"microsoft.network/loadbalancers":            model.TypeLoadBalancer,
	"microsoft.network/applicationgateways":      model.TypeLoadBalancer,
	"microsoft.storage/storageaccounts":          model.TypeStorage,
}

// normalizeType maps an Azure resource type into the controlled vocabulary
func normalizeType(azureType string) model.ResourceType {
	if t, ok := typeVocabulary[strings.ToLower(azureType)]; ok {
		return t
	}
	return model.TypeGeneric
}

// resourceGroupFromID extracts the resource group name from a full resource
// ID of the form /subscriptions/{sub}/resourceGroups/{rg}/providers/...
func resourceGroupFromID(resourceID string) string {
	parts := strings.Split(resourceID, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// nameFromID returns the trailing segment of a resource ID. It is recorded
// as an identity hint: the declarative source addresses the same object by
// its short name.
func nameFromID(resourceID string) string {
	parts := strings.Split(resourceID, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// derefTags converts the SDK's pointer-valued tag map into the flat schema map
func derefTags(in map[string]*string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[strings.ToLower(k)] = *v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
