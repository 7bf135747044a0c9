package terraform

// State represents a Terraform state file structure
type State struct {
	Version          int             `json:"version"`
	TerraformVersion string          `json:"terraform_version"`
	Serial           int             `json:"serial"`
	Lineage          string          `json:"lineage"`
	Resources        []StateResource `json:"resources"`
}

// StateResource represents a resource in the Terraform state
type StateResource struct {
	Module    string          `json:"module,omitempty"`
	Mode      string          `json:"mode"` // "managed" or "data"
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	Instances []StateInstance `json:"instances"`
}

// StateInstance represents an instance of a resource
type StateInstance struct {
	SchemaVersion int                    `json:"schema_version"`
	Attributes    map[string]interface{} `json:"attributes"`
	Dependencies  []string               `json:"dependencies,omitempty"`
	IndexKey      interface{}            `json:"index_key,omitempty"` // for count/for_each
}
