package terraform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/infrascope/infrascope/internal/model"
)

// scanConfigDir parses HCL configuration files and returns resources that
// are declared but not present in state. Attribute values are recovered on a
// best-effort basis: only literal expressions evaluate without a context.
func (c *Collector) scanConfigDir(seen map[string]bool) ([]model.Resource, error) {
	files, err := filepath.Glob(filepath.Join(c.cfg.ConfigDir, "*.tf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration files: %w", err)
	}

	parser := hclparse.NewParser()
	var out []model.Resource

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(file), err)
		}

		parsed, diags := parser.ParseHCL(content, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %s", filepath.Base(file), diags.Error())
		}

		body, ok := parsed.Body.(*hclsyntax.Body)
		if !ok {
			continue
		}

		for _, block := range body.Blocks {
			if block.Type != "resource" || len(block.Labels) != 2 {
				continue
			}
			resType, resName := block.Labels[0], block.Labels[1]
			addr := fmt.Sprintf("%s.%s", resType, resName)
			if seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, c.declaredOnlyResource(resType, resName, addr, block))
		}
	}

	if len(out) > 0 {
		c.logger.WithFields(map[string]interface{}{"count": len(out)}).Debug("declared-only resources recovered from configuration")
	}
	return out, nil
}

func (c *Collector) declaredOnlyResource(resType, resName, addr string, block *hclsyntax.Block) model.Resource {
	resource := model.Resource{
		Key:        model.Key{Source: model.SourceTerraform, NativeID: addr},
		Type:       normalizeType(resType),
		Name:       resName,
		Attributes: map[string]interface{}{"declared_only": true},
		Tags:       map[string]string{},
	}

	for name, attr := range block.Body.Attributes {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			continue
		}
		if name == "tags" && value.Type().IsObjectType() {
			for key, tagVal := range value.AsValueMap() {
				if tagVal.Type() == cty.String {
					resource.Tags[key] = tagVal.AsString()
				}
			}
			continue
		}
		if converted, ok := ctyToGo(value); ok {
			resource.Attributes[aliasKey(name)] = converted
		}
	}

	return resource
}

// ctyToGo converts a literal cty value to a plain Go value
func ctyToGo(value cty.Value) (interface{}, bool) {
	if value.IsNull() || !value.IsKnown() {
		return nil, false
	}
	switch value.Type() {
	case cty.String:
		return value.AsString(), true
	case cty.Number:
		f, _ := value.AsBigFloat().Float64()
		return f, true
	case cty.Bool:
		return value.True(), true
	default:
		return nil, false
	}
}
