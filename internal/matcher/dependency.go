package matcher

import (
	"fmt"

	"github.com/infrascope/infrascope/internal/model"
)

// dependencyEdges builds dependency relationships from the references a
// resource declares against other resources of its own source. This never
// runs across sources: only the declarative source carries dependency
// references, and they resolve within its own document.
func dependencyEdges(resources []model.Resource) []model.Relationship {
	byKey := make(map[model.Key]bool, len(resources))
	for _, res := range resources {
		byKey[res.Key] = true
	}

	var out []model.Relationship
	for _, res := range resources {
		for _, dep := range res.Dependencies {
			target := model.Key{Source: res.Key.Source, NativeID: dep}
			if target == res.Key || !byKey[target] {
				continue
			}
			out = append(out, model.Relationship{
				From:       res.Key,
				To:         target,
				Type:       model.RelDependency,
				Confidence: 1.0,
				Evidence:   fmt.Sprintf("declared dependency on %s", dep),
			})
		}
	}
	return out
}
