// Package drift compares field values between declared and observed state
// for identity-matched resource pairs.
package drift

import (
	"fmt"
	"sort"
	"strings"

	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/metrics"
)

// tagsField selects per-key comparison of the tag maps
const tagsField = "tags"

// SourcePair is an ordered eligible pair: the first source holds declared
// state, the second observed state.
type SourcePair struct {
	Declared model.Source `yaml:"declared"`
	Observed model.Source `yaml:"observed"`
}

// Config controls which pairs and fields are drift-checked
type Config struct {
	// Fields names the attributes to compare; the special field "tags"
	// compares the tag maps key by key.
	Fields []string
	// Tolerance is the allowed absolute difference per numeric field.
	Tolerance map[string]float64
	// SourcePairs is the eligibility predicate: only identity-matched pairs
	// from a listed source pair are checked.
	SourcePairs []SourcePair
}

// DefaultConfig compares region and tags between the declarative and cloud
// inventory sources.
func DefaultConfig() Config {
	return Config{
		Fields: []string{"region", tagsField},
		SourcePairs: []SourcePair{
			{Declared: model.SourceTerraform, Observed: model.SourceAzure},
		},
	}
}

// Detector detects configuration drift on matched resource pairs
type Detector struct {
	cfg    Config
	logger *logger.Logger
}

// New creates a drift detector
func New(cfg Config, log *logger.Logger) *Detector {
	return &Detector{cfg: cfg, logger: log.With("component", "drift")}
}

// Detect evaluates every retained identity-match edge whose sources form an
// eligible pair and returns the field-level findings.
func (d *Detector) Detect(resources map[model.Key]*model.Resource, relationships []model.Relationship) []model.DriftFinding {
	var findings []model.DriftFinding

	for _, rel := range relationships {
		if rel.Type != model.RelIdentityMatch {
			continue
		}
		declared, observed, eligible := d.eligiblePair(rel)
		if !eligible {
			continue
		}
		declaredRes, ok := resources[declared]
		if !ok {
			continue
		}
		observedRes, ok := resources[observed]
		if !ok {
			continue
		}
		findings = append(findings, d.comparePair(declaredRes, observedRes)...)
	}

	for _, f := range findings {
		metrics.RecordDrift(string(f.Severity))
	}
	d.logger.WithFields(map[string]interface{}{"findings": len(findings)}).Info("drift detection completed")

	return findings
}

// eligiblePair orients the edge into (declared, observed) keys if its
// sources form a configured pair.
func (d *Detector) eligiblePair(rel model.Relationship) (model.Key, model.Key, bool) {
	for _, pair := range d.cfg.SourcePairs {
		if rel.From.Source == pair.Declared && rel.To.Source == pair.Observed {
			return rel.From, rel.To, true
		}
		if rel.To.Source == pair.Declared && rel.From.Source == pair.Observed {
			return rel.To, rel.From, true
		}
	}
	return model.Key{}, model.Key{}, false
}

func (d *Detector) comparePair(declared, observed *model.Resource) []model.DriftFinding {
	var findings []model.DriftFinding

	for _, field := range d.cfg.Fields {
		if field == tagsField {
			findings = append(findings, d.compareTags(declared, observed)...)
			continue
		}
		if f := d.compareField(declared, observed, field); f != nil {
			findings = append(findings, *f)
		}
	}

	return findings
}

func (d *Detector) compareField(declared, observed *model.Resource, field string) *model.DriftFinding {
	dv, dok := declared.Attribute(field)
	ov, ook := observed.Attribute(field)

	switch {
	case !dok && !ook:
		return nil
	case dok != ook:
		// Present on one side only.
		return &model.DriftFinding{
			Declared:      declared.Key,
			Observed:      observed.Key,
			Field:         field,
			DeclaredValue: dv,
			ObservedValue: ov,
			Severity:      model.SeverityWarning,
			Code:          model.DriftFieldMissing,
		}
	}

	if d.valuesEqual(field, dv, ov) {
		return nil
	}
	return &model.DriftFinding{
		Declared:      declared.Key,
		Observed:      observed.Key,
		Field:         field,
		DeclaredValue: dv,
		ObservedValue: ov,
		Severity:      model.SeverityError,
		Code:          model.DriftValueMismatch,
	}
}

func (d *Detector) compareTags(declared, observed *model.Resource) []model.DriftFinding {
	var findings []model.DriftFinding

	merged := make(map[string]bool, len(declared.Tags)+len(observed.Tags))
	for k := range declared.Tags {
		merged[k] = true
	}
	for k := range observed.Tags {
		merged[k] = true
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		dv, dok := declared.Tags[key]
		ov, ook := observed.Tags[key]
		field := tagsField + "." + key

		if dok != ook {
			findings = append(findings, model.DriftFinding{
				Declared:      declared.Key,
				Observed:      observed.Key,
				Field:         field,
				DeclaredValue: tagValue(dv, dok),
				ObservedValue: tagValue(ov, ook),
				Severity:      model.SeverityWarning,
				Code:          model.DriftFieldMissing,
			})
			continue
		}
		if dv != ov {
			findings = append(findings, model.DriftFinding{
				Declared:      declared.Key,
				Observed:      observed.Key,
				Field:         field,
				DeclaredValue: dv,
				ObservedValue: ov,
				Severity:      model.SeverityError,
				Code:          model.DriftValueMismatch,
			})
		}
	}

	return findings
}

func tagValue(v string, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

// valuesEqual compares two field values: numerics within the configured
// tolerance, strings case-insensitively (enumerated values such as region
// names differ only in casing between sources).
func (d *Detector) valuesEqual(field string, a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			diff := af - bf
			if diff < 0 {
				diff = -diff
			}
			return diff <= d.cfg.Tolerance[field]
		}
	}

	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		return strings.EqualFold(as, bs)
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
