package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/infrascope/infrascope/internal/graph"
	"github.com/infrascope/infrascope/internal/model"
)

// writeReport renders the report in the requested format
func writeReport(report *graph.Report, format, path string) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "summary":
		return writeSummary(out, report)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Serialize())
	}
}

func writeSummary(out io.Writer, report *graph.Report) error {
	doc := report.Serialize()

	fmt.Fprintf(out, "Run %s (%s)\n\n", doc.RunID, doc.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	for _, source := range []model.Source{model.SourceTerraform, model.SourceAzure, model.SourceF5XC} {
		status, ok := doc.Completeness[source]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %-10s %-8s %d resources\n", source, status, len(report.ResourcesBySource(source)))
	}

	fmt.Fprintf(out, "\nRelationships: %d\n", len(doc.Relationships))
	byType := make(map[model.RelationshipType]int)
	for _, rel := range doc.Relationships {
		byType[rel.Type]++
	}
	for _, t := range []model.RelationshipType{model.RelIdentityMatch, model.RelNetworkMatch, model.RelTagMatch, model.RelDependency} {
		if n := byType[t]; n > 0 {
			fmt.Fprintf(out, "  %-15s %d\n", t, n)
		}
	}

	fmt.Fprintf(out, "\nDrift findings: %d\n", len(doc.Drift))
	for _, f := range doc.Drift {
		fmt.Fprintf(out, "  [%s] %s: %s declared=%v observed=%v\n",
			f.Severity, f.Declared, f.Field, f.DeclaredValue, f.ObservedValue)
	}

	if len(doc.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings: %d\n", len(doc.Warnings))
		for _, w := range doc.Warnings {
			fmt.Fprintf(out, "  %s/%s: %s\n", w.Component, w.ID, w.Cause)
		}
	}

	return nil
}
