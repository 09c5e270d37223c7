// Package report provides output formatters for testscope analysis
// results in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/testscope/internal/taxonomy"
)

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version string                   `json:"version"`
	Project taxonomy.ProjectAnalysis `json:"project"`
}

// WriteJSON writes a project analysis as formatted JSON to the
// writer. The version parameter is the output schema version.
func WriteJSON(w io.Writer, analysis taxonomy.ProjectAnalysis, version string) error {
	if analysis.Classes == nil {
		analysis.Classes = []taxonomy.TestClassAnalysis{}
	}
	report := JSONReport{
		Version: version,
		Project: analysis,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
