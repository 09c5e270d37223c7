package report

import (
	"fmt"
	"io"

	"github.com/unbound-force/testscope/internal/taxonomy"
)

// WriteHTML writes a project analysis as a self-contained HTML report
// with embedded SVG visualizations.
//
// Planned features:
//   - Test class table with sortable columns
//   - Test type breakdown (SVG pie/bar chart)
//   - Collapsible per-class detail sections
//   - Self-contained single-file HTML (embedded CSS/JS)
//   - Light/dark theme support
//
// This is not yet implemented. Use text or json format instead.
func WriteHTML(_ io.Writer, _ taxonomy.ProjectAnalysis) error {
	return fmt.Errorf("HTML report format is not yet implemented")
}
