package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// WriteText writes a project analysis as human-readable styled text
// to the writer. Output uses lipgloss for color and formatting when
// the output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, analysis taxonomy.ProjectAnalysis) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("Project: %s", analysis.Project)))

	for _, cls := range analysis.Classes {
		fmt.Fprintln(w)
		writeOneClass(w, cls, s)
	}

	writeSummary(w, analysis.Totals, s)
	return nil
}

func writeOneClass(w io.Writer, cls taxonomy.TestClassAnalysis, s Styles) {
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", cls.Class)))
	frameworks := strings.Join(cls.Frameworks, ", ")
	if frameworks == "" {
		frameworks = "none detected"
	}
	if cls.IsBDD {
		frameworks += " (BDD)"
	}
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    frameworks: %s", frameworks)))
	if n := len(cls.Setups) + len(cls.Teardowns); n > 0 {
		fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf(
			"    fixtures: %d setup, %d teardown", len(cls.Setups), len(cls.Teardowns))))
	}

	if len(cls.Methods) == 0 && len(cls.Skipped) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No test methods found."))
		return
	}

	fmt.Fprintln(w)

	// Method table. Budget: 80 cols total. Borders take ~5 (outer
	// plus 3 inner). Padding: 1 space each side per column = 8 cols.
	// Available: 80 - 5 - 8 = 67. TYPE=11, METHOD=30, FOCAL=19, ASRT=7.
	const maxMethod = 30
	const maxFocal = 19
	rows := make([][]string, 0, len(cls.Methods))
	for _, m := range cls.Methods {
		focal := ""
		if len(m.FocalClasses) > 0 {
			focal = simpleName(m.FocalClasses[0].Name)
			if len(m.FocalClasses) > 1 {
				focal += fmt.Sprintf(" +%d", len(m.FocalClasses)-1)
			}
		}
		rows = append(rows, []string{
			string(m.TestType),
			truncate(m.Signature, maxMethod),
			truncate(focal, maxFocal),
			fmt.Sprintf("%d", m.AssertionCount()),
		})
	}

	t := table.New().
		Width(76). // Leave 4 chars for left indent.
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			// Color the type column based on scope label.
			if col == 0 && row >= 0 && row < len(rows) {
				return s.TypeStyle(rows[row][0])
			}
			return s.TableCell
		}).
		Headers("TYPE", "METHOD", "FOCAL", "ASSERTS").
		Rows(rows...)

	fmt.Fprintln(w, t)

	for _, sig := range cls.Skipped {
		fmt.Fprintln(w, s.Warn.Render(fmt.Sprintf("    skipped: %s", truncate(sig, 60))))
	}
}

func writeSummary(w io.Writer, totals taxonomy.Totals, s Styles) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("Summary"))

	line := func(label string, value string) {
		fmt.Fprintf(w, "%s %s\n",
			s.SummaryLabel.Render(label), s.SummaryValue.Render(value))
	}
	line("Test classes", fmt.Sprintf("%d", totals.TestClasses))
	line("Test methods", fmt.Sprintf("%d", totals.TestMethods))
	if totals.Skipped > 0 {
		line("Skipped", fmt.Sprintf("%d", totals.Skipped))
	}
	line("Assertions", fmt.Sprintf("%d", totals.Assertions))
	line("Mocks", fmt.Sprintf("%d", totals.Mocks))

	if len(totals.TestTypes) > 0 {
		var parts []string
		for _, tt := range []taxonomy.TestType{
			taxonomy.TestTypeUI, taxonomy.TestTypeAPI,
			taxonomy.TestTypeLibrary, taxonomy.TestTypeUnit,
			taxonomy.TestTypeIntegration, taxonomy.TestTypeUnknown,
		} {
			if c, ok := totals.TestTypes[tt]; ok {
				styled := s.TypeStyle(string(tt)).Render(
					fmt.Sprintf("%s: %d", tt, c))
				parts = append(parts, styled)
			}
		}
		line("Test types", strings.Join(parts, ", "))
	}

	if len(totals.Frameworks) > 0 {
		names := make([]string, 0, len(totals.Frameworks))
		for name := range totals.Frameworks {
			names = append(names, name)
		}
		sort.Strings(names)
		var parts []string
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %d", name, totals.Frameworks[name]))
		}
		line("Frameworks", strings.Join(parts, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func simpleName(class string) string {
	if i := strings.LastIndexByte(class, '.'); i >= 0 {
		return class[i+1:]
	}
	return class
}
