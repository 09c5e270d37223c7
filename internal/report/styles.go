package report

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers (e.g. "=== ClassName ===").
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// TypeUI through TypeUnknown color-code test scope labels.
	TypeUI          lipgloss.Style
	TypeAPI         lipgloss.Style
	TypeLibrary     lipgloss.Style
	TypeUnit        lipgloss.Style
	TypeIntegration lipgloss.Style
	TypeUnknown     lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// SummaryLabel styles summary line labels.
	SummaryLabel lipgloss.Style

	// SummaryValue styles summary line values.
	SummaryValue lipgloss.Style

	// Warn styles skipped-method and warning lines.
	Warn lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		TypeUI:          lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		TypeAPI:         lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		TypeLibrary:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		TypeUnit:        lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		TypeIntegration: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		TypeUnknown:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		SummaryLabel: lipgloss.NewStyle().Bold(true).Width(20),
		SummaryValue: lipgloss.NewStyle(),

		Warn: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// TypeStyle returns the appropriate style for a given test type string.
func (s Styles) TypeStyle(testType string) lipgloss.Style {
	switch testType {
	case "ui":
		return s.TypeUI
	case "api":
		return s.TypeAPI
	case "library":
		return s.TypeLibrary
	case "unit":
		return s.TypeUnit
	case "integration":
		return s.TypeIntegration
	default:
		return s.TypeUnknown
	}
}
