package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	typeUIStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	typeAPIStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	typeUnitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
)

// analyzeModel is the Bubble Tea model for browsing analysis results.
type analyzeModel struct {
	analysis taxonomy.ProjectAnalysis
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newAnalyzeModel(analysis taxonomy.ProjectAnalysis) analyzeModel {
	h := help.New()
	content := renderAnalyzeContent(analysis)
	return analyzeModel{
		analysis: analysis,
		help:     h,
		keys:     defaultKeyMap,
		content:  content,
	}
}

func renderAnalyzeContent(analysis taxonomy.ProjectAnalysis) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("Testscope: %s, %d class(es), %d test method(s)",
			analysis.Project, analysis.Totals.TestClasses, analysis.Totals.TestMethods)))
	sb.WriteString("\n\n")

	for _, cls := range analysis.Classes {
		sb.WriteString(tuiHeaderStyle.Render(fmt.Sprintf("=== %s ===", cls.Class)))
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(fmt.Sprintf(
			"    frameworks: %s", strings.Join(cls.Frameworks, ", "))))
		sb.WriteString("\n")

		if len(cls.Methods) == 0 {
			sb.WriteString(statusStyle.Render("    No test methods found."))
			sb.WriteString("\n\n")
			continue
		}

		// Build method table.
		rows := make([][]string, 0, len(cls.Methods))
		for _, m := range cls.Methods {
			sig := m.Signature
			if len(sig) > 40 {
				sig = sig[:37] + "..."
			}
			focal := ""
			if len(m.FocalClasses) > 0 {
				focal = m.FocalClasses[0].Name
				if i := strings.LastIndexByte(focal, '.'); i >= 0 {
					focal = focal[i+1:]
				}
			}
			rows = append(rows, []string{
				string(m.TestType),
				sig,
				focal,
				fmt.Sprintf("%d", m.AssertionCount()),
			})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				if col == 0 && row >= 0 && row < len(rows) {
					switch rows[row][0] {
					case "ui":
						return typeUIStyle
					case "api":
						return typeAPIStyle
					case "unit":
						return typeUnitStyle
					}
				}
				return lipgloss.NewStyle()
			}).
			Headers("TYPE", "METHOD", "FOCAL", "ASSERTS").
			Rows(rows...)

		sb.WriteString(t.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (m analyzeModel) Init() tea.Cmd {
	return nil
}

func (m analyzeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 0
		footerHeight := 2
		verticalMargin := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m analyzeModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveAnalyze launches the Bubble Tea TUI for browsing
// analysis results.
func runInteractiveAnalyze(analysis taxonomy.ProjectAnalysis) error {
	model := newAnalyzeModel(analysis)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
