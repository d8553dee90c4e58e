package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/uiadoption/pkg/inventory"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// resultListModel - Interactive report browser
// =============================================================================

// resultListModel lists the repositories of one report. Enter toggles the
// component breakdown of the selected repository.
type resultListModel struct {
	name     string
	results  []inventory.Result
	cursor   int
	offset   int
	height   int
	expanded bool
}

func newResultListModel(name string, results []inventory.Result) resultListModel {
	return resultListModel{name: name, results: results, height: 15}
}

func (m resultListModel) Init() tea.Cmd {
	return nil
}

func (m resultListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.expanded {
				m.expanded = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.results)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			m.expanded = !m.expanded
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	}
	return m, nil
}

func (m resultListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Report " + m.name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ components  q quit"))
	b.WriteString("\n\n")

	if m.expanded && m.cursor < len(m.results) {
		b.WriteString(m.detailView(m.results[m.cursor]))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.results))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.results[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor, r.Repo, string(r.Variant), joinVersions(r.Versions),
			strconv.Itoa(r.Count), formatRelativeTime(r.PushedAt),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "lib", "Versions", "Components", "Pushed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = base.Align(lipgloss.Right)
			}
			if col == 5 {
				base = base.Foreground(colorDim)
			}
			if m.offset+row == m.cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.results))))
	return b.String()
}

func (m resultListModel) detailView(r inventory.Result) string {
	var b strings.Builder
	b.WriteString(keyValue("Repository", r.Repo) + "\n")
	if r.HTMLURL != "" {
		b.WriteString(keyValue("URL", StyleLink.Render(r.HTMLURL)) + "\n")
	}
	b.WriteString(keyValue("Library", fmt.Sprintf("%s (%s)", r.Variant.Label(), r.Variant)) + "\n")
	b.WriteString(keyValue("Versions", joinVersions(r.Versions)) + "\n")
	b.WriteString(keyValue("Components", strconv.Itoa(r.Count)) + "\n")
	b.WriteString(keyValue("Pushed", formatRelativeTime(r.PushedAt)) + "\n")
	if len(r.Elements) > 0 {
		b.WriteString(newTable([]string{"Component", "Uses"}, elementRows(r.Elements), 1).Render())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back"))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(s string) string {
	if s == "" {
		return "—"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
