package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/store"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// CalculationListModel - Interactive saved calculation selection
// =============================================================================

// CalculationListModel is the bubbletea model for picking a saved calculation.
type CalculationListModel struct {
	Calculations []store.Calculation
	Cursor       int
	Selected     *store.Calculation
	Height       int
	Offset       int

	// now is the reference time for relative dates.
	now time.Time
}

// NewCalculationListModel creates a new list model over calcs, newest first.
func NewCalculationListModel(calcs []store.Calculation) CalculationListModel {
	return CalculationListModel{
		Calculations: calcs,
		Height:       15,
		now:          time.Now(),
	}
}

func (m CalculationListModel) Init() tea.Cmd {
	return nil
}

func (m CalculationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Calculations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Calculations) == 0 {
				return m, tea.Quit
			}
			calc := m.Calculations[m.Cursor]
			m.Selected = &calc
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m CalculationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Saved Calculations"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Calculations) == 0 {
		b.WriteString(listDimStyle.Render("  no saved calculations"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Calculations))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		c := m.Calculations[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, calculationRow(cursor, c, m.now))
	}

	t := calculationTable(rows, func(row int) bool { return m.Offset+row == m.Cursor })
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Calculations))))

	return b.String()
}

// calculationRow renders one saved calculation as table cells.
func calculationRow(lead string, c store.Calculation, now time.Time) []string {
	return []string{
		lead,
		c.Name,
		c.Topology,
		enclosure.FormatTenth(c.VolumeLiters) + " L",
		c.Dimensions().String(),
		formatRelativeTime(c.CreatedAt, now),
	}
}

// calculationTable lays out calculation rows; current marks the highlighted row.
func calculationTable(rows [][]string, current func(row int) bool) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Type", "Volume", "Box", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorGray)
			}
			if current != nil && current(row) {
				if col < 3 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})
}

// formatRelativeTime renders t as "5m ago", "3h ago", "2d ago" or a date.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
