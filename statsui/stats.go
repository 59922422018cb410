// Package statsui renders accuracy statistics as a table with a cycling
// time-range filter.
package statsui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/earkata/eartui/history"
	"github.com/earkata/eartui/keymap"
	"github.com/earkata/eartui/stats"
	"github.com/earkata/eartui/styles"
)

var docStyle = styles.DocStyle

type (
	// Show asks the model to rebuild from the current history before being
	// displayed.
	Show struct{}

	// Back asks the root model to return to the quiz screen.
	Back struct{}
)

// ranges are the selectable time filters, cycled in order.
var ranges = []struct {
	label  string
	filter func(now time.Time) stats.Filter
}{
	{"All time", func(time.Time) stats.Filter { return stats.All }},
	{"Last 7 days", stats.LastWeek},
	{"Today", stats.SameDay},
}

type Model struct {
	log      *history.Log
	rangeIdx int
	table    table.Model
}

func New(l *history.Log) Model {
	m := Model{log: l}
	m.table = m.makeTable()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width - 10)

	case Show:
		m.table = m.makeTable()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.CycleFilter):
			m.rangeIdx = (m.rangeIdx + 1) % len(ranges)
			m.table = m.makeTable()
		case key.Matches(msg, keymap.DefaultMapping.GoBack):
			return m, func() tea.Msg { return Back{} }
		}
	}

	newTable, cmd := m.table.Update(msg)
	m.table = newTable
	return m, cmd
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	doc.WriteString(styles.BoldStyle.Render("Accuracy — "+ranges[m.rangeIdx].label) + "\n")
	doc.WriteString(styles.BaseStyle.Width(styles.Width).Render(m.table.View()))
	doc.WriteString("\n" + styles.HelpMenu.Render(
		styles.SubtleStyle.Render("f: cycle range · esc: back · ctrl+c: quit")))

	if physicalWidth > 0 {
		docStyle = styles.DocStyle.MaxWidth(physicalWidth)
	}
	return docStyle.Render(doc.String())
}

func (m Model) makeTable() table.Model {
	summary := stats.Summarize(m.log.All(), ranges[m.rangeIdx].filter(time.Now()))

	columns := []table.Column{
		{Title: "Pitch", Width: 8},
		{Title: "Attempts", Width: 10},
		{Title: "Correct", Width: 10},
		{Title: "Accuracy", Width: 10},
	}

	rows := make([]table.Row, 0, len(summary.PerClass)+1)
	rows = append(rows, lineRow(summary.Overall))
	for _, l := range summary.PerClass {
		rows = append(rows, lineRow(l))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func lineRow(l stats.Line) table.Row {
	return table.Row{
		l.Label,
		fmt.Sprintf("%d", l.Total),
		fmt.Sprintf("%d", l.Correct),
		fmt.Sprintf("%d%%", l.Pct),
	}
}
