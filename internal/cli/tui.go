package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphweave/pkg/detect"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PairListModel - Interactive edge pair selection
// =============================================================================

// PairListModel is the bubbletea model for picking a candidate edge pair.
type PairListModel struct {
	Pairs    []detect.ColumnPair
	Cursor   int
	Selected *detect.ColumnPair
	Height   int
	Offset   int
}

// NewPairListModel creates a new pair list model.
func NewPairListModel(pairs []detect.ColumnPair) PairListModel {
	return PairListModel{
		Pairs:  pairs,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m PairListModel) Init() tea.Cmd {
	return nil
}

func (m PairListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Pairs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			pair := m.Pairs[m.Cursor]
			m.Selected = &pair
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PairListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Edge Columns"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Pairs) {
		end = len(m.Pairs)
	}

	for i := m.Offset; i < end; i++ {
		p := m.Pairs[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%s%s %s %s", cursor, p.Source, iconArrow, p.Target)
		b.WriteString(style.Render(line))
		b.WriteString(" ")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d shared", p.Score)))
		b.WriteString("\n")
	}

	if len(m.Pairs) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d of %d", m.Cursor+1, len(m.Pairs))))
	}

	return b.String()
}
