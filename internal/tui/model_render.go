package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/rowsync/internal/core/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	c := m.coordinator()
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.TitleStyle.Render("rowsync"),
		" ",
		styles.StatusStyle.Render(fmt.Sprintf("owner %s  shape %v", c.Owner(), c.Shape())),
	)

	list := m.board.list.View()
	if !m.board.list.Focused() {
		list = styles.BlurredStyle.Render(list)
	}

	status := styles.StatusStyle.Render(m.board.status)
	if m.board.statusErr {
		status = styles.StatusErrorStyle.Render(styles.IconCross + " " + m.board.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, list, status, m.renderHelp())
}

func (m Model) renderHelp() string {
	return styles.HelpStyle.Render(m.help.View(m.helpKeys()))
}
