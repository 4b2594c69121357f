package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/reviewfeed/internal/core/styles"
)

func (m Model) View() string {
	if !m.ready {
		return ""
	}

	title := styles.TitleStyle.Render(m.opts.Title)

	if m.state.IsLoading && m.state.IsInitialLoad {
		body := lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading reviews")
		return lipgloss.JoinVertical(lipgloss.Left, title, body, m.footer())
	}

	if len(m.state.Items) == 0 && m.state.LastError != nil {
		msg := styles.ErrorStyle.Render("Could not load reviews: "+m.state.LastError.Error()) +
			"\n" + styles.HelpStyle.Render("press r to try again")
		body := lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, msg)
		return lipgloss.JoinVertical(lipgloss.Left, title, body, m.footer())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), m.footer())
}

func (m Model) footer() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}

	var status string
	switch {
	case m.status != "":
		status = styles.ErrorStyle.Render(m.status)
	case m.state.IsLoading:
		status = m.spinner.View() + styles.StatusStyle.Render(" loading more")
	case m.state.LastError != nil:
		status = styles.ErrorStyle.Render("page failed, scroll to retry")
	case len(m.state.Items) > 0:
		status = styles.StatusStyle.Render(fmt.Sprintf("%d/%d", m.selected+1, len(m.state.Items)))
	}

	help := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := max(1, m.width-lipgloss.Width(status)-lipgloss.Width(help))
	return status + lipgloss.NewStyle().Width(gap).Render("") + help
}
