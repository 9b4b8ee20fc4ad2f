package tui

import "github.com/charmbracelet/lipgloss"

// palette groups every style the editor renders with so light and dark mode
// can be swapped in one assignment.
type palette struct {
	name        string
	title       lipgloss.Style
	label       lipgloss.Style
	unsaved     lipgloss.Style
	helper      lipgloss.Style
	errorText   lipgloss.Style
	page        lipgloss.Style
	pageFocused lipgloss.Style
	pageNumber  lipgloss.Style
	heading     lipgloss.Style
	bold        lipgloss.Style
	italic      lipgloss.Style
	boldItalic  lipgloss.Style
	embed       lipgloss.Style
	cursor      lipgloss.Style
	statusBar   lipgloss.Style
	confirm     lipgloss.Style
}

func newPalette(dark bool) palette {
	var (
		paper, ink, muted, accent, border lipgloss.Color
		name                              string
	)
	if dark {
		name = "dark"
		paper, ink, muted = lipgloss.Color("#1e1e2e"), lipgloss.Color("#e0def4"), lipgloss.Color("#6e6a86")
		accent, border = lipgloss.Color("#f6c177"), lipgloss.Color("#56526e")
	} else {
		name = "light"
		paper, ink, muted = lipgloss.Color("#fdfdf8"), lipgloss.Color("#1f1f1f"), lipgloss.Color("244")
		accent, border = lipgloss.Color("#ff8c00"), lipgloss.Color("#b8b8b8")
	}
	base := lipgloss.NewStyle().Foreground(ink).Background(paper)
	return palette{
		name:        name,
		title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		label:       lipgloss.NewStyle().Foreground(muted),
		unsaved:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		helper:      lipgloss.NewStyle().Foreground(muted),
		errorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		page:        base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		pageFocused: base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		pageNumber:  lipgloss.NewStyle().Foreground(muted).Italic(true),
		heading:     lipgloss.NewStyle().Bold(true).Underline(true),
		bold:        lipgloss.NewStyle().Bold(true),
		italic:      lipgloss.NewStyle().Italic(true),
		boldItalic:  lipgloss.NewStyle().Bold(true).Italic(true),
		embed:       lipgloss.NewStyle().Foreground(muted).Italic(true),
		cursor:      lipgloss.NewStyle().Reverse(true),
		statusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1),
		confirm:     lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(0, 2),
	}
}
