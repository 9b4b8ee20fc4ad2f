package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	if m.stage == stageConfirmQuit {
		return joinNonEmpty([]string{m.headerView(), m.confirmView()})
	}
	m.refreshViewport()
	parts := []string{m.headerView(), m.viewport.View(), m.statusView()}
	if m.errorMessage != "" {
		parts = append(parts, m.palette.errorText.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.running > 0 && m.prefs.Animations {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, m.palette.helper.Render(message))
	}
	parts = append(parts, m.help.View(m.keys))
	return joinNonEmpty(parts)
}

func (m *model) headerView() string {
	title := m.config.Title
	if title == "" {
		title = "Untitled document"
	}
	label := m.palette.label.Render(m.label)
	if m.label == labelUnsaved {
		label = m.palette.unsaved.Render(m.label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.palette.title.Render(title), "  ", label)
}

func (m *model) statusView() string {
	cur, _ := m.ctrl.Cursor()
	parts := []string{
		fmt.Sprintf("Page %d of %d", cur.Rank, m.ctrl.Registry().Len()),
		fmt.Sprintf("offset %d", cur.Offset),
	}
	if style := styleLabel(m.style.Header, m.style.Bold, m.style.Italic); style != "" {
		parts = append(parts, style)
	}
	parts = append(parts, m.palette.name)
	return m.palette.statusBar.Render(strings.Join(parts, " · "))
}

func styleLabel(header int, bold, italic bool) string {
	var marks []string
	if header > 0 {
		marks = append(marks, fmt.Sprintf("H%d", header))
	}
	if bold {
		marks = append(marks, "bold")
	}
	if italic {
		marks = append(marks, "italic")
	}
	return strings.Join(marks, "+")
}

func (m *model) confirmView() string {
	body := strings.Join([]string{
		"You have unsaved changes.",
		"Quit anyway? (y to quit, any other key to keep editing)",
	}, "\n")
	return m.palette.confirm.Render(body)
}

// refreshViewport redraws every page and scrolls so the cursor row stays
// visible.
func (m *model) refreshViewport() {
	cur, hasCursor := m.ctrl.Cursor()
	var (
		blocks    []string
		cursorRow = -1
		top       int
	)
	for _, page := range m.ctrl.Registry().Pages() {
		offset := -1
		focused := hasCursor && page.Rank() == cur.Rank
		if focused {
			offset = cur.Offset
		}
		block, row := renderPage(m.palette, page.Rank(), page.Surface().Content(), m.config.Capacity, offset, focused)
		if focused {
			cursorRow = top + row
		}
		blocks = append(blocks, block)
		top += lipgloss.Height(block) + 1
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	if cursorRow < 0 {
		return
	}
	switch {
	case cursorRow < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorRow)
	case cursorRow >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorRow - m.viewport.Height + 1)
	}
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}
