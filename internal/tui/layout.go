package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/overflow"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{viewportWidth: 80, viewportHeight: 20}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - viewportHorizontalPadding
	if inner < minViewportWidth {
		inner = minViewportWidth
	}
	l.viewportWidth = inner
	content := height - chromeHeight
	if content < 6 {
		content = 6
	}
	l.viewportHeight = content
}

// offsetRunes flattens content into the editor's offset space: one rune per
// character and one placeholder per embed.
func offsetRunes(c document.Content) []rune {
	var out []rune
	for _, u := range c {
		if u.IsEmbed() {
			out = append(out, embedGlyph)
			continue
		}
		out = append(out, []rune(u.Text)...)
	}
	return out
}

// lineBounds returns the [start, end) offsets of the line holding offset;
// end points at the line's terminator or the end of the content.
func lineBounds(runes []rune, offset int) (int, int) {
	if offset > len(runes) {
		offset = len(runes)
	}
	start := offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return start, end
}

// restyleLine applies fn to every unit on the line holding offset.
func restyleLine(c document.Content, offset int, fn func(document.Style) document.Style) document.Content {
	runes := offsetRunes(c)
	start, end := lineBounds(runes, offset)
	if end < len(runes) {
		end++
	}
	left, rest := c.SplitAt(start)
	middle, right := rest.SplitAt(end - start)
	out := left.Clone()
	for _, u := range middle {
		if u.IsEmbed() {
			out = append(out, u)
			continue
		}
		out = append(out, document.Styled(u.Text, fn(u.Style)))
	}
	return out.Concat(right)
}

// pageRenderer turns one page's content into styled, wrapped rows.
type pageRenderer struct {
	pal    palette
	cols   int
	cursor int
	show   bool

	rows       []string
	line       strings.Builder
	seg        []rune
	segStyle   lipgloss.Style
	segStyled  bool
	embedRows  int
	cursorLine int
}

func (r *pageRenderer) styleFor(s document.Style) (lipgloss.Style, bool) {
	switch {
	case s.Header > 0 && s.Italic:
		return r.pal.heading.Copy().Italic(true), true
	case s.Header > 0:
		return r.pal.heading, true
	case s.Bold && s.Italic:
		return r.pal.boldItalic, true
	case s.Bold:
		return r.pal.bold, true
	case s.Italic:
		return r.pal.italic, true
	}
	return lipgloss.Style{}, false
}

func (r *pageRenderer) flushSeg() {
	if len(r.seg) == 0 {
		return
	}
	if r.segStyled {
		r.line.WriteString(r.segStyle.Render(string(r.seg)))
	} else {
		r.line.WriteString(string(r.seg))
	}
	r.seg = r.seg[:0]
}

func (r *pageRenderer) flushLine() {
	r.flushSeg()
	r.rows = append(r.rows, strings.Split(overflow.Wrap(r.line.String(), r.cols), "\n")...)
	r.line.Reset()
	for ; r.embedRows > 0; r.embedRows-- {
		r.rows = append(r.rows, "")
	}
}

func (r *pageRenderer) writeCursor(text string) {
	r.flushSeg()
	r.cursorLine = len(r.rows)
	r.line.WriteString(r.pal.cursor.Render(text))
}

func (r *pageRenderer) render(c document.Content) []string {
	offset := 0
	for _, u := range c {
		if u.IsEmbed() {
			label := fmt.Sprintf("[%s: %s]", u.Embed.Type, u.Embed.Source)
			if r.show && offset == r.cursor {
				r.writeCursor(label)
			} else {
				r.flushSeg()
				r.line.WriteString(r.pal.embed.Render(label))
			}
			r.embedRows += overflow.EmbedRows(u.Embed) - 1
			offset++
			continue
		}
		style, styled := r.styleFor(u.Style)
		r.flushSeg()
		r.segStyle, r.segStyled = style, styled
		for _, ch := range u.Text {
			atCursor := r.show && offset == r.cursor
			switch {
			case ch == '\n' && atCursor:
				r.writeCursor(" ")
				r.flushLine()
			case ch == '\n':
				r.flushLine()
			case atCursor:
				r.writeCursor(string(ch))
			default:
				r.seg = append(r.seg, ch)
			}
			offset++
		}
	}
	if r.show && offset <= r.cursor {
		r.writeCursor(" ")
	}
	r.flushLine()
	return r.rows
}

// renderPage draws a framed page of the given capacity. cursor < 0 hides the
// cursor. It also returns the row of the cursor inside the frame.
func renderPage(pal palette, rank int, c document.Content, capacity overflow.Capacity, cursor int, focused bool) (string, int) {
	r := &pageRenderer{pal: pal, cols: capacity.Cols, cursor: cursor, show: cursor >= 0}
	rows := r.render(c)

	frame := pal.page
	if focused {
		frame = pal.pageFocused
	}
	body := frame.Copy().Width(capacity.Cols + 2).Height(capacity.Rows).Render(strings.Join(rows, "\n"))
	title := pal.pageNumber.Render(fmt.Sprintf("Page %d", rank))
	// title row plus top border
	return lipgloss.JoinVertical(lipgloss.Left, title, body), r.cursorLine + 2
}
