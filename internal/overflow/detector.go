package overflow

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/document"
)

// ErrDetached is returned when content cannot be measured because it is not
// bound to a rendering container or the container has no width.
var ErrDetached = errors.New("surface is not attached to a layout")

// Measurable is anything whose content occupies a rendering container.
type Measurable interface {
	Content() document.Content
	ContainerID() string
}

// Line is one paragraph as laid out on a page: its text, the heading level
// of its runs and the embeds it carries.
type Line struct {
	Text   string
	Header int
	Embeds []document.Embed
}

// Detector compares rendered extents against a fixed capacity.
type Detector struct {
	capacity Capacity
	log      *zap.Logger
}

// NewDetector returns a detector for the given capacity.
func NewDetector(capacity Capacity, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{capacity: capacity, log: log.Named("overflow")}
}

// Capacity returns the page capacity.
func (d *Detector) Capacity() Capacity { return d.capacity }

// IsOverflowing reports whether m renders taller than a page. Measurement
// failures count as not overflowing.
func (d *Detector) IsOverflowing(m Measurable) bool {
	if m == nil || m.ContainerID() == "" {
		d.log.Debug("Skipping overflow check", zap.Error(ErrDetached))
		return false
	}
	rows, err := d.Extent(m.Content())
	if err != nil {
		d.log.Debug("Unable to measure page", zap.String("container", m.ContainerID()), zap.Error(err))
		return false
	}
	return rows > d.capacity.Rows
}

// Extent returns the number of rows content occupies.
func (d *Detector) Extent(c document.Content) (int, error) {
	if d.capacity.Cols <= 0 {
		return 0, ErrDetached
	}
	rows := 0
	for _, line := range Lines(c) {
		rows += lineRows(line, d.capacity.Cols)
	}
	return rows, nil
}

// Fit returns how many leading units of c fit on one page, measured in a
// single pass. Content that fits entirely returns len(c).
func (d *Detector) Fit(c document.Content) int {
	if d.capacity.Cols <= 0 {
		return len(c)
	}
	done := 0
	var (
		open Line
		text strings.Builder
	)
	for i, u := range c {
		if u.IsEmbed() {
			open.Embeds = append(open.Embeds, u.Embed)
		} else {
			rest := u.Text
			for {
				if u.Style.Header > open.Header && rest != "" {
					open.Header = u.Style.Header
				}
				idx := strings.IndexByte(rest, '\n')
				if idx < 0 {
					text.WriteString(rest)
					break
				}
				text.WriteString(rest[:idx])
				open.Text = text.String()
				done += lineRows(open, d.capacity.Cols)
				open = Line{}
				text.Reset()
				rest = rest[idx+1:]
			}
		}
		open.Text = text.String()
		if done+lineRows(open, d.capacity.Cols) > d.capacity.Rows {
			return i
		}
	}
	return len(c)
}

// Lines splits content into laid out paragraphs. The widget's trailing
// terminator closes the final paragraph, so empty content is one empty line.
func Lines(c document.Content) []Line {
	lines := []Line{}
	cur := Line{}
	var text strings.Builder
	flush := func() {
		cur.Text = text.String()
		lines = append(lines, cur)
		cur = Line{}
		text.Reset()
	}
	for _, u := range c {
		if u.IsEmbed() {
			cur.Embeds = append(cur.Embeds, u.Embed)
			continue
		}
		rest := u.Text
		for {
			if u.Style.Header > cur.Header && rest != "" {
				cur.Header = u.Style.Header
			}
			idx := strings.IndexByte(rest, '\n')
			if idx < 0 {
				text.WriteString(rest)
				break
			}
			text.WriteString(rest[:idx])
			flush()
			rest = rest[idx+1:]
		}
	}
	flush()
	return lines
}

// Wrap word-wraps s at cols and hard-wraps words longer than a row.
func Wrap(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, cols), cols)
}

// EmbedRows is the number of rows an embed occupies.
func EmbedRows(e document.Embed) int {
	if e.Height > 0 {
		return e.Height
	}
	return defaultEmbedRows
}

func lineRows(line Line, cols int) int {
	rows := 0
	if line.Text != "" || len(line.Embeds) == 0 {
		rows = 1
		if runewidth.StringWidth(line.Text) > cols {
			rows = strings.Count(Wrap(line.Text, cols), "\n") + 1
		}
		if line.Header == 1 {
			rows *= 2
		}
		if line.Header > 0 {
			rows++
		}
	}
	for _, e := range line.Embeds {
		rows += EmbedRows(e)
	}
	return rows
}
