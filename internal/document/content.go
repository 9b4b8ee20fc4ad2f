package document

import "strings"

// Content is an ordered sequence of units. Operations return new slices and
// never mutate their receiver.
type Content []Unit

// Len sums the unit lengths.
func (c Content) Len() int {
	total := 0
	for _, u := range c {
		total += u.Len()
	}
	return total
}

// Plain concatenates the plain text of every unit.
func (c Content) Plain() string {
	var b strings.Builder
	for _, u := range c {
		b.WriteString(u.Plain())
	}
	return b.String()
}

// HasEmbeds reports whether any unit is an embedded object.
func (c Content) HasEmbeds() bool {
	for _, u := range c {
		if u.IsEmbed() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c Content) Clone() Content {
	if c == nil {
		return nil
	}
	out := make(Content, len(c))
	for i, u := range c {
		out[i] = u.clone()
	}
	return out
}

// Concat returns c followed by other, without merging the units at the seam.
func (c Content) Concat(other Content) Content {
	out := make(Content, 0, len(c)+len(other))
	out = append(out, c.Clone()...)
	out = append(out, other.Clone()...)
	return out
}

// SplitAt cuts the content at offset. A text unit straddling the offset is
// divided in two; embeds are never divided.
func (c Content) SplitAt(offset int) (Content, Content) {
	if offset <= 0 {
		return Content{}, c.Clone()
	}
	left := Content{}
	right := Content{}
	pos := 0
	for _, u := range c {
		n := u.Len()
		switch {
		case pos+n <= offset:
			left = append(left, u.clone())
		case pos >= offset:
			right = append(right, u.clone())
		default:
			cut := offset - pos
			left = append(left, u.slice(0, cut))
			right = append(right, u.slice(cut, n))
		}
		pos += n
	}
	return left, right
}

// InsertText inserts text with the given style at offset. Inserted text is
// kept line-granular: a run never continues past a line terminator, and runs
// with equal style on the same line are merged.
func (c Content) InsertText(offset int, text string, style Style) Content {
	if text == "" {
		return c.Clone()
	}
	left, right := c.SplitAt(offset)
	for _, piece := range splitLines(text) {
		left = appendRun(left, Styled(piece, style))
	}
	return joinRuns(left, right)
}

// InsertUnit inserts u at offset without merging it into its neighbours.
func (c Content) InsertUnit(offset int, u Unit) Content {
	left, right := c.SplitAt(offset)
	out := make(Content, 0, len(c)+1)
	out = append(out, left...)
	out = append(out, u.clone())
	out = append(out, right...)
	return out
}

// DeleteRange removes n positions starting at offset and rejoins the line
// the deletion touched.
func (c Content) DeleteRange(offset, n int) Content {
	if n <= 0 {
		return c.Clone()
	}
	left, rest := c.SplitAt(offset)
	_, right := rest.SplitAt(n)
	return joinRuns(left, right)
}

// appendRun appends u, merging it into the previous run when both share a
// style and the previous run does not end its line.
func appendRun(c Content, u Unit) Content {
	if !u.IsEmbed() && u.Text == "" {
		return c
	}
	if n := len(c); n > 0 {
		last := c[n-1]
		if last.mergeable(u) && !last.EndsLine() {
			c[n-1] = last.withText(last.Text + u.Text)
			return c
		}
	}
	return append(c, u)
}

func joinRuns(left, right Content) Content {
	out := make(Content, 0, len(left)+len(right))
	for _, u := range left {
		out = appendRun(out, u)
	}
	for _, u := range right {
		out = appendRun(out, u)
	}
	return out
}

func splitLines(text string) []string {
	var pieces []string
	for text != "" {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			pieces = append(pieces, text)
			break
		}
		pieces = append(pieces, text[:idx+1])
		text = text[idx+1:]
	}
	return pieces
}

// Builder appends runs to the end of a content stream, keeping the same
// line-granular shape InsertText produces without re-walking the content.
// The zero value is ready to use.
type Builder struct {
	c Content
}

// WriteText appends text with the given style.
func (b *Builder) WriteText(text string, style Style) {
	for _, piece := range splitLines(text) {
		b.c = appendRun(b.c, Styled(piece, style))
	}
}

// WriteUnit appends u as its own unit.
func (b *Builder) WriteUnit(u Unit) {
	b.c = append(b.c, u.clone())
}

// Empty reports whether nothing has been written yet.
func (b *Builder) Empty() bool { return len(b.c) == 0 }

// EndsLine reports whether the last written run ended its line.
func (b *Builder) EndsLine() bool {
	return len(b.c) > 0 && b.c[len(b.c)-1].EndsLine()
}

// Content returns the built content. The builder must not be used after.
func (b *Builder) Content() Content {
	if b.c == nil {
		return Content{}
	}
	return b.c
}
