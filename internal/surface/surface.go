// Package surface adapts one rich-text editing region to the operations the
// paginator needs: plain-text queries, cursor queries, whole-content get/set
// and change notifications.
package surface

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/csheth/pagewright/internal/document"
)

// Origin tells user edits apart from programmatic content transfers.
type Origin int

const (
	OriginAPI Origin = iota
	OriginUser
)

func (o Origin) String() string {
	if o == OriginUser {
		return "user"
	}
	return "api"
}

// Terminator is the line terminator the surface always reports at the end of
// its plain text.
const Terminator = "\n"

// ChangeFunc receives content-changed notifications.
type ChangeFunc func(s *Surface, origin Origin)

// Surface is one editing region bound to a rendering container.
type Surface struct {
	containerID string
	content     document.Content
	cursor      int
	focused     bool
	// focusGen invalidates focus requests that were queued before a Blur.
	focusGen    int
	sched       Scheduler
	listeners   []ChangeFunc
}

// New returns an empty surface bound to containerID.
func New(containerID string, sched Scheduler) *Surface {
	if sched == nil {
		sched = &Queue{}
	}
	return &Surface{containerID: containerID, content: document.Content{}, sched: sched}
}

// ContainerID returns the identifier of the rendering container.
func (s *Surface) ContainerID() string { return s.containerID }

// Bind relabels the rendering container.
func (s *Surface) Bind(containerID string) { s.containerID = containerID }

// OnChange registers a listener for content changes.
func (s *Surface) OnChange(fn ChangeFunc) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// PlainText returns the text content followed by the terminator.
func (s *Surface) PlainText() string {
	return s.content.Plain() + Terminator
}

// Length includes the trailing terminator.
func (s *Surface) Length() int {
	return s.content.Len() + 1
}

// IsEmpty reports a surface whose text is only the terminator or blank, and
// which holds no embedded objects.
func (s *Surface) IsEmpty() bool {
	if s.content.HasEmbeds() {
		return false
	}
	text := s.PlainText()
	return text == Terminator || strings.TrimSpace(text) == ""
}

// Units returns the number of content units.
func (s *Surface) Units() int { return len(s.content) }

// Content returns a copy of the units.
func (s *Surface) Content() document.Content { return s.content.Clone() }

// Focused reports whether the surface holds the active cursor.
func (s *Surface) Focused() bool { return s.focused }

// CursorOffset returns the cursor offset, or false without focus.
func (s *Surface) CursorOffset() (int, bool) {
	if !s.focused {
		return 0, false
	}
	return s.cursor, true
}

// SetContent replaces the whole content.
func (s *Surface) SetContent(c document.Content, origin Origin) {
	s.content = c.Clone()
	if s.content == nil {
		s.content = document.Content{}
	}
	s.cursor = s.clamp(s.cursor)
	s.emit(origin)
}

// InsertContentAt inserts a single unit at offset.
func (s *Surface) InsertContentAt(offset int, u document.Unit, origin Origin) {
	offset = s.clamp(offset)
	s.content = s.content.InsertUnit(offset, u)
	if s.focused && s.cursor >= offset {
		s.cursor += u.Len()
	}
	s.emit(origin)
}

// InsertText inserts text at offset and returns the offset just past it.
func (s *Surface) InsertText(offset int, text string, style document.Style, origin Origin) int {
	offset = s.clamp(offset)
	s.content = s.content.InsertText(offset, text, style)
	next := offset + len([]rune(text))
	if s.focused {
		s.cursor = next
	}
	s.emit(origin)
	return next
}

// DeleteBackward removes the grapheme cluster (or embed) before offset and
// returns the new offset.
func (s *Surface) DeleteBackward(offset int, origin Origin) int {
	offset = s.clamp(offset)
	if offset == 0 {
		return 0
	}
	left, _ := s.content.SplitAt(offset)
	n := 1
	if last := left[len(left)-1]; !last.IsEmbed() {
		n = lastClusterRunes(last.Text)
	}
	s.content = s.content.DeleteRange(offset-n, n)
	if s.focused {
		s.cursor = offset - n
	}
	s.emit(origin)
	return offset - n
}

// DeleteForward removes the grapheme cluster (or embed) at offset.
func (s *Surface) DeleteForward(offset int, origin Origin) {
	offset = s.clamp(offset)
	_, right := s.content.SplitAt(offset)
	if len(right) == 0 {
		return
	}
	n := 1
	if first := right[0]; !first.IsEmbed() {
		n = firstClusterRunes(first.Text)
	}
	s.content = s.content.DeleteRange(offset, n)
	s.emit(origin)
}

// SetCursor moves the cursor of a focused surface immediately.
func (s *Surface) SetCursor(offset int) {
	if s.focused {
		s.cursor = s.clamp(offset)
	}
}

// FocusAt moves focus to this surface and places the cursor. The widget only
// accepts focus after a render pass, so the move runs through the scheduler.
func (s *Surface) FocusAt(offset int) {
	gen := s.focusGen
	s.sched.Defer(func() {
		if gen != s.focusGen {
			return
		}
		s.focused = true
		s.cursor = s.clamp(offset)
	})
}

// Blur drops focus and cancels any pending FocusAt.
func (s *Surface) Blur() {
	s.focused = false
	s.focusGen++
}

func (s *Surface) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if limit := s.content.Len(); offset > limit {
		return limit
	}
	return offset
}

func (s *Surface) emit(origin Origin) {
	for _, fn := range s.listeners {
		fn(s, origin)
	}
}

func lastClusterRunes(text string) int {
	last := 1
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = len([]rune(cluster))
	}
	return last
}

func firstClusterRunes(text string) int {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text, -1)
	if n := len([]rune(cluster)); n > 0 {
		return n
	}
	return 1
}
