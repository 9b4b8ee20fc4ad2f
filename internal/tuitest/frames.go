package tuitest

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one redraw of the terminal with escape sequences removed from
// Plain.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

// Status is the editor's status line: where the cursor is and which palette
// is active.
type Status struct {
	Page    int
	Pages   int
	Offset  int
	Palette string
}

var (
	frameSeparator = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiPattern     = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern     = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)

	statusPattern = regexp.MustCompile(`Page (\d+) of (\d+) · offset (\d+)(?: · [^·\n]+)*? · (light|dark)`)
	labelPattern  = regexp.MustCompile(`Unsaved changes|Not saved yet|Last saved [^\n]*`)
)

func parseFrames(raw []byte) []Frame {
	cleaned := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range frameSeparator.Split(cleaned, -1) {
		segment = strings.TrimPrefix(strings.Trim(segment, "\x00"), "\x1b[H")
		plain := normalizeLines(stripANSI(segment))
		if plain == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: plain})
	}
	if len(frames) == 0 && cleaned != "" {
		frames = append(frames, Frame{ANSI: cleaned, Plain: normalizeLines(stripANSI(cleaned))})
	}
	return frames
}

// Status parses the status line, if the frame redrew it.
func (f Frame) Status() (Status, bool) {
	m := statusPattern.FindStringSubmatch(f.Plain)
	if m == nil {
		return Status{}, false
	}
	page, _ := strconv.Atoi(m[1])
	pages, _ := strconv.Atoi(m[2])
	offset, _ := strconv.Atoi(m[3])
	return Status{Page: page, Pages: pages, Offset: offset, Palette: m[4]}, true
}

// Label returns the save label from the header, if the frame redrew it.
func (f Frame) Label() (string, bool) {
	label := labelPattern.FindString(f.Plain)
	return strings.TrimSpace(label), label != ""
}

// FinalFrame returns the last captured frame.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// FrameContaining returns the last frame whose plain text contains substr.
func (r *Recording) FrameContaining(substr string) (Frame, bool) {
	return r.last(func(f Frame) bool { return strings.Contains(f.Plain, substr) })
}

// LastStatus returns the most recently drawn status line.
func (r *Recording) LastStatus() (Status, bool) {
	f, ok := r.last(func(f Frame) bool { _, ok := f.Status(); return ok })
	if !ok {
		return Status{}, false
	}
	return f.Status()
}

// LastLabel returns the most recently drawn save label.
func (r *Recording) LastLabel() (string, bool) {
	f, ok := r.last(func(f Frame) bool { _, ok := f.Label(); return ok })
	if !ok {
		return "", false
	}
	return f.Label()
}

func (r *Recording) last(match func(Frame) bool) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for i := len(r.Frames) - 1; i >= 0; i-- {
		if match(r.Frames[i]) {
			return r.Frames[i], true
		}
	}
	return Frame{}, false
}

func stripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	return strings.NewReplacer("\x0f", "", "\x0e", "").Replace(s)
}

// normalizeLines drops trailing blanks on every line and trailing empty
// lines.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
