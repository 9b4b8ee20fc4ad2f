package tuitest

import (
	"bytes"
	"io"
)

// Terminal describes the emulated terminal's colours, reported to the
// program when it asks (lipgloss picks its light or dark palette from the
// background).
type Terminal struct {
	Foreground string
	Background string
}

var (
	// DarkTerminal is light text on black.
	DarkTerminal = Terminal{Foreground: "rgb:cccc/cccc/cccc", Background: "rgb:0000/0000/0000"}
	// LightTerminal is dark text on white.
	LightTerminal = Terminal{Foreground: "rgb:1f1f/1f1f/1f1f", Background: "rgb:ffff/ffff/ffff"}
)

type reply struct {
	query    []byte
	response []byte
}

func (t Terminal) replies() []reply {
	if t.Background == "" {
		t = DarkTerminal
	}
	out := []reply{{query: []byte("\x1b[6n"), response: []byte("\x1b[1;1R")}}
	for _, osc := range []struct{ code, color string }{{"10", t.Foreground}, {"11", t.Background}} {
		for _, st := range []string{"\x07", "\x1b\\"} {
			out = append(out, reply{
				query:    []byte("\x1b]" + osc.code + ";?" + st),
				response: []byte("\x1b]" + osc.code + ";" + osc.color + st),
			})
		}
	}
	return out
}

// terminalResponder answers the status queries a program writes to the PTY.
type terminalResponder struct {
	w       io.Writer
	buf     []byte
	replies []reply
}

func newTerminalResponder(w io.Writer, t Terminal) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128), replies: t.replies()}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// a query may be split across reads
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

// answerNext replies to the earliest pending query in the buffer.
func (tr *terminalResponder) answerNext() bool {
	first, at := -1, len(tr.buf)
	for i, r := range tr.replies {
		if idx := bytes.Index(tr.buf, r.query); idx >= 0 && idx < at {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	r := tr.replies[first]
	tr.buf = tr.buf[at+len(r.query):]
	_, _ = tr.w.Write(r.response)
	return true
}
