package tuitest

import (
	"bytes"
	"testing"
)

func TestResponderReportsConfiguredBackground(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out, LightTerminal)

	tr.Process([]byte("\x1b]11;?"))
	if out.Len() != 0 {
		t.Fatalf("answered an incomplete query: %q", out.String())
	}
	tr.Process([]byte("\x07\x1b[6n"))
	want := "\x1b]11;rgb:ffff/ffff/ffff\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("replies = %q, want %q", out.String(), want)
	}
}

func TestResponderDefaultsToDark(t *testing.T) {
	var out bytes.Buffer
	newTerminalResponder(&out, Terminal{}).Process([]byte("\x1b]11;?\x1b\\"))
	if want := "\x1b]11;rgb:0000/0000/0000\x1b\\"; out.String() != want {
		t.Fatalf("reply = %q, want %q", out.String(), want)
	}
}
