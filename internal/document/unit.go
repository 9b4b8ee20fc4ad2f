// Package document models page content as ordered content units: plain text
// runs, styled text runs and embedded objects.
package document

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Kind tags the variant held by a Unit.
type Kind int

const (
	KindText Kind = iota
	KindStyled
	KindEmbed
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStyled:
		return "styled"
	case KindEmbed:
		return "embed"
	default:
		return "unknown"
	}
}

// Style carries the typed formatting of a styled run. Extra keeps attributes
// the editor does not interpret, as compact JSON, so they survive a load/save
// cycle with their original types.
type Style struct {
	Header int
	Bold   bool
	Italic bool
	Extra  map[string]json.RawMessage
}

// IsZero reports whether the style carries no formatting at all.
func (s Style) IsZero() bool {
	return s.Header == 0 && !s.Bold && !s.Italic && len(s.Extra) == 0
}

// Equal compares two styles attribute by attribute.
func (s Style) Equal(other Style) bool {
	if s.Header != other.Header || s.Bold != other.Bold || s.Italic != other.Italic {
		return false
	}
	if len(s.Extra) != len(other.Extra) {
		return false
	}
	for key, value := range s.Extra {
		if v, ok := other.Extra[key]; !ok || !bytes.Equal(v, value) {
			return false
		}
	}
	return true
}

func (s Style) clone() Style {
	if s.Extra == nil {
		return s
	}
	extra := make(map[string]json.RawMessage, len(s.Extra))
	for key, value := range s.Extra {
		extra[key] = append(json.RawMessage(nil), value...)
	}
	s.Extra = extra
	return s
}

// Embed describes an embedded object such as an image. Height is measured in
// rendered rows; zero means the renderer default.
type Embed struct {
	Type   string
	Source string
	Width  int
	Height int
}

// Unit is the atomic piece of content moved across page boundaries.
type Unit struct {
	Kind  Kind
	Text  string
	Style Style
	Embed Embed
}

// Text returns a plain text run.
func Text(s string) Unit {
	return Unit{Kind: KindText, Text: s}
}

// Styled returns a styled text run, or a plain run when style is empty.
func Styled(s string, style Style) Unit {
	if style.IsZero() {
		return Text(s)
	}
	return Unit{Kind: KindStyled, Text: s, Style: style.clone()}
}

// Image returns an embedded image unit.
func Image(source string, width, height int) Unit {
	return Unit{Kind: KindEmbed, Embed: Embed{Type: "image", Source: source, Width: width, Height: height}}
}

// IsEmbed reports whether the unit is an embedded object.
func (u Unit) IsEmbed() bool { return u.Kind == KindEmbed }

// Len is the unit's length in the editor's offset space: runes for text,
// one for an embed.
func (u Unit) Len() int {
	if u.IsEmbed() {
		return 1
	}
	return utf8.RuneCountInString(u.Text)
}

// Plain returns the unit's contribution to the plain-text view. Embeds
// contribute nothing.
func (u Unit) Plain() string {
	if u.IsEmbed() {
		return ""
	}
	return u.Text
}

// EndsLine reports whether the run ends with a line terminator.
func (u Unit) EndsLine() bool {
	return !u.IsEmbed() && strings.HasSuffix(u.Text, "\n")
}

func (u Unit) withText(s string) Unit {
	out := u
	out.Text = s
	out.Style = u.Style.clone()
	return out
}

func (u Unit) clone() Unit {
	out := u
	out.Style = u.Style.clone()
	return out
}

func (u Unit) mergeable(other Unit) bool {
	if u.IsEmbed() || other.IsEmbed() {
		return false
	}
	return u.Style.Equal(other.Style)
}

// slice returns the runes [start, end) of a text unit.
func (u Unit) slice(start, end int) Unit {
	runes := []rune(u.Text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return u.withText("")
	}
	return u.withText(string(runes[start:end]))
}
