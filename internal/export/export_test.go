package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/pagewright/internal/document"
)

func TestPlainTextPageHeaders(t *testing.T) {
	pages := []document.Content{
		{document.Text("a")},
		{document.Text("b\n")},
		{document.Text("c")},
	}
	want := "\n\n--- Page 1 ---\n\na\n\n--- Page 2 ---\n\nb\n\n--- Page 3 ---\n\nc"
	assert.Equal(t, want, PlainText(pages))
}

func TestPlainTextEmptyDocument(t *testing.T) {
	assert.Equal(t, "", PlainText(nil))
	assert.Equal(t, "\n\n--- Page 1 ---\n\n", PlainText([]document.Content{{}}))
}

func TestPageMarkdown(t *testing.T) {
	cases := []struct {
		name    string
		content document.Content
		want    string
	}{
		{
			name:    "heading",
			content: document.Content{document.Styled("Title\n", document.Style{Header: 1}), document.Text("body")},
			want:    "# Title\nbody",
		},
		{
			name: "emphasis keeps spaces outside markers",
			content: document.Content{
				document.Text("a "),
				document.Styled("bold ", document.Style{Bold: true}),
				document.Styled("it", document.Style{Italic: true}),
			},
			want: "a **bold** *it*",
		},
		{
			name:    "bold italic",
			content: document.Content{document.Styled("x", document.Style{Bold: true, Italic: true})},
			want:    "***x***",
		},
		{
			name:    "embed",
			content: document.Content{document.Text("see "), document.Image("fig.png", 0, 0)},
			want:    "see ![](fig.png)",
		},
		{
			name:    "unknown attribute passes text",
			content: document.Content{document.Styled("red", document.Style{Extra: map[string]json.RawMessage{"color": json.RawMessage(`"red"`)}})},
			want:    "red",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PageMarkdown(tc.content))
		})
	}
}

func TestMarkdownPageMarkers(t *testing.T) {
	got := Markdown([]document.Content{{document.Text("one")}, {document.Text("two")}})
	assert.Equal(t, "<!-- Page 1 -->\n\none\n\n<!-- Page 2 -->\n\ntwo", got)
}

func TestHTMLSectionsPerPage(t *testing.T) {
	out, err := HTML("Draft <1>", []document.Content{
		{document.Styled("Intro\n", document.Style{Header: 2}), document.Styled("hi", document.Style{Bold: true})},
		{document.Text("second")},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Draft &lt;1&gt;</title>")
	assert.Contains(t, out, `<section class="page" id="page-1"`)
	assert.Contains(t, out, `<section class="page" id="page-2"`)
	assert.Contains(t, out, "page-break-after: always")
	assert.Contains(t, out, "<h2>Intro</h2>")
	assert.Contains(t, out, "<strong>hi</strong>")
	assert.Less(t, strings.Index(out, "page-1"), strings.Index(out, "page-2"))
}

func TestParseFormats(t *testing.T) {
	all, err := ParseFormats("all")
	require.NoError(t, err)
	assert.Equal(t, AllFormats, all)

	md, err := ParseFormats("MD")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatMarkdown}, md)

	_, err = ParseFormats("docx")
	assert.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	pages := []document.Content{{document.Text("a")}, {document.Text("b")}}

	written, err := WriteFiles(dir, "My Report: Draft", pages, AllFormats)
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, filepath.Join(dir, "my-report-draft.txt"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, PlainText(pages), string(data))
}

func TestWriteFilesCombinesFailures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	written, err := WriteFiles(missing, "", []document.Content{{}}, AllFormats)
	require.Error(t, err)
	assert.Empty(t, written)
	assert.Contains(t, err.Error(), "text export")
	assert.Contains(t, err.Error(), "html export")
}

func TestFileNameFallsBack(t *testing.T) {
	assert.Equal(t, "untitled.md", FileName("  ", FormatMarkdown))
}
