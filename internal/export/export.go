// Package export renders a paginated document to plain text, Markdown and
// standalone HTML.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/multierr"

	"github.com/csheth/pagewright/internal/document"
)

// Format names an export target.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// AllFormats lists every export target in a stable order.
var AllFormats = []Format{FormatText, FormatMarkdown, FormatHTML}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// ParseFormats turns a command line value into formats. "all" expands to
// every format.
func ParseFormats(value string) ([]Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "all", "":
		return AllFormats, nil
	case FormatText, FormatMarkdown, FormatHTML:
		return []Format{f}, nil
	case "md":
		return []Format{FormatMarkdown}, nil
	case "txt":
		return []Format{FormatText}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", value)
	}
}

// PlainText joins pages with a "--- Page N ---" header in front of each. The
// widget's trailing line terminators are dropped from every page.
func PlainText(pages []document.Content) string {
	var b strings.Builder
	for i, page := range pages {
		fmt.Fprintf(&b, "\n\n--- Page %d ---\n\n", i+1)
		b.WriteString(strings.TrimRight(page.Plain(), "\n"))
	}
	return b.String()
}

// Markdown renders pages as Markdown separated by page marker comments.
func Markdown(pages []document.Content) string {
	parts := make([]string, 0, len(pages))
	for i, page := range pages {
		parts = append(parts, fmt.Sprintf("<!-- Page %d -->\n\n%s", i+1, PageMarkdown(page)))
	}
	return strings.Join(parts, "\n\n")
}

// PageMarkdown renders the content of a single page.
func PageMarkdown(c document.Content) string {
	var out []string
	for _, line := range lines(c) {
		var b strings.Builder
		if line.header > 0 {
			b.WriteString(strings.Repeat("#", line.header))
			b.WriteByte(' ')
		}
		for _, u := range line.units {
			b.WriteString(inline(u))
		}
		out = append(out, b.String())
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

func inline(u document.Unit) string {
	if u.IsEmbed() {
		return fmt.Sprintf("![](%s)", u.Embed.Source)
	}
	text := strings.TrimSuffix(u.Text, "\n")
	marker := ""
	switch {
	case u.Style.Bold && u.Style.Italic:
		marker = "***"
	case u.Style.Bold:
		marker = "**"
	case u.Style.Italic:
		marker = "*"
	}
	core := strings.TrimSpace(text)
	if marker == "" || core == "" {
		return text
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]
	return lead + marker + core + marker + trail
}

type line struct {
	header int
	units  []document.Unit
}

// lines groups units into visual lines. A line takes the largest heading
// level of its runs.
func lines(c document.Content) []line {
	var out []line
	cur := line{}
	for _, u := range c {
		if !u.IsEmbed() && u.Style.Header > cur.header {
			cur.header = u.Style.Header
		}
		cur.units = append(cur.units, u)
		if u.EndsLine() {
			out = append(out, cur)
			cur = line{}
		}
	}
	if len(cur.units) > 0 {
		out = append(out, cur)
	}
	return out
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background: #e5e5e5; font-family: Georgia, serif; margin: 0; padding: 2em 0; }
.page { background: #fff; width: 210mm; min-height: 297mm; margin: 0 auto 2em; padding: 25.4mm; box-sizing: border-box; page-break-after: always; }
.page:last-child { page-break-after: auto; }
@media print { body { background: none; padding: 0; } .page { margin: 0; } }
</style>
</head>
<body>
`

// HTML renders a standalone document with one section per page.
func HTML(title string, pages []document.Content) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, htmlHead, html.EscapeString(title))
	for i, page := range pages {
		var body bytes.Buffer
		if err := markdown.Convert([]byte(PageMarkdown(page)), &body); err != nil {
			return "", fmt.Errorf("render page %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "<section class=\"page\" id=\"page-%d\" style=\"page-break-after: always\">\n", i+1)
		b.Write(body.Bytes())
		b.WriteString("</section>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// Render produces the document in a single format.
func Render(format Format, title string, pages []document.Content) (string, error) {
	switch format {
	case FormatText:
		return PlainText(pages), nil
	case FormatMarkdown:
		return Markdown(pages) + "\n", nil
	case FormatHTML:
		return HTML(title, pages)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// FileName returns the export file name for title in format.
func FileName(title string, format Format) string {
	name := slug.Make(title)
	if name == "" {
		name = "untitled"
	}
	return name + format.Ext()
}

// WriteFiles writes one file per format into dir and returns the paths that
// were written. Every format is attempted; failures are combined.
func WriteFiles(dir, title string, pages []document.Content, formats []Format) ([]string, error) {
	var (
		written []string
		err     error
	)
	for _, format := range formats {
		out, rerr := Render(format, title, pages)
		if rerr != nil {
			err = multierr.Append(err, rerr)
			continue
		}
		path := filepath.Join(dir, FileName(title, format))
		if werr := os.WriteFile(path, []byte(out), 0o644); werr != nil {
			err = multierr.Append(err, fmt.Errorf("write %s export: %w", format, werr))
			continue
		}
		written = append(written, path)
	}
	return written, err
}
