// Package importer turns files on disk into document content ready to be
// laid out on pages.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/store"
)

// Kind is the detected source format.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindImage    Kind = "image"
	KindMarkdown Kind = "markdown"
	KindSnapshot Kind = "snapshot"
	KindText     Kind = "text"
)

// ErrBinary is returned for files that are neither text nor a supported
// binary format.
var ErrBinary = errors.New("unsupported binary file")

// Result is an imported document. Content is one stream; the caller
// paginates it. Pages keeps the saved layout of a snapshot.
type Result struct {
	Kind    Kind
	Title   string
	Content document.Content
	Pages   []document.Content
}

// Load reads and converts the file at path.
func Load(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	kind := Detect(path, data)

	var (
		content document.Content
		pages   []document.Content
	)
	switch kind {
	case KindPDF:
		content, err = fromPDF(path)
	case KindImage:
		content = document.Content{document.Image(path, 0, 0)}
	case KindMarkdown:
		content, err = FromMarkdown(data)
	case KindSnapshot:
		var snap store.Snapshot
		if snap, err = store.Decode(data); err == nil {
			pages = snap.Pages
			for _, page := range snap.Pages {
				content = content.Concat(page)
			}
			if snap.Title != "" {
				title = snap.Title
			}
		}
	default:
		if filetype.IsArchive(data) || filetype.IsVideo(data) || filetype.IsAudio(data) || filetype.IsFont(data) {
			return Result{}, fmt.Errorf("import %s: %w", path, ErrBinary)
		}
		content = FromText(string(data))
	}
	if err != nil {
		return Result{}, fmt.Errorf("import %s as %s: %w", path, kind, err)
	}
	return Result{Kind: kind, Title: title, Content: content, Pages: pages}, nil
}

// Detect classifies a file by magic bytes first and extension second.
func Detect(path string, data []byte) Kind {
	switch {
	case filetype.Is(data, "pdf"):
		return KindPDF
	case filetype.IsImage(data):
		return KindImage
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".json":
		return KindSnapshot
	}
	return KindText
}

// FromText converts plain text, normalising line endings.
func FromText(s string) document.Content {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return document.Content{}.InsertText(0, s, document.Style{})
}

var blankRuns = regexp.MustCompile(`[ \t]+`)

func fromPDF(path string) (document.Content, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return nil, err
	}
	return FromText(strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), " "))), nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// FromMarkdown maps headings, emphasis and images onto styled units. Other
// constructs keep their text.
func FromMarkdown(source []byte) (document.Content, error) {
	root := markdown.Parser().Parse(text.NewReader(source))

	var b document.Builder
	var style document.Style
	write := func(s string, st document.Style) {
		b.WriteText(s, st)
	}
	endBlock := func() {
		if !b.Empty() && !b.EndsLine() {
			write("\n", style)
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				endBlock()
				style.Header = node.Level
			} else {
				write("\n", style)
				style.Header = 0
			}
		case *ast.Paragraph, *ast.TextBlock:
			if !entering {
				write("\n", style)
			}
		case *ast.ListItem:
			if entering {
				endBlock()
				write("- ", style)
			}
		case *ast.Emphasis:
			if node.Level >= 2 {
				style.Bold = entering
			} else {
				style.Italic = entering
			}
		case *ast.Text:
			if entering {
				write(string(node.Segment.Value(source)), style)
				switch {
				case node.HardLineBreak():
					write("\n", style)
				case node.SoftLineBreak():
					write(" ", style)
				}
			}
		case *ast.String:
			if entering {
				write(string(node.Value), style)
			}
		case *ast.CodeSpan:
			if entering {
				var code strings.Builder
				for child := node.FirstChild(); child != nil; child = child.NextSibling() {
					if t, ok := child.(*ast.Text); ok {
						code.Write(t.Segment.Value(source))
					}
				}
				write(code.String(), style)
				return ast.WalkSkipChildren, nil
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				endBlock()
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					write(string(seg.Value(source)), style)
				}
				endBlock()
				return ast.WalkSkipChildren, nil
			}
		case *ast.Image:
			if entering {
				b.WriteUnit(document.Image(string(node.Destination), 0, 0))
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown: %w", err)
	}
	return b.Content(), nil
}
