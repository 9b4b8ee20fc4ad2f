package tui

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/export"
	"github.com/csheth/pagewright/internal/store"
)

type saveResultMsg struct {
	snapshot store.Snapshot
	// revision is the edit revision captured when the save started.
	revision int
	err      error
}

type exportResultMsg struct {
	paths []string
	err   error
}

func clonePages(pages []document.Content) []document.Content {
	out := make([]document.Content, len(pages))
	for i, page := range pages {
		out[i] = page.Clone()
	}
	return out
}

func saveDocumentJob(path, title string, pages []document.Content, historyLimit, revision int) jobRunner {
	toPersist := clonePages(pages)
	return func(context.Context) (tea.Msg, error) {
		snap, err := store.Save(path, title, toPersist, historyLimit)
		return saveResultMsg{snapshot: snap, revision: revision, err: err}, err
	}
}

func exportDocumentJob(documentPath, title string, pages []document.Content) jobRunner {
	toExport := clonePages(pages)
	dir := filepath.Dir(documentPath)
	return func(context.Context) (tea.Msg, error) {
		paths, err := export.WriteFiles(dir, title, toExport, export.AllFormats)
		return exportResultMsg{paths: paths, err: err}, err
	}
}
