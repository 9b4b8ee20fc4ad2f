package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/importer"
	"github.com/csheth/pagewright/internal/prefs"
	"github.com/csheth/pagewright/internal/store"
	"github.com/csheth/pagewright/internal/tui"
)

func runEdit(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() != 1 {
		return errors.New("edit expects exactly one DOCUMENT argument")
	}
	path, err := filepath.Abs(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("unable to resolve document path: %w", err)
	}
	capacity, err := env.cfg.Page.Capacity()
	if err != nil {
		return fmt.Errorf("unable to compute page capacity: %w", err)
	}

	snap, err := store.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		env.log.Info("Starting a new document", zap.String("path", path))
	case err != nil:
		return fmt.Errorf("unable to open document: %w", err)
	}

	title := snap.Title
	pages := snap.Pages
	reflow, unsaved := false, false
	src, version := cmd.String("import"), cmd.Int("version")
	if src != "" && version > 0 {
		return errors.New("--import and --version cannot be combined")
	}
	if version > 0 {
		rev, err := snap.Revision(version)
		if err != nil {
			return fmt.Errorf("unable to open version %d: %w", version, err)
		}
		env.log.Info("Opening saved version", zap.Int("version", rev.Version), zap.Int("current", snap.Version))
		pages = rev.Pages
		unsaved = rev.Version != snap.Version
	}
	if src != "" {
		res, err := importer.Load(src)
		if err != nil {
			return fmt.Errorf("unable to import %s: %w", src, err)
		}
		env.log.Info("Imported document", zap.String("source", src), zap.String("kind", string(res.Kind)))
		pages = []document.Content{res.Content}
		reflow, unsaved = true, true
		if title == "" {
			title = res.Title
		}
	}
	if title == "" {
		title = env.cfg.Editor.Title
	}

	model := tui.New(tui.Config{
		DocumentPath: path,
		Title:        title,
		Capacity:     capacity,
		LabelRefresh: env.cfg.Editor.LabelRefresh,
		HistoryLimit: env.cfg.Editor.HistoryLimit,
		Pages:        pages,
		Reflow:       reflow,
		Unsaved:      unsaved,
		SavedAt:      snap.SavedAt,
		Prefs:        prefs.Open(env.log).WithDefaults(firstRunPrefs()),
		Logger:       env.log,
	})

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if !cmd.Bool("no-alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// firstRunPrefs follows the terminal's background until the user picks a
// mode.
func firstRunPrefs() prefs.Preferences {
	p := prefs.Defaults()
	p.DarkMode = lipgloss.HasDarkBackground()
	return p
}
