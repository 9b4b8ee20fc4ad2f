package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/export"
	"github.com/csheth/pagewright/internal/importer"
	"github.com/csheth/pagewright/internal/overflow"
	"github.com/csheth/pagewright/internal/pagination"
	"github.com/csheth/pagewright/internal/surface"
)

func runExport(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("export expects a SOURCE argument")
	}
	if cmd.Args().Len() > 2 {
		env.log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	formats, err := export.ParseFormats(cmd.String("to"))
	if err != nil {
		return err
	}

	src := cmd.Args().Get(0)
	res, err := importer.Load(src)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", src, err)
	}

	var pages []document.Content
	if res.Kind == importer.KindSnapshot && len(res.Pages) > 0 {
		pages = res.Pages
	} else {
		capacity, err := env.cfg.Page.Capacity()
		if err != nil {
			return fmt.Errorf("unable to compute page capacity: %w", err)
		}
		pages = paginate(res.Content, capacity, env.log)
	}

	dest := cmd.Args().Get(1)
	if dest == "" {
		if dest, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to determine destination: %w", err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination: %w", err)
	}

	title := res.Title
	if title == "" {
		title = env.cfg.Editor.Title
	}
	written, err := export.WriteFiles(dest, title, pages, formats)
	for _, path := range written {
		env.log.Info("Exported", zap.String("file", path))
	}
	return err
}

// paginate lays content out on pages of the given capacity without a
// terminal, using the same controller the editor runs.
func paginate(content document.Content, capacity overflow.Capacity, log *zap.Logger) []document.Content {
	queue := &surface.Queue{}
	ctrl := pagination.New(overflow.NewDetector(capacity, log), queue, log)
	ctrl.Load([]document.Content{content})
	ctrl.Reflow()
	queue.Flush()
	return ctrl.Pages()
}
