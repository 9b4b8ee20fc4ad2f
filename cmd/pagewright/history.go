package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/store"
)

func runHistory(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() != 1 {
		return errors.New("history expects exactly one DOCUMENT argument")
	}
	snap, err := store.Load(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("unable to open document: %w", err)
	}
	env.log.Debug("Listing versions", zap.String("id", snap.ID), zap.Int("current", snap.Version))
	return writeHistory(cmd.Root().Writer, snap, time.Now())
}

func writeHistory(out io.Writer, snap store.Snapshot, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\n", snap.Title, snap.ID)
	for _, rev := range snap.Revisions() {
		mark := ""
		if rev.Version == snap.Version {
			mark = "current"
		}
		fmt.Fprintf(w, "v%d\t%s\t%d page(s)\t%s\n",
			rev.Version, humanize.RelTime(rev.SavedAt, now, "ago", "from now"), len(rev.Pages), mark)
	}
	return w.Flush()
}

func runRestore(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() != 1 {
		return errors.New("restore expects exactly one DOCUMENT argument")
	}
	version := cmd.Int("version")
	if version <= 0 {
		return errors.New("restore needs --version")
	}
	snap, err := store.Restore(cmd.Args().First(), version, env.cfg.Editor.HistoryLimit)
	if err != nil {
		return fmt.Errorf("unable to restore version %d: %w", version, err)
	}
	env.log.Info("Version restored", zap.Int("restored", version), zap.Int("version", snap.Version))
	fmt.Fprintf(cmd.Root().Writer, "Restored v%d of %s as v%d\n", version, snap.Title, snap.Version)
	return nil
}
