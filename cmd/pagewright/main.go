package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/config"
)

const appName = "pagewright"

// appEnv is shared by every command once the command line is parsed.
type appEnv struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
}

type envKey struct{}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	return &appEnv{log: zap.NewNop()}
}

func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := envFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if env.cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.log, env.closeLog, err = env.cfg.Logging.Prepare(cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.log.Debug("Program started", zap.Strings("args", os.Args))
	if configFile == "" {
		env.log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Debug("Program ended", zap.Strings("parsed args", cmd.Args().Slice()))
	}
	if env.closeLog != nil {
		if er := env.closeLog(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close log: %w", er))
		}
	}
	return
}

// Commands return plain errors instead of cli.Exit; they are logged here and
// printed to stderr by main once the log is closed.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if env := envFromContext(ctx); env.log != nil {
		env.log.Error("Program ended with error", zap.Error(err))
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &appEnv{}), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "paginated rich-text editor for the terminal",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "write a debug log regardless of the configured level"},
		},
		Commands: []*cli.Command{
			{
				Name:         "edit",
				Usage:        "Opens DOCUMENT in the editor, creating it on first save",
				OnUsageError: usageErrorHandler,
				Action:       runEdit,
				ArgsUsage:    "DOCUMENT",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-alt-screen", Usage: "disable the alternate screen buffer"},
					&cli.StringFlag{Name: "import", Usage: "start from the contents of `FILE` (text, markdown, pdf, image or saved document)"},
					&cli.IntFlag{Name: "version", Usage: "start from saved version `N` of DOCUMENT (see history)"},
				},
			},
			{
				Name:         "history",
				Usage:        "Lists the saved versions of a document",
				OnUsageError: usageErrorHandler,
				Action:       runHistory,
				ArgsUsage:    "DOCUMENT",
			},
			{
				Name:         "restore",
				Usage:        "Makes a saved version current again, keeping the replaced one in the history",
				OnUsageError: usageErrorHandler,
				Action:       runRestore,
				ArgsUsage:    "DOCUMENT",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "version", Aliases: []string{"v"}, Usage: "version `N` to restore"},
				},
			},
			{
				Name:         "export",
				Usage:        "Exports a document without opening the editor",
				OnUsageError: usageErrorHandler,
				Action:       runExport,
				ArgsUsage:    "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Value: "all", Usage: "output `FORMAT` (text, markdown, html or all)"},
				},
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	fname := cmd.Args().Get(0)

	var (
		err  error
		data []byte
	)
	if cmd.Bool("default") {
		data = config.Defaults()
	} else if data, err = config.Dump(env.cfg); err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if fname == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(fname, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
