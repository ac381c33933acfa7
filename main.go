package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rowsync/internal/commands"
	"github.com/colonyops/rowsync/internal/core/config"
	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/pkg/logutils"
)

// Set with -ldflags at release time; otherwise filled from the module's build
// info when available.
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			v = mv
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				c = s.Value
			case "vcs.time":
				d = s.Value
			}
		}
	}

	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, c, d)
}

func globalFlags(flags *commands.Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("ROWSYNC_LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (\"-\" writes readable logs to stderr)",
			Sources:     cli.EnvVars("ROWSYNC_LOG_FILE"),
			Value:       commands.DefaultLogFile(),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("ROWSYNC_CONFIG"),
			Value:       commands.DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
	}
}

// setup wires the process-wide pieces every command relies on and returns a
// func that releases them.
func setup(flags *commands.Flags) (func(), error) {
	logger, closeLog, err := logutils.New(flags.LogLevel, flags.LogFile, logging.ContextHook{})
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags.Config = cfg

	// Load validates the theme name.
	palette, _ := styles.GetPalette(cfg.TUI.Theme)
	styles.SetTheme(palette)

	flags.Bus = eventbus.New()
	eventbus.RegisterDebugLogger(flags.Bus, logging.Component("eventbus"))

	return closeLog, nil
}

func newApp(flags *commands.Flags) *cli.Command {
	release := func() {}

	app := &cli.Command{
		Name:      "rowsync",
		Usage:     "Keep sectioned lists in sync with the views that draw them",
		UsageText: "rowsync [global options] command [command options]",
		Description: `rowsync batches structural edits to a sectioned list and hands them to a
rendering surface in an order the surface can apply.

Run 'rowsync' with no arguments to open the interactive demo.
Run 'rowsync replay script.yaml' to check a script against the simulator.`,
		Version: build(),
		Flags:   globalFlags(flags),
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			r, err := setup(flags)
			if err != nil {
				return ctx, err
			}
			release = r
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			release()
			return nil
		},
	}

	tui := commands.NewTuiCmd(flags)
	app = tui.Register(app)
	app = commands.NewReplayCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDocCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)

	// The demo is the default command, so its flags also live on the root.
	app.Flags = append(app.Flags, tui.Flags()...)
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Present() {
			return fmt.Errorf("unknown command %q. Run 'rowsync --help' for usage", c.Args().First())
		}
		return tui.Run(ctx, c)
	}

	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp(&commands.Flags{}).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
