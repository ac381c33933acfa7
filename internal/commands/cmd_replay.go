package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/core/replay"
	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/pkg/ioyaml"
)

type ReplayCmd struct {
	flags *Flags
	input ioyaml.FileReader[replay.Script]

	globs      []string
	strict     bool
	animated   bool
	primitives bool
	color      string
}

// NewReplayCmd creates a new replay command.
func NewReplayCmd(flags *Flags) *ReplayCmd {
	return &ReplayCmd{flags: flags}
}

// Register adds the replay command to the application.
func (cmd *ReplayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "replay",
		Usage:     "Run replay scripts against the surface simulator",
		UsageText: "rowsync replay [options] [script.yaml...]",
		Description: `Runs each script against a fresh coordinator and simulated surface.

After every step the simulator's shape is compared with the coordinator's,
and every primitive the surface received is checked against the index
rules. Scripts come from arguments, --glob patterns, or --file. With none
of those the script is read from stdin.

Run 'rowsync doc' for the script format.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringSliceFlag{
				Name:        "glob",
				Aliases:     []string{"g"},
				Usage:       "glob of script files, ** allowed (repeatable)",
				Destination: &cmd.globs,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "panic on invalid operations (overrides config)",
				Destination: &cmd.strict,
			},
			&cli.BoolFlag{
				Name:        "animated",
				Usage:       "submit batches animated (overrides config)",
				Destination: &cmd.animated,
			},
			&cli.BoolFlag{
				Name:        "primitives",
				Aliases:     []string{"p"},
				Usage:       "print every surface call after the summary",
				Destination: &cmd.primitives,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "color output (auto, always, never)",
				Value:       "auto",
				Destination: &cmd.color,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ReplayCmd) run(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer
	if err := cmd.setColor(w); err != nil {
		return err
	}

	scripts, err := cmd.load(c.Args().Slice())
	if err != nil {
		return err
	}

	cfg := cmd.flags.Config
	opts := replay.Options{
		Strict:    cfg.Strict || cmd.strict,
		Animated:  cfg.Animation.Enabled || cmd.animated,
		Animation: cfg.AnimationStyle(),
		Scroll:    cfg.ScrollPosition(),
		Width:     cfg.Replay.Width,
		Height:    cfg.Replay.Height,
		Bus:       cmd.flags.Bus,
	}

	failed := 0
	for i, s := range scripts {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}

		logger := logging.Component("replay").With().Str("script", s.Name).Logger()
		opts.Logger = &logger

		report, runErr := replay.Run(ctx, s, opts)
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}
		if runErr != nil {
			failed++
			log.Error().Err(runErr).Str("script", s.Name).Msg("replay failed")
		}

		if err := report.Render(w, runErr); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if cmd.primitives {
			for _, p := range report.Primitives() {
				_, _ = fmt.Fprintln(w, styles.ReplayOpStyle.Render("  "+p))
			}
		}
	}

	if failed > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.ReplayErrorStyle.Render(
			fmt.Sprintf("%d of %d script(s) failed", failed, len(scripts))))
		return cli.Exit("", 1)
	}
	return nil
}

// load collects scripts from paths, globs, and the file flag in that order.
// Stdin is read only when nothing else names a script.
func (cmd *ReplayCmd) load(args []string) ([]*replay.Script, error) {
	paths := slices.Clone(args)
	for _, pattern := range cmd.globs {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("glob %q matched no files", pattern)
		}
		paths = append(paths, matches...)
	}
	paths = dedupe(paths)

	var scripts []*replay.Script
	for _, p := range paths {
		s, err := replay.Load(p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}

	if len(scripts) > 0 && cmd.input.Source() == "stdin" {
		return scripts, nil
	}

	s, err := cmd.input.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cmd.input.Source(), err)
	}
	if s.Name == "" {
		s.Name = cmd.input.Source()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid script: %w", cmd.input.Source(), err)
	}
	return append(scripts, &s), nil
}

// setColor picks the lipgloss color profile for w.
func (cmd *ReplayCmd) setColor(w io.Writer) error {
	switch strings.ToLower(cmd.color) {
	case "always":
		return nil
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
		return nil
	case "auto", "":
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return nil
	default:
		return fmt.Errorf("invalid --color %q (must be auto, always, or never)", cmd.color)
	}
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
