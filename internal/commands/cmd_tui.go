package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/tui"
	"github.com/colonyops/rowsync/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	seed  uint64
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive list demo",
		Description: `Opens a sectioned list kept in sync by a coordinator.

Rows and sections can be inserted, deleted, reloaded, moved and shuffled
from the keyboard. Every edit goes through a batch; the status line shows
what each batch sent to the list and whether its animation landed.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("ROWSYNC_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "seed for the shuffle action (0 picks one from the clock)",
			Destination: &cmd.seed,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	seed := cmd.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	m := tui.New(tui.Options{
		Config: cmd.flags.Config,
		Bus:    cmd.flags.Bus,
		Logger: logging.Component("tui"),
		Seed:   seed,
	})

	finalModel, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	}
	return nil
}
