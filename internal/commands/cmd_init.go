package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	initcmd "github.com/colonyops/rowsync/internal/commands/init"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
	theme string
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Write a starter configuration with an interactive wizard",
		UsageText: "rowsync init [options]",
		Description: `Asks for a theme, animation and scroll settings, and the demo's initial
size, then writes them to the config file with the default keybindings.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration (a .bak copy is kept).`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       "preselected theme",
				Destination: &cmd.theme,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	preset := initcmd.DefaultAnswers()
	if cmd.theme != "" {
		preset.Theme = cmd.theme
	}

	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		Yes:        cmd.yes,
		Force:      cmd.force,
		Out:        c.Root().Writer,
		Preset:     preset,
	})
	return wizard.Run(ctx)
}
