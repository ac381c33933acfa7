package commands

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/rowsync/internal/core/styles"
)

//go:embed docs/*.md
var docs embed.FS

type DocCmd struct {
	flags *Flags
	raw   bool
	width int
}

func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Reference documentation",
		Description: `Prints reference documentation rendered for the terminal.

Use 'rowsync doc replay' for the replay script format.
Use 'rowsync doc config' for configuration keys.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap width (defaults to the terminal width)",
				Destination: &cmd.width,
			},
		},
		Commands: []*cli.Command{
			cmd.page("replay", "Show the replay script format", "docs/replay.md"),
			cmd.page("config", "Show configuration keys", "docs/config.md"),
		},
	})
	return app
}

func (cmd *DocCmd) page(name, usage, file string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(_ context.Context, c *cli.Command) error {
			return cmd.render(c.Root().Writer, file)
		},
	}
}

func (cmd *DocCmd) render(w io.Writer, file string) error {
	md, err := docs.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	if cmd.raw {
		_, err := w.Write(md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.wrapWidth(w)),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(string(md))
	if err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func (cmd *DocCmd) wrapWidth(w io.Writer) int {
	if cmd.width > 0 {
		return cmd.width
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, 100)
		}
	}
	return 80
}
