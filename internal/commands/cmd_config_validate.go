package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/rowsync/internal/core/config"
	"github.com/colonyops/rowsync/internal/core/styles"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "rowsync config validate [options]",
				Description: "Validates the configuration file, checking enum values, theme names, sizes, keybindings, and the file itself.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	errs, err := fieldErrors(cfg.ValidateDeep(cmd.flags.ConfigPath))
	if err != nil {
		return err
	}
	warnings := cfg.Warnings()

	w := c.Root().Writer
	switch cmd.format {
	case "json":
		return outputJSON(w, errs, warnings)
	case "text", "":
		return outputText(w, errs, warnings)
	default:
		return fmt.Errorf("invalid --format %q (must be text or json)", cmd.format)
	}
}

// fieldErrors flattens a criterio result. Errors of any other shape are
// returned as is.
func fieldErrors(err error) ([]validationError, error) {
	if err == nil {
		return nil, nil
	}
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make([]validationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = validationError{Field: fe.Field, Message: fe.Err.Error()}
	}
	return out, nil
}

func outputJSON(w io.Writer, errs []validationError, warnings []config.ValidationWarning) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []validationError          `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if len(errs) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func outputText(w io.Writer, errs []validationError, warnings []config.ValidationWarning) error {
	for _, warn := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.StatusStyle.Render("!"), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.ReplayErrorStyle.Render(styles.IconCross), e.Field, e.Message)
	}

	_, _ = fmt.Fprintln(w)
	if len(errs) == 0 {
		_, _ = fmt.Fprintln(w, styles.ReplayOKStyle.Render(styles.IconCheck+" Configuration is valid"))
		return nil
	}

	_, _ = fmt.Fprintln(w, styles.ReplayErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(errs))))
	return cli.Exit("", 1)
}
