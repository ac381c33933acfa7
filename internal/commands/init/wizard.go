// Package initcmd implements 'rowsync init': an interactive wizard that
// writes a starter config file.
package initcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config
	Out        io.Writer

	// Preset seeds the prompts, or is written as is with Yes.
	Preset Answers
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(_ context.Context) error {
	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			w.printf("%s\n", styles.StatusStyle.Render("Init cancelled"))
			return nil
		}
	}

	answers := w.opts.Preset
	if !w.opts.Yes {
		var err error
		answers, err = promptUser(answers)
		if errors.Is(err, huh.ErrUserAborted) {
			w.printf("%s\n", styles.StatusStyle.Render("Init cancelled"))
			return nil
		}
		if err != nil {
			return err
		}
	}

	cfg, err := GenerateConfig(answers)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	backupPath, err := BackupConfig(w.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	if backupPath != "" {
		w.success("Backed up config to: %s", backupPath)
	}

	if err := WriteConfig(cfg, w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	w.success("Created config: %s", w.opts.ConfigPath)

	for _, warn := range cfg.Warnings() {
		w.printf("%s %s: %s\n", styles.StatusStyle.Render("!"), warn.Category, warn.Message)
	}

	w.printf("\n%s\n", styles.CommandHeaderStyle.Render("Next Steps"))
	w.printf("  1. Run 'rowsync' to open the demo\n")
	w.printf("  2. Run 'rowsync doc replay' to write a replay script\n")
	return nil
}

func promptUser(preset Answers) (Answers, error) {
	a := preset
	sections := strconv.Itoa(a.Sections)
	rows := strconv.Itoa(a.RowsPerSection)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(styles.ThemeNames()...)...).
				Value(&a.Theme),
			huh.NewConfirm().
				Title("Animate batches?").
				Description("Batches without explicit settings animate their rows").
				Value(&a.Animated),
			huh.NewSelect[string]().
				Title("Row animation").
				Options(huh.NewOptions(surface.AnimationNames()...)...).
				Value(&a.Animation),
			huh.NewSelect[string]().
				Title("Scroll selected rows to").
				Options(huh.NewOptions(surface.ScrollPositionNames()...)...).
				Value(&a.Scroll),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Demo sections").
				Value(&sections).
				Validate(positiveInt),
			huh.NewInput().
				Title("Rows per section").
				Value(&rows).
				Validate(nonNegativeInt),
			huh.NewConfirm().
				Title("Strict mode?").
				Description("Invalid operations panic instead of being reported").
				Value(&a.Strict),
		),
	)
	if err := form.Run(); err != nil {
		return Answers{}, err
	}

	// Validators have already accepted both values.
	a.Sections, _ = strconv.Atoi(sections)
	a.RowsPerSection, _ = strconv.Atoi(rows)
	return a, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of at least 0")
	}
	return nil
}

func (w *Wizard) success(format string, args ...any) {
	w.printf("%s %s\n", styles.ReplayOKStyle.Render(styles.IconCheck), fmt.Sprintf(format, args...))
}

func (w *Wizard) printf(format string, args ...any) {
	if w.opts.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(w.opts.Out, format, args...)
}
