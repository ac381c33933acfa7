package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including enum values, theme names, keybindings, and file accessibility.
// The configPath argument specifies the config file location to validate
// (empty string skips config file check). Unlike Validate, every problem is
// reported as a criterio field error.
func (c *Config) ValidateDeep(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("animation.style", c.Animation.Style, isAnimation),
		criterio.Run("animation.duration", c.Animation.Duration.String(), nonNegativeDuration),
		criterio.Run("scroll.position", c.Scroll.Position, isScrollPosition),
		criterio.Run("tui.theme", c.TUI.Theme, isTheme),
		c.validateSizes(),
		c.validateKeybindings(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.Animation.Enabled && c.Animation.Style != surface.AnimationAutomatic.String() {
		warnings = append(warnings, ValidationWarning{
			Category: "Animation",
			Item:     "style",
			Message:  "animation.style is ignored while animation.enabled is false",
		})
	}

	if c.TUI.RowsPerSection == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "TUI",
			Item:     "rows_per_section",
			Message:  "the demo starts with empty sections",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isAnimation(s string) error {
	_, err := surface.ParseAnimation(s)
	return err
}

func isScrollPosition(s string) error {
	_, err := surface.ParseScrollPosition(s)
	return err
}

func nonNegativeDuration(s string) error {
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("must not be negative, got %s", s)
	}
	return nil
}

func isTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func (c *Config) validateSizes() error {
	var errs criterio.FieldErrorsBuilder
	if c.TUI.Sections < 0 {
		errs = errs.Append("tui.sections", fmt.Errorf("must not be negative"))
	}
	if c.TUI.RowsPerSection < 0 {
		errs = errs.Append("tui.rows_per_section", fmt.Errorf("must not be negative"))
	}
	if c.Replay.Width < 1 {
		errs = errs.Append("replay.width", fmt.Errorf("must be at least 1"))
	}
	if c.Replay.Height < 1 {
		errs = errs.Append("replay.height", fmt.Errorf("must be at least 1"))
	}
	return errs.ToError()
}

func (c *Config) validateKeybindings() error {
	keys := make([]string, 0, len(c.TUI.Keybindings))
	for k := range c.TUI.Keybindings {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var errs criterio.FieldErrorsBuilder
	for _, key := range keys {
		kb := c.TUI.Keybindings[key]
		field := fmt.Sprintf("tui.keybindings[%q]", key)
		switch {
		case kb.Action == "":
			errs = errs.Append(field, fmt.Errorf("action is required"))
		case !isValidAction(kb.Action):
			errs = errs.Append(field, fmt.Errorf("unknown action %q (available: %s)", kb.Action, strings.Join(actions, ", ")))
		}
	}
	return errs.ToError()
}
