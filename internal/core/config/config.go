// Package config handles configuration loading and validation for rowsync.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// Built-in action names for demo keybindings.
const (
	ActionInsert        = "insert"
	ActionDelete        = "delete"
	ActionReload        = "reload"
	ActionMoveUp        = "move_up"
	ActionMoveDown      = "move_down"
	ActionAddSection    = "add_section"
	ActionRemoveSection = "remove_section"
	ActionShuffle       = "shuffle"
	ActionSelect        = "select"
)

var actions = []string{
	ActionInsert,
	ActionDelete,
	ActionReload,
	ActionMoveUp,
	ActionMoveDown,
	ActionAddSection,
	ActionRemoveSection,
	ActionShuffle,
	ActionSelect,
}

// defaultKeybindings provides built-in keybindings that users can override.
var defaultKeybindings = map[string]Keybinding{
	"a":     {Action: ActionInsert, Help: "insert row"},
	"d":     {Action: ActionDelete, Help: "delete row"},
	"r":     {Action: ActionReload, Help: "reload row"},
	"K":     {Action: ActionMoveUp, Help: "move up"},
	"J":     {Action: ActionMoveDown, Help: "move down"},
	"A":     {Action: ActionAddSection, Help: "add section"},
	"D":     {Action: ActionRemoveSection, Help: "remove section"},
	"s":     {Action: ActionShuffle, Help: "shuffle"},
	"enter": {Action: ActionSelect, Help: "select"},
}

// Config holds the application configuration.
type Config struct {
	Strict    bool            `yaml:"strict"`
	Animation AnimationConfig `yaml:"animation"`
	Scroll    ScrollConfig    `yaml:"scroll"`
	TUI       TUIConfig       `yaml:"tui"`
	Replay    ReplayConfig    `yaml:"replay"`
}

// AnimationConfig controls how implicit batches animate.
type AnimationConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Style    string        `yaml:"style"`
	Duration time.Duration `yaml:"duration"` // how long the TUI surface holds a completion
}

// ScrollConfig holds the default scroll position for selections.
type ScrollConfig struct {
	Position string `yaml:"position"`
}

// TUIConfig configures the interactive demo.
type TUIConfig struct {
	Theme          string                `yaml:"theme"`
	Sections       int                   `yaml:"sections"`
	RowsPerSection int                   `yaml:"rows_per_section"`
	Keybindings    map[string]Keybinding `yaml:"keybindings"`
}

// ReplayConfig sets the simulated viewport used by replay runs.
type ReplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Keybinding maps a key to a built-in demo action.
type Keybinding struct {
	Action string `yaml:"action"`
	Help   string `yaml:"help"` // help text shown in TUI
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Animation: AnimationConfig{
			Enabled:  true,
			Style:    surface.AnimationAutomatic.String(),
			Duration: 250 * time.Millisecond,
		},
		Scroll: ScrollConfig{
			Position: surface.ScrollNone.String(),
		},
		TUI: TUIConfig{
			Theme:          styles.DefaultTheme,
			Sections:       3,
			RowsPerSection: 4,
			Keybindings:    map[string]Keybinding{},
		},
		Replay: ReplayConfig{
			Width:  80,
			Height: 24,
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Merge user keybindings into defaults (user config overrides defaults)
	cfg.TUI.Keybindings = mergeKeybindings(defaultKeybindings, cfg.TUI.Keybindings)

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Animation.Style == "" {
		c.Animation.Style = defaults.Animation.Style
	}
	if c.Scroll.Position == "" {
		c.Scroll.Position = defaults.Scroll.Position
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.Sections == 0 {
		c.TUI.Sections = defaults.TUI.Sections
	}
	if c.Replay.Width == 0 {
		c.Replay.Width = defaults.Replay.Width
	}
	if c.Replay.Height == 0 {
		c.Replay.Height = defaults.Replay.Height
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := surface.ParseAnimation(c.Animation.Style); err != nil {
		return fmt.Errorf("animation.style: %w", err)
	}

	if c.Animation.Duration < 0 {
		return fmt.Errorf("animation.duration cannot be negative")
	}

	if _, err := surface.ParseScrollPosition(c.Scroll.Position); err != nil {
		return fmt.Errorf("scroll.position: %w", err)
	}

	if c.TUI.Sections < 0 || c.TUI.RowsPerSection < 0 {
		return fmt.Errorf("tui.sections and tui.rows_per_section cannot be negative")
	}

	if c.Replay.Width < 1 || c.Replay.Height < 1 {
		return fmt.Errorf("replay viewport must be at least 1x1")
	}

	for key, kb := range c.TUI.Keybindings {
		if kb.Action == "" {
			return fmt.Errorf("keybinding %q must have an action", key)
		}
		if !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

// AnimationStyle returns the animation for implicit batches. A disabled
// animation maps to surface.AnimationNone.
func (c *Config) AnimationStyle() surface.Animation {
	if !c.Animation.Enabled {
		return surface.AnimationNone
	}
	a, err := surface.ParseAnimation(c.Animation.Style)
	if err != nil {
		return surface.AnimationAutomatic
	}
	return a
}

// ScrollPosition returns the configured default scroll position.
func (c *Config) ScrollPosition() surface.ScrollPosition {
	p, err := surface.ParseScrollPosition(c.Scroll.Position)
	if err != nil {
		return surface.ScrollNone
	}
	return p
}

// DefaultKeybindings returns a copy of the built-in keybindings.
func DefaultKeybindings() map[string]Keybinding {
	return mergeKeybindings(defaultKeybindings, nil)
}

// Actions lists the built-in demo actions in display order.
func Actions() []string {
	return slices.Clone(actions)
}

func isValidAction(action string) bool {
	return slices.Contains(actions, action)
}
