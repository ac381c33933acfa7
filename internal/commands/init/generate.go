package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/rowsync/internal/core/config"
)

// Answers holds the wizard's choices. The zero value of a field keeps the
// default.
type Answers struct {
	Theme          string
	Animated       bool
	Animation      string
	Scroll         string
	Strict         bool
	Sections       int
	RowsPerSection int
}

// DefaultAnswers mirrors config.DefaultConfig.
func DefaultAnswers() Answers {
	def := config.DefaultConfig()
	return Answers{
		Theme:          def.TUI.Theme,
		Animated:       def.Animation.Enabled,
		Animation:      def.Animation.Style,
		Scroll:         def.Scroll.Position,
		Strict:         def.Strict,
		Sections:       def.TUI.Sections,
		RowsPerSection: def.TUI.RowsPerSection,
	}
}

// GenerateConfig builds a complete config from a, with the default
// keybindings written out so they can be edited in place.
func GenerateConfig(a Answers) (config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Strict = a.Strict
	cfg.Animation.Enabled = a.Animated
	if a.Animation != "" {
		cfg.Animation.Style = a.Animation
	}
	if a.Scroll != "" {
		cfg.Scroll.Position = a.Scroll
	}
	if a.Theme != "" {
		cfg.TUI.Theme = a.Theme
	}
	if a.Sections > 0 {
		cfg.TUI.Sections = a.Sections
	}
	cfg.TUI.RowsPerSection = max(a.RowsPerSection, 0)
	cfg.TUI.Keybindings = config.DefaultKeybindings()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

const header = `# rowsync configuration
# Run 'rowsync doc config' for every key and 'rowsync config validate' to check it.
`

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(cfg config.Config, configPath string) error {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(configPath, buf.Bytes(), 0o644)
}
