package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/rowsync/internal/core/config"
	"github.com/colonyops/rowsync/internal/core/eventbus"
)

const appName = "rowsync"

// Flags is the state shared by every command. The root command's Before hook
// fills Config and Bus.
type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	ProfilerPort int

	Config *config.Config
	Bus    *eventbus.EventBus
}

// DefaultConfigPath is $XDG_CONFIG_HOME/rowsync/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), appName, "config.yaml")
}

// DefaultLogFile is rowsync.log under the user's state directory, or
// ~/Library/Logs on macOS when XDG_STATE_HOME is unset.
func DefaultLogFile() string {
	if os.Getenv("XDG_STATE_HOME") == "" && runtime.GOOS == "darwin" {
		return filepath.Join(homeDir(), "Library", "Logs", appName, appName+".log")
	}
	return filepath.Join(xdgDir("XDG_STATE_HOME", ".local", "state"), appName, appName+".log")
}

// xdgDir returns $env, or fallback joined under the home directory.
func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return filepath.Join(append([]string{homeDir()}, fallback...)...)
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}
