package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/reviewfeed/internal/core/config"
	"github.com/hay-kot/reviewfeed/internal/reviewfeed"
	"github.com/hay-kot/reviewfeed/pkg/utils"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Stderr carries console logs. The TUI holds it while it owns the
	// terminal.
	Stderr *utils.HoldWriter
}

// App wires the feed from the loaded configuration.
func (f *Flags) App() (*reviewfeed.App, error) {
	return reviewfeed.NewApp(f.Config)
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reviewfeed", "config.yaml")
}
