package app

import (
	"github.com/benbjohnson/clock"

	"svcseq/internal/config"
	"svcseq/internal/transport"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is an explicit config file layered over the defaults,
	// user and project files.
	ConfigPath string

	// UI mode
	TUI bool

	// Debug settings
	Debug bool

	// OnFailure overrides the configured failure policy when set.
	OnFailure string

	// Transport and Clock replace the configured transport and the wall
	// clock. Used by tests and by callers that embed svcseq.
	Transport transport.Transport
	Clock     clock.Clock

	// Settings is filled in by NewApplication from the layered files.
	Settings *config.SvcseqConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, tui, debug bool, onFailure string) *Config {
	return &Config{
		ConfigPath: configPath,
		TUI:        tui,
		Debug:      debug,
		OnFailure:  onFailure,
	}
}
