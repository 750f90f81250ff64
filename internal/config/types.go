package config

import (
	"time"

	"svcseq/internal/services"
)

// SvcseqConfig is the top-level configuration structure for svcseq.
type SvcseqConfig struct {
	Transport TransportConfig          `yaml:"transport" json:"transport"`
	Timing    TimingConfig             `yaml:"timing" json:"timing"`
	OnFailure string                   `yaml:"onFailure,omitempty" json:"onFailure,omitempty"` // "continue" or "abort"
	Services  []services.ServiceTarget `yaml:"services,omitempty" json:"services,omitempty"`   // Startup order
}

// TransportConfig selects and tunes the remote execution transport.
type TransportConfig struct {
	Type           string        `yaml:"type,omitempty" json:"type,omitempty"`                     // sc, powershell, scm or ssh
	CommandTimeout time.Duration `yaml:"commandTimeout,omitempty" json:"commandTimeout,omitempty"` // Per remote call
	Binary         string        `yaml:"binary,omitempty" json:"binary,omitempty"`                 // Override for sc.exe or powershell.exe
	SSH            SSHConfig     `yaml:"ssh,omitempty" json:"ssh,omitempty"`
}

// SSHConfig describes the Windows jump host used by the ssh transport.
type SSHConfig struct {
	Host              string        `yaml:"host,omitempty" json:"host,omitempty"` // host:port, port defaults to 22
	User              string        `yaml:"user,omitempty" json:"user,omitempty"`
	KeyFile           string        `yaml:"keyFile,omitempty" json:"keyFile,omitempty"`               // Empty means ssh-agent
	KnownHostsFile    string        `yaml:"knownHostsFile,omitempty" json:"knownHostsFile,omitempty"` // Empty disables host key checking
	DialRetries       uint64        `yaml:"dialRetries,omitempty" json:"dialRetries,omitempty"`
	DialRetryInterval time.Duration `yaml:"dialRetryInterval,omitempty" json:"dialRetryInterval,omitempty"`
}

// TimingConfig holds the run-wide polling parameters. Targets may
// override PollInterval and StartTimeout individually.
type TimingConfig struct {
	PollInterval time.Duration `yaml:"pollInterval,omitempty" json:"pollInterval,omitempty"`
	StartTimeout time.Duration `yaml:"startTimeout,omitempty" json:"startTimeout,omitempty"`
	WaitTimeout  time.Duration `yaml:"waitTimeout,omitempty" json:"waitTimeout,omitempty"`
}

// Plan returns the configured services as a validated StartupPlan.
func (c SvcseqConfig) Plan() (services.StartupPlan, error) {
	return services.NewStartupPlan(c.Services...)
}
