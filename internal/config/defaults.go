package config

import (
	"time"

	"svcseq/internal/controller"
	"svcseq/internal/orchestrator"
	"svcseq/internal/services"
	"svcseq/internal/transport"
)

const (
	DefaultPollInterval      = controller.DefaultPollInterval
	DefaultStartTimeout      = controller.DefaultStartTimeout
	DefaultWaitTimeout       = controller.DefaultWaitTimeout
	DefaultSSHDialRetries    = 3
	DefaultSSHRetryInterval  = 2 * time.Second
	DefaultTransportType     = string(transport.KindSC)
	DefaultFailurePolicyName = string(orchestrator.FailureContinue)
)

// GetDefaultConfig returns the built-in configuration. It has no services;
// the plan always comes from a configuration file.
func GetDefaultConfig() SvcseqConfig {
	return SvcseqConfig{
		Transport: TransportConfig{
			Type:           DefaultTransportType,
			CommandTimeout: transport.DefaultCommandTimeout,
			SSH: SSHConfig{
				DialRetries:       DefaultSSHDialRetries,
				DialRetryInterval: DefaultSSHRetryInterval,
			},
		},
		Timing: TimingConfig{
			PollInterval: DefaultPollInterval,
			StartTimeout: DefaultStartTimeout,
			WaitTimeout:  DefaultWaitTimeout,
		},
		OnFailure: DefaultFailurePolicyName,
		Services:  []services.ServiceTarget{},
	}
}
