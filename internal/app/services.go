package app

import (
	"fmt"
	"net"

	"svcseq/internal/config"
	"svcseq/internal/controller"
	"svcseq/internal/orchestrator"
	"svcseq/internal/reporting"
	"svcseq/internal/transport"
)

// Services holds the collaborators of one run, all sharing one reporter.
type Services struct {
	Transport    transport.Transport
	Controller   *controller.Controller
	Orchestrator *orchestrator.Orchestrator
}

// InitializeServices wires the transport, controller and orchestrator for
// the loaded settings. Nothing is contacted until the orchestrator runs.
func InitializeServices(cfg *Config, reporter reporting.Reporter) (*Services, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	settings := *cfg.Settings

	t := cfg.Transport
	if t == nil {
		var err error
		t, err = NewTransport(settings.Transport)
		if err != nil {
			return nil, err
		}
	}

	policy, err := orchestrator.ParseFailurePolicy(settings.OnFailure)
	if err != nil {
		return nil, err
	}

	ctrl := controller.New(t, controller.Options{
		Clock:        cfg.Clock,
		Reporter:     reporter,
		PollInterval: settings.Timing.PollInterval,
	})
	orch := orchestrator.New(ctrl, orchestrator.Config{
		OnFailure:    policy,
		StartTimeout: settings.Timing.StartTimeout,
		Reporter:     reporter,
		Clock:        cfg.Clock,
	})

	return &Services{
		Transport:    t,
		Controller:   ctrl,
		Orchestrator: orch,
	}, nil
}

// NewTransport builds the transport named by tc.Type.
func NewTransport(tc config.TransportConfig) (transport.Transport, error) {
	kind, ok := transport.ParseKind(tc.Type)
	if !ok {
		return nil, fmt.Errorf("unknown transport %q", tc.Type)
	}

	runner := transport.ExecRunner{Timeout: tc.CommandTimeout}
	switch kind {
	case transport.KindSC:
		t := transport.NewSC(runner)
		t.Binary = tc.Binary
		return t, nil
	case transport.KindPowerShell:
		t := transport.NewPowerShell(runner)
		t.Binary = tc.Binary
		return t, nil
	case transport.KindSCM:
		return transport.NewSCM(), nil
	case transport.KindSSH:
		return &transport.SSH{
			Address:           sshAddress(tc.SSH.Host),
			User:              tc.SSH.User,
			KeyFile:           tc.SSH.KeyFile,
			KnownHostsFile:    tc.SSH.KnownHostsFile,
			DialRetries:       tc.SSH.DialRetries,
			DialRetryInterval: tc.SSH.DialRetryInterval,
			Timeout:           tc.CommandTimeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", tc.Type)
	}
}

func sshAddress(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "22")
}
