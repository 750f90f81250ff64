package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcseq/internal/config"
	"svcseq/internal/orchestrator"
	"svcseq/internal/services"
	"svcseq/internal/transport"
	"svcseq/internal/transport/transporttest"
)

var (
	adfs  = services.ServiceTarget{Server: "ADFS-SERVER", ServiceName: "adfssrv"}
	sonar = services.ServiceTarget{Server: "SONAR-SERVER", ServiceName: "SonarQube"}
)

func testSettings(targets ...services.ServiceTarget) *config.SvcseqConfig {
	s := config.GetDefaultConfig()
	s.Services = targets
	return &s
}

func TestNewApplication_OnFailureOverride(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		want      string
		wantError bool
	}{
		{name: "no override keeps config", override: "", want: "continue"},
		{name: "abort", override: "abort", want: "abort"},
		{name: "case insensitive", override: "Continue", want: "continue"},
		{name: "invalid", override: "retry", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("", false, false, tt.override)
			cfg.Settings = testSettings(adfs)

			a, err := NewApplication(cfg)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Settings().OnFailure)
			assert.Equal(t, services.StartupPlan{adfs}, a.Plan())
		})
	}
}

func TestNewApplication_InvalidPlan(t *testing.T) {
	cfg := NewConfig("", false, false, "")
	cfg.Settings = testSettings(adfs, adfs)

	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid startup plan")
}

func TestRun_CLIMode(t *testing.T) {
	clk := transporttest.NewStepClock()
	sim := transporttest.NewSimulated(clk).
		Add(adfs, transporttest.Service{Status: services.StatusRunning}).
		Add(sonar, transporttest.Service{StartDelay: 12 * time.Second})

	cfg := NewConfig("", false, false, "")
	cfg.Settings = testSettings(adfs, sonar)
	cfg.Transport = sim
	cfg.Clock = clk

	a, err := NewApplication(cfg)
	require.NoError(t, err)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.AllSucceeded())
	assert.Equal(t, 0, result.Outcomes[0].ElapsedPolls)
	assert.Equal(t, 4, result.Outcomes[1].ElapsedPolls)
	assert.Equal(t, 1, sim.Count("start", sonar))
}

func TestRun_AbortPolicyFromConfig(t *testing.T) {
	clk := transporttest.NewStepClock()
	sim := transporttest.NewSimulated(clk).
		Add(adfs, transporttest.Service{NeverStarts: true}).
		Add(sonar, transporttest.Service{})

	cfg := NewConfig("", false, false, "abort")
	settings := testSettings(adfs, sonar)
	settings.Timing.StartTimeout = 10 * time.Second
	cfg.Settings = settings
	cfg.Transport = sim
	cfg.Clock = clk

	a, err := NewApplication(cfg)
	require.NoError(t, err)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, 2, result.Outcomes[0].ElapsedPolls)
	assert.True(t, result.Outcomes[1].Skipped)
	assert.True(t, result.Aborted)
	assert.Equal(t, 0, sim.Count("query", sonar))
	assert.Error(t, result.Err())
}

func TestRun_EmptyPlan(t *testing.T) {
	cfg := NewConfig("", false, false, "")
	cfg.Settings = testSettings()

	a, err := NewApplication(cfg)
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no services configured")
}

func TestInitializeServices_RequiresSettings(t *testing.T) {
	_, err := InitializeServices(&Config{}, nil)
	assert.Error(t, err)
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.TransportConfig
		wantName string
		check    func(t *testing.T, tr transport.Transport)
	}{
		{
			name:     "sc with binary override",
			cfg:      config.TransportConfig{Type: "sc", Binary: `C:\Windows\System32\sc.exe`},
			wantName: "sc",
			check: func(t *testing.T, tr transport.Transport) {
				assert.Equal(t, `C:\Windows\System32\sc.exe`, tr.(*transport.SC).Binary)
			},
		},
		{
			name:     "powershell",
			cfg:      config.TransportConfig{Type: "PowerShell", CommandTimeout: time.Minute},
			wantName: "powershell",
			check: func(t *testing.T, tr transport.Transport) {
				assert.Equal(t, transport.ExecRunner{Timeout: time.Minute}, tr.(*transport.PowerShell).Runner)
			},
		},
		{
			name:     "scm",
			cfg:      config.TransportConfig{Type: "scm"},
			wantName: "scm",
		},
		{
			name: "ssh adds default port",
			cfg: config.TransportConfig{Type: "ssh", SSH: config.SSHConfig{
				Host: "jump.example", User: "admin", DialRetries: 5, DialRetryInterval: time.Second,
			}},
			wantName: "ssh",
			check: func(t *testing.T, tr transport.Transport) {
				s := tr.(*transport.SSH)
				assert.Equal(t, "jump.example:22", s.Address)
				assert.Equal(t, "admin", s.User)
				assert.Equal(t, uint64(5), s.DialRetries)
			},
		},
		{
			name:     "ssh keeps explicit port",
			cfg:      config.TransportConfig{Type: "ssh", SSH: config.SSHConfig{Host: "10.0.0.5:2222", User: "admin"}},
			wantName: "ssh",
			check: func(t *testing.T, tr transport.Transport) {
				assert.Equal(t, "10.0.0.5:2222", tr.(*transport.SSH).Address)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransport(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, tr.Name())
			if tt.check != nil {
				tt.check(t, tr)
			}
		})
	}

	_, err := NewTransport(config.TransportConfig{Type: "winrm"})
	assert.Error(t, err)
}

func TestInitializeServices_PolicyAndTiming(t *testing.T) {
	cfg := &Config{Settings: testSettings(adfs), Transport: transporttest.NewSimulated(nil)}
	svcs, err := InitializeServices(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "simulated", svcs.Controller.TransportName())

	cfg.Settings.OnFailure = string(orchestrator.FailureAbort)
	_, err = InitializeServices(cfg, nil)
	assert.NoError(t, err)
}
