package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"svcseq/internal/config"
	"svcseq/internal/orchestrator"
	"svcseq/internal/services"
)

var (
	adfs  = services.ServiceTarget{Server: "ADFS-SERVER", ServiceName: "adfssrv"}
	sonar = services.ServiceTarget{Server: "SONAR-SERVER", ServiceName: "SonarQube"}
)

func sampleRun() orchestrator.RunResult {
	return orchestrator.RunResult{
		Elapsed: 25 * time.Second,
		Outcomes: []services.StartupOutcome{
			{Target: adfs, FinalStatus: services.StatusRunning, Succeeded: true},
			{Target: sonar, FinalStatus: services.StatusStartPending, StartRequested: true, ElapsedPolls: 4, Elapsed: 20 * time.Second, Err: errors.New("rpc unavailable")},
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputFormatTable, false},
		{"table", OutputFormatTable, false},
		{"JSON", OutputFormatJSON, false},
		{"yaml", OutputFormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintRun_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "").PrintRun(sampleRun()))

	out := buf.String()
	assert.Contains(t, out, "adfssrv")
	assert.Contains(t, out, "SONAR-SERVER")
	assert.Contains(t, out, "already running")
	assert.Contains(t, out, "timed out")
	assert.Contains(t, out, "Some services are not running")
	assert.Contains(t, out, "1 already running, 1 timed out")
}

func TestPrintRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputFormatJSON).PrintRun(sampleRun()))

	var view RunView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.False(t, view.Succeeded)
	require.Len(t, view.Outcomes, 2)
	assert.Equal(t, "already running", view.Outcomes[0].Result)
	assert.Equal(t, 4, view.Outcomes[1].Polls)
	assert.Equal(t, "StartPending", view.Outcomes[1].FinalStatus)
	assert.Equal(t, "rpc unavailable", view.Outcomes[1].Error)
	assert.Equal(t, "20s", view.Outcomes[1].Elapsed)
}

func TestPrintStatuses(t *testing.T) {
	rows := []StatusView{
		{Server: "ADFS-SERVER", Service: "adfssrv", Status: "Running"},
		{Server: "SONAR-SERVER", Service: "SonarQube", Status: "Stopped"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputFormatTable).PrintStatuses(rows))
	assert.Contains(t, buf.String(), "SonarQube")
	assert.Contains(t, buf.String(), "Stopped")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, OutputFormatYAML).PrintStatuses(rows))
	var decoded struct {
		Services []StatusView `yaml:"services"`
		Total    int          `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, rows, decoded.Services)

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, OutputFormatTable).PrintStatuses(nil))
	assert.Contains(t, buf.String(), "No services configured")
}

func TestPrintValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputFormatTable).PrintValue(map[string]string{"onFailure": "abort"}))
	assert.Equal(t, "onFailure: abort\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, OutputFormatJSON).PrintValue(map[string]string{"onFailure": "abort"}))
	assert.JSONEq(t, `{"onFailure":"abort"}`, buf.String())
}

func TestPrintPlan(t *testing.T) {
	c := config.GetDefaultConfig()
	own := sonar
	own.StartTimeout = 3 * time.Minute
	c.Services = []services.ServiceTarget{adfs, own}

	view := NewPlanView(c)
	require.Len(t, view.Services, 2)
	assert.Equal(t, "1m30s", view.Services[0].StartTimeout)
	assert.Equal(t, "3m0s", view.Services[1].StartTimeout)
	assert.Equal(t, "5s", view.Services[1].PollInterval)

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputFormatTable).PrintPlan(c))
	assert.Contains(t, buf.String(), "Transport:")
	assert.Contains(t, buf.String(), "SonarQube")
	assert.Contains(t, buf.String(), "3m0s")
}
