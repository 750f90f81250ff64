// Package cli renders svcseq results for the terminal and for machines.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"svcseq/internal/config"
	"svcseq/internal/orchestrator"
	"svcseq/internal/services"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	case "":
		return OutputFormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (want table, json or yaml)", s)
	}
}

// OutcomeView is the printable form of a StartupOutcome.
type OutcomeView struct {
	Server         string `json:"server" yaml:"server"`
	Service        string `json:"service" yaml:"service"`
	Result         string `json:"result" yaml:"result"`
	Succeeded      bool   `json:"succeeded" yaml:"succeeded"`
	FinalStatus    string `json:"finalStatus" yaml:"finalStatus"`
	Polls          int    `json:"polls" yaml:"polls"`
	StartRequested bool   `json:"startRequested" yaml:"startRequested"`
	Elapsed        string `json:"elapsed" yaml:"elapsed"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunView is the printable form of a RunResult.
type RunView struct {
	Succeeded bool          `json:"succeeded" yaml:"succeeded"`
	Aborted   bool          `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Cancelled bool          `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Summary   string        `json:"summary" yaml:"summary"`
	Elapsed   string        `json:"elapsed" yaml:"elapsed"`
	Outcomes  []OutcomeView `json:"outcomes" yaml:"outcomes"`
}

// StatusView is one row of a status listing.
type StatusView struct {
	Server  string `json:"server" yaml:"server"`
	Service string `json:"service" yaml:"service"`
	Status  string `json:"status" yaml:"status"`
}

// PlanView is the printable form of the resolved configuration.
type PlanView struct {
	Transport    string      `json:"transport" yaml:"transport"`
	OnFailure    string      `json:"onFailure" yaml:"onFailure"`
	PollInterval string      `json:"pollInterval" yaml:"pollInterval"`
	StartTimeout string      `json:"startTimeout" yaml:"startTimeout"`
	WaitTimeout  string      `json:"waitTimeout" yaml:"waitTimeout"`
	Services     []PlanEntry `json:"services" yaml:"services"`
}

// PlanEntry is one target with its effective timing.
type PlanEntry struct {
	Server       string `json:"server" yaml:"server"`
	Service      string `json:"service" yaml:"service"`
	StartTimeout string `json:"startTimeout" yaml:"startTimeout"`
	PollInterval string `json:"pollInterval" yaml:"pollInterval"`
}

// NewPlanView resolves per-target timing against the run-wide settings.
func NewPlanView(c config.SvcseqConfig) PlanView {
	v := PlanView{
		Transport:    c.Transport.Type,
		OnFailure:    c.OnFailure,
		PollInterval: c.Timing.PollInterval.String(),
		StartTimeout: c.Timing.StartTimeout.String(),
		WaitTimeout:  c.Timing.WaitTimeout.String(),
		Services:     make([]PlanEntry, 0, len(c.Services)),
	}
	for _, t := range c.Services {
		start, poll := t.StartTimeout, t.PollInterval
		if start <= 0 {
			start = c.Timing.StartTimeout
		}
		if poll <= 0 {
			poll = c.Timing.PollInterval
		}
		v.Services = append(v.Services, PlanEntry{
			Server:       t.Server,
			Service:      t.ServiceName,
			StartTimeout: start.String(),
			PollInterval: poll.String(),
		})
	}
	return v
}

// NewOutcomeView converts an outcome.
func NewOutcomeView(o services.StartupOutcome) OutcomeView {
	v := OutcomeView{
		Server:         o.Target.Server,
		Service:        o.Target.ServiceName,
		Result:         o.Category(),
		Succeeded:      o.Succeeded,
		FinalStatus:    o.FinalStatus.String(),
		Polls:          o.ElapsedPolls,
		StartRequested: o.StartRequested,
		Elapsed:        o.Elapsed.Round(time.Millisecond).String(),
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return v
}

// NewRunView converts a run result.
func NewRunView(r orchestrator.RunResult) RunView {
	v := RunView{
		Succeeded: r.AllSucceeded(),
		Aborted:   r.Aborted,
		Cancelled: r.Cancelled,
		Summary:   r.Summary(),
		Elapsed:   r.Elapsed.Round(time.Millisecond).String(),
		Outcomes:  make([]OutcomeView, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		v.Outcomes = append(v.Outcomes, NewOutcomeView(o))
	}
	return v
}

// Printer writes results in one format.
type Printer struct {
	Out    io.Writer
	Format OutputFormat
}

// NewPrinter creates a Printer. An empty format means table.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	if format == "" {
		format = OutputFormatTable
	}
	return &Printer{Out: out, Format: format}
}

// PrintRun prints the outcome of a run.
func (p *Printer) PrintRun(r orchestrator.RunResult) error {
	view := NewRunView(r)
	if p.Format != OutputFormatTable {
		return p.encode(view)
	}

	t := p.newTable()
	t.AppendHeader(header("#", "Service", "Server", "Result", "Status", "Polls", "Elapsed"))
	for i, o := range view.Outcomes {
		t.AppendRow(table.Row{i + 1, o.Service, o.Server, formatResult(o), formatStatus(o.FinalStatus), o.Polls, o.Elapsed})
	}
	t.Render()

	label := text.FgGreen.Sprint("All services running")
	if !view.Succeeded {
		label = text.FgRed.Sprint("Some services are not running")
	}
	_, err := fmt.Fprintf(p.Out, "\n%s: %s (%s)\n", label, view.Summary, view.Elapsed)
	return err
}

// PrintStatuses prints a status listing.
func (p *Printer) PrintStatuses(rows []StatusView) error {
	if p.Format != OutputFormatTable {
		return p.encode(map[string]interface{}{"services": rows, "total": len(rows)})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.Out, text.FgYellow.Sprint("No services configured"))
		return err
	}

	t := p.newTable()
	t.AppendHeader(header("#", "Service", "Server", "Status"))
	for i, r := range rows {
		t.AppendRow(table.Row{i + 1, r.Service, r.Server, formatStatus(r.Status)})
	}
	t.Render()
	return nil
}

// PrintPlan prints the resolved plan in start order.
func (p *Printer) PrintPlan(c config.SvcseqConfig) error {
	view := NewPlanView(c)
	if p.Format != OutputFormatTable {
		return p.encode(view)
	}

	_, err := fmt.Fprintf(p.Out, "%s %s   %s %s   %s %s\n\n",
		text.FgHiBlue.Sprint("Transport:"), view.Transport,
		text.FgHiBlue.Sprint("On failure:"), view.OnFailure,
		text.FgHiBlue.Sprint("Wait timeout:"), view.WaitTimeout)
	if err != nil {
		return err
	}
	if len(view.Services) == 0 {
		_, err := fmt.Fprintln(p.Out, text.FgYellow.Sprint("No services configured"))
		return err
	}

	t := p.newTable()
	t.AppendHeader(header("#", "Service", "Server", "Start timeout", "Poll interval"))
	for i, e := range view.Services {
		t.AppendRow(table.Row{i + 1, e.Service, e.Server, e.StartTimeout, e.PollInterval})
	}
	t.Render()
	return nil
}

// PrintValue prints any value; tables fall back to YAML.
func (p *Printer) PrintValue(v interface{}) error {
	if p.Format == OutputFormatJSON {
		return p.encode(v)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = p.Out.Write(data)
	return err
}

func (p *Printer) encode(v interface{}) error {
	switch p.Format {
	case OutputFormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = p.Out.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", p.Format)
	}
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.FgHiCyan.Sprint(strings.ToUpper(c))
	}
	return row
}

func formatResult(o OutcomeView) string {
	switch {
	case o.Result == "skipped":
		return text.FgYellow.Sprint("⊘ " + o.Result)
	case o.Succeeded:
		return text.FgGreen.Sprint("✔ " + o.Result)
	default:
		return text.FgRed.Sprint("✘ " + o.Result)
	}
}

// formatStatus adds color coding to a service status
func formatStatus(status string) string {
	switch services.ServiceStatus(status) {
	case services.StatusRunning:
		return text.FgGreen.Sprint(status)
	case services.StatusStopped, services.StatusError:
		return text.FgRed.Sprint(status)
	case services.StatusUnknown:
		return text.FgHiBlack.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}
