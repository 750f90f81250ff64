package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

const maxLogLines = 500

// Config is what the view needs to follow a run.
type Config struct {
	Plan   services.StartupPlan
	Events <-chan reporting.Event
	Logs   <-chan logging.LogEntry
	// Cancel stops the run when the user quits early.
	Cancel context.CancelFunc
	// ExitWhenDone closes the view as soon as the run finishes.
	ExitWhenDone bool
	Debug        bool
}

type rowPhase int

const (
	phasePending rowPhase = iota
	phaseActive
	phaseDone
)

type row struct {
	target  services.ServiceTarget
	phase   rowPhase
	status  services.ServiceStatus
	polls   int
	err     error
	outcome *services.StartupOutcome
}

// Model is the Bubble Tea model of a run.
type Model struct {
	rows  []row
	index map[string]int

	events <-chan reporting.Event
	logs   <-chan logging.LogEntry
	cancel context.CancelFunc

	exitWhenDone bool
	debug        bool

	spinner  spinner.Model
	logView  viewport.Model
	logLines []string
	showLog  bool
	keys     KeyMap
	help     help.Model

	width, height int
	started       time.Time
	finishedAt    time.Time
	done          bool
	cancelling    bool
}

// eventMsg carries one progress event.
type eventMsg struct{ event reporting.Event }

// eventsClosedMsg signals that the run has finished.
type eventsClosedMsg struct{}

// logMsg carries one log entry.
type logMsg struct{ entry logging.LogEntry }

// NewModel builds the initial model. Every target starts as pending.
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		rows:         make([]row, len(cfg.Plan)),
		index:        make(map[string]int, len(cfg.Plan)),
		events:       cfg.Events,
		logs:         cfg.Logs,
		cancel:       cfg.Cancel,
		exitWhenDone: cfg.ExitWhenDone,
		debug:        cfg.Debug,
		spinner:      s,
		logView:      viewport.New(0, 0),
		showLog:      true,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		started:      time.Now(),
	}
	for i, t := range cfg.Plan {
		m.rows[i] = row{target: t, status: services.StatusUnknown}
		m.index[t.Key()] = i
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForEvent(m.events)}
	if m.logs != nil {
		cmds = append(cmds, waitForLog(m.logs))
	}
	return tea.Batch(cmds...)
}

func waitForEvent(ch <-chan reporting.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: e}
	}
}

func waitForLog(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			// The channel closes only after the program has exited.
			return nil
		}
		return logMsg{entry: entry}
	}
}

// Done reports whether the run has finished.
func (m Model) Done() bool {
	return m.done
}

// Outcomes returns the outcomes received so far, in plan order.
func (m Model) Outcomes() []services.StartupOutcome {
	var out []services.StartupOutcome
	for _, r := range m.rows {
		if r.outcome != nil {
			out = append(out, *r.outcome)
		}
	}
	return out
}
