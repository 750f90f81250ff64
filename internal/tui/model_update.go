package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"svcseq/internal/reporting"
	"svcseq/pkg/logging"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeLog()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.applyEvent(msg.event)
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.done = true
		m.finishedAt = time.Now()
		if m.cancelling || m.exitWhenDone {
			return m, tea.Quit
		}
		return m, nil

	case logMsg:
		m.appendLog(msg.entry)
		return m, waitForLog(m.logs)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.done {
			return m, tea.Quit
		}
		if m.cancelling {
			// Second request: leave without waiting for the run to unwind.
			return m, tea.Quit
		}
		m.cancelling = true
		if m.cancel != nil {
			m.cancel()
		}
		logging.Warn("TUI", "Cancelling run, remaining services will be skipped")
		return m, nil

	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.resizeLog()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeLog()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logView.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.logView.LineDown(1)
		return m, nil
	}
	return m, nil
}

func (m *Model) applyEvent(e reporting.Event) {
	i, ok := m.index[e.Target.Key()]
	if !ok {
		return
	}
	r := &m.rows[i]

	switch e.Type {
	case reporting.EventTypeQuery, reporting.EventTypeQueryFailed:
		if r.phase == phasePending {
			r.phase = phaseActive
		}
		r.status = e.Status
		r.err = e.Err
	case reporting.EventTypeStartRequested:
		r.phase = phaseActive
	case reporting.EventTypeStartFailed:
		r.err = e.Err
	case reporting.EventTypePoll:
		r.status = e.Status
		r.polls = e.Poll
		r.err = e.Err
	case reporting.EventTypeOutcome, reporting.EventTypeSkipped:
		r.phase = phaseDone
		r.status = e.Status
		if e.Outcome != nil {
			o := *e.Outcome
			r.outcome = &o
			r.polls = o.ElapsedPolls
			r.err = o.Err
		}
	}
}

func (m *Model) appendLog(entry logging.LogEntry) {
	line := fmt.Sprintf("%s [%s] %s: %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Subsystem, entry.Message)
	if entry.Err != nil {
		line += " (" + entry.Err.Error() + ")"
	}
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}

	atBottom := m.logView.AtBottom()
	m.logView.SetContent(renderLogLines(m.logLines))
	if atBottom {
		m.logView.GotoBottom()
	}
}

// resizeLog gives the log panel whatever height the table leaves free.
func (m *Model) resizeLog() {
	if m.width == 0 || m.height == 0 {
		return
	}
	frameW, frameH := panelStyle.GetFrameSize()
	used := len(m.rows) + 6 + strings.Count(m.help.View(m.keys), "\n") + 1
	h := m.height - used - frameH - 1
	if h < 3 || !m.showLog {
		h = 0
	}
	m.logView.Width = m.width - frameW
	m.logView.Height = h
}
