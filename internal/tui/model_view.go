package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("svcseq · %d service(s)", len(m.rows))))
	b.WriteString("  ")
	b.WriteString(subtleStyle.Render(m.statusLine()))
	b.WriteString("\n\n")

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	if m.showLog && m.logView.Height > 0 {
		b.WriteString(panelStyle.Render(m.logView.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.done && m.cancelling:
		return "cancelled · press q to quit"
	case m.done:
		return fmt.Sprintf("finished in %s · press q to quit", m.finishedAt.Sub(m.started).Round(time.Second))
	case m.cancelling:
		return "cancelling..."
	default:
		return fmt.Sprintf("running for %s", time.Since(m.started).Round(time.Second))
	}
}

func (m Model) renderTable() string {
	nameW, serverW := len("SERVICE"), len("SERVER")
	for _, r := range m.rows {
		nameW = max(nameW, lipgloss.Width(r.target.ServiceName))
		serverW = max(serverW, lipgloss.Width(r.target.Server))
	}

	var lines []string
	header := fmt.Sprintf("   %-*s  %-*s  %-15s  %5s  %s", nameW, "SERVICE", serverW, "SERVER", "STATUS", "POLLS", "RESULT")
	lines = append(lines, subtleStyle.Render(header))

	for _, r := range m.rows {
		line := fmt.Sprintf("%-*s  %-*s  %-15s  %5d  %s",
			nameW, r.target.ServiceName,
			serverW, r.target.Server,
			r.status, r.polls, m.result(r))
		lines = append(lines, m.icon(r)+" "+line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) icon(r row) string {
	switch r.phase {
	case phaseActive:
		return m.spinner.View()
	case phaseDone:
		switch {
		case r.outcome == nil:
			return " "
		case r.outcome.Skipped:
			return warningStyle.Render("⊘ ")
		case r.outcome.Succeeded:
			return successStyle.Render("✔ ")
		default:
			return errorStyle.Render("✘ ")
		}
	default:
		return subtleStyle.Render("· ")
	}
}

func (m Model) result(r row) string {
	if r.outcome != nil {
		text := r.outcome.Category()
		switch {
		case r.outcome.Skipped:
			return warningStyle.Render(text)
		case r.outcome.Succeeded:
			return successStyle.Render(text)
		default:
			if r.err != nil && m.debug {
				text += ": " + r.err.Error()
			}
			return errorStyle.Render(text)
		}
	}
	if r.phase == phaseActive {
		if r.err != nil {
			return warningStyle.Render("retrying: " + r.err.Error())
		}
		return "waiting"
	}
	return subtleStyle.Render("pending")
}

func renderLogLines(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = styleLogLine(l)
	}
	return strings.Join(out, "\n")
}

// styleLogLine colors a line by the level marker it contains.
func styleLogLine(l string) string {
	switch {
	case strings.Contains(l, "[ERROR]"):
		return logErrorStyle.Render(l)
	case strings.Contains(l, "[WARN]"):
		return logWarnStyle.Render(l)
	case strings.Contains(l, "[DEBUG]"):
		return logDebugStyle.Render(l)
	default:
		return l
	}
}
