package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the Bubble Tea program for a run.
func NewProgram(cfg Config) *tea.Program {
	return tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
}

// Run shows the live view until the user quits, or until the run finishes
// when cfg.ExitWhenDone is set.
func Run(cfg Config) error {
	_, err := NewProgram(cfg).Run()
	return err
}
