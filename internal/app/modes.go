package app

import (
	"context"

	"svcseq/internal/orchestrator"
	"svcseq/internal/reporting"
	"svcseq/internal/tui"
	"svcseq/pkg/logging"
)

// runCLIMode executes the plan with line-by-line progress on stderr
func runCLIMode(ctx context.Context, a *Application) (orchestrator.RunResult, error) {
	svcs, err := a.Services(reporting.NewConsoleReporter())
	if err != nil {
		logging.Error("CLI", err, "Failed to initialize services")
		return orchestrator.RunResult{}, err
	}
	logging.Info("CLI", "Using %s transport", svcs.Transport.Name())

	return svcs.Orchestrator.Run(ctx, a.plan), nil
}

// runTUIMode executes the plan in the background and shows the live view
func runTUIMode(ctx context.Context, a *Application) (orchestrator.RunResult, error) {
	logging.Info("CLI", "Starting TUI mode...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Switch logging to channel-based system for TUI integration
	logLevel := logging.LevelInfo
	if a.config.Debug {
		logLevel = logging.LevelDebug
	}
	logChan := logging.InitForTUI(logLevel)
	defer logging.CloseTUIChannel()

	// Console lines land in the log panel while logging is in TUI mode.
	events := reporting.NewChannelReporter(0)
	svcs, err := a.Services(reporting.MultiReporter{events, reporting.NewConsoleReporter()})
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Failed to initialize services")
		return orchestrator.RunResult{}, err
	}

	var result orchestrator.RunResult
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer events.Close()
		result = svcs.Orchestrator.Run(ctx, a.plan)
	}()

	tuiErr := tui.Run(tui.Config{
		Plan:   a.plan,
		Events: events.Events(),
		Logs:   logChan,
		Cancel: cancel,
		Debug:  a.config.Debug,
	})
	if tuiErr != nil {
		logging.Error("TUI-Lifecycle", tuiErr, "Error running TUI program")
		cancel()
	}

	// The view may have exited before the run finished; keep draining so
	// the orchestrator never blocks on a full channel.
	go func() {
		for range events.Events() {
		}
	}()
	<-done

	return result, tuiErr
}
