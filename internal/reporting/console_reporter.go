package reporting

import (
	"context"
	"errors"

	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

const subsystem = "Startup"

// ConsoleReporter is an implementation of Reporter that writes a
// human-readable line per event through the pkg/logging package.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new ConsoleReporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Report logs the event at a level chosen by its type.
func (c *ConsoleReporter) Report(e Event) {
	svc, server := e.Target.ServiceName, e.Target.Server

	switch e.Type {
	case EventTypeQuery:
		if e.Status.IsRunning() {
			logging.Info(subsystem, "%s on %s is already running.", svc, server)
		} else {
			logging.Info(subsystem, "%s on %s is not running (status: %s). Attempting to start...", svc, server, e.Status)
		}
	case EventTypeQueryFailed:
		logging.WarnErr(subsystem, e.Err, "Failed to query %s on %s", svc, server)
	case EventTypePoll:
		logging.Info(subsystem, "Waiting for %s on %s... current status: %s (poll %d)", svc, server, e.Status, e.Poll)
	case EventTypeStartRequested:
		logging.Debug(subsystem, "Start requested for %s on %s", svc, server)
	case EventTypeStartFailed:
		logging.WarnErr(subsystem, e.Err, "Start request for %s on %s failed, polling anyway", svc, server)
	case EventTypeOutcome:
		if e.Outcome == nil {
			return
		}
		switch {
		case e.Outcome.Succeeded && e.Outcome.StartRequested:
			logging.Info(subsystem, "%s on %s is now running.", svc, server)
		case e.Outcome.Succeeded:
			// Already reported by the initial query.
			logging.Debug(subsystem, "%s on %s needed no action", svc, server)
		default:
			logFailure(svc, server, e.Outcome)
		}
	case EventTypeSkipped:
		logging.Warn(subsystem, "Skipping %s on %s: an earlier target failed or the run was cancelled", svc, server)
	default:
		logging.Debug(subsystem, "%s", e)
	}
}

// logFailure words an unsuccessful outcome by what ended it.
func logFailure(svc, server string, o *services.StartupOutcome) {
	switch {
	case errors.Is(o.Err, context.Canceled), errors.Is(o.Err, context.DeadlineExceeded):
		logging.Warn(subsystem, "%s on %s was cancelled before it reached Running (last status: %s).", svc, server, o.FinalStatus)
	case o.Category() == "timed out" && o.FinalStatus == services.StatusError:
		logging.Error(subsystem, o.Err, "%s on %s could not be queried before the start timeout (last status: %s).", svc, server, o.FinalStatus)
	case o.Category() == "timed out":
		logging.Error(subsystem, o.Err, "%s on %s did not reach Running within the start timeout (last status: %s).", svc, server, o.FinalStatus)
	default:
		logging.Error(subsystem, o.Err, "%s on %s %s (last status: %s).", svc, server, o.Category(), o.FinalStatus)
	}
}
