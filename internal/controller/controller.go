// Package controller drives a single remote service to the Running state.
//
// The Controller wraps a transport.Transport and converts every failure
// into a value: a query that fails yields services.StatusError, a start
// request that fails is logged and polling continues, and a wait that runs
// out of time yields a failed StartupOutcome. Nothing below the
// orchestrator returns an error for a remote failure.
package controller

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/internal/transport"
	"svcseq/pkg/logging"
)

const (
	// DefaultPollInterval is the time between two status queries.
	DefaultPollInterval = 5 * time.Second
	// DefaultStartTimeout bounds the wait after a start request.
	DefaultStartTimeout = 90 * time.Second
	// DefaultWaitTimeout bounds a wait that was not preceded by a start.
	DefaultWaitTimeout = 60 * time.Second
)

const subsystem = "Controller"

// Options configures a Controller. Zero values select defaults.
type Options struct {
	Clock        clock.Clock
	Reporter     reporting.Reporter
	PollInterval time.Duration
}

// Controller queries and starts services through one transport.
type Controller struct {
	transport    transport.Transport
	clock        clock.Clock
	reporter     reporting.Reporter
	pollInterval time.Duration
}

// New creates a Controller for the given transport.
func New(t transport.Transport, opts Options) *Controller {
	c := &Controller{
		transport:    t,
		clock:        opts.Clock,
		reporter:     opts.Reporter,
		pollInterval: opts.PollInterval,
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.reporter == nil {
		c.reporter = reporting.NopReporter{}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	return c
}

// TransportName returns the name of the underlying transport.
func (c *Controller) TransportName() string {
	return c.transport.Name()
}

// WaitResult describes how a wait ended.
type WaitResult struct {
	Running    bool
	Polls      int
	LastStatus services.ServiceStatus
	// LastErr is the transport error of the last poll, if any.
	LastErr error
}

// QueryStatus returns the current status of the target. Transport failures
// are reported and yield StatusError.
func (c *Controller) QueryStatus(ctx context.Context, target services.ServiceTarget) services.ServiceStatus {
	status, _ := c.query(ctx, target)
	return status
}

func (c *Controller) query(ctx context.Context, target services.ServiceTarget) (services.ServiceStatus, error) {
	report, err := c.transport.Query(ctx, target)
	if err != nil {
		c.report(reporting.Event{Type: reporting.EventTypeQueryFailed, Target: target, Status: services.StatusError, Err: err})
		return services.StatusError, err
	}
	status := services.ParseStatus(report)
	if status == services.StatusUnknown {
		logging.Debug(subsystem, "Unrecognized %s status report for %s: %q", report.Format, target, report.Raw)
	}
	return status, nil
}

// RequestStart issues a start request without waiting for the result. A
// failure is reported and returned for information only; the caller keeps
// polling because the start may still have taken effect.
func (c *Controller) RequestStart(ctx context.Context, target services.ServiceTarget) error {
	c.report(reporting.Event{Type: reporting.EventTypeStartRequested, Target: target})
	if err := c.transport.Start(ctx, target); err != nil {
		c.report(reporting.Event{Type: reporting.EventTypeStartFailed, Target: target, Err: err})
		return err
	}
	return nil
}

// WaitUntilRunning polls the target every interval until it reports
// Running or the deadline passes. The deadline is computed once on entry
// from the clock, so slow queries do not stretch it. A zero timeout selects
// DefaultWaitTimeout and a zero interval the controller's poll interval.
// Cancelling ctx ends the wait early with Running=false.
func (c *Controller) WaitUntilRunning(ctx context.Context, target services.ServiceTarget, timeout, interval time.Duration) WaitResult {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = c.pollInterval
	}

	deadline := c.clock.Now().Add(timeout)
	res := WaitResult{LastStatus: services.StatusUnknown}

	for c.clock.Now().Before(deadline) {
		status, err := c.query(ctx, target)
		res.Polls++
		res.LastStatus = status
		res.LastErr = err
		c.report(reporting.Event{Type: reporting.EventTypePoll, Target: target, Status: status, Poll: res.Polls, Err: err})

		if status.IsRunning() {
			res.Running = true
			return res
		}
		if err := c.sleep(ctx, interval); err != nil {
			res.LastErr = err
			return res
		}
	}
	return res
}

// EnsureRunning brings the target to Running. An already running target
// is left alone; otherwise exactly one start is requested and the target
// is polled for up to startTimeout (DefaultStartTimeout when zero) at the
// target's poll interval.
func (c *Controller) EnsureRunning(ctx context.Context, target services.ServiceTarget, startTimeout time.Duration) (outcome services.StartupOutcome) {
	began := c.clock.Now()
	outcome.Target = target
	defer func() {
		outcome.Elapsed = c.clock.Since(began)
		c.report(reporting.Event{Type: reporting.EventTypeOutcome, Target: target, Status: outcome.FinalStatus, Poll: outcome.ElapsedPolls, Err: outcome.Err, Outcome: &outcome})
	}()

	status, err := c.query(ctx, target)
	c.report(reporting.Event{Type: reporting.EventTypeQuery, Target: target, Status: status, Err: err})
	outcome.FinalStatus = status

	if status.IsRunning() {
		outcome.Succeeded = true
		return outcome
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.Err = ctxErr
		return outcome
	}

	if startTimeout <= 0 {
		startTimeout = DefaultStartTimeout
	}

	outcome.StartRequested = true
	startErr := c.RequestStart(ctx, target)

	wait := c.WaitUntilRunning(ctx, target, startTimeout, target.PollInterval)
	outcome.ElapsedPolls = wait.Polls
	outcome.FinalStatus = wait.LastStatus
	outcome.Succeeded = wait.Running
	if !wait.Running {
		outcome.Err = wait.LastErr
		if outcome.Err == nil {
			outcome.Err = startErr
		}
	}
	return outcome
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	t := c.clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Controller) report(e reporting.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = c.clock.Now()
	}
	c.reporter.Report(e)
}
