package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"

	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

// FailurePolicy decides how the run proceeds after a target fails.
type FailurePolicy string

const (
	FailureContinue FailurePolicy = "continue"
	FailureAbort    FailurePolicy = "abort"
)

// ParseFailurePolicy parses a policy name. The empty string selects
// FailureContinue.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailureContinue:
		return FailureContinue, nil
	case FailureAbort:
		return FailureAbort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %s or %s)", s, FailureContinue, FailureAbort)
	}
}

// Starter brings one target to the Running state.
type Starter interface {
	EnsureRunning(ctx context.Context, target services.ServiceTarget, startTimeout time.Duration) services.StartupOutcome
}

// Config holds the run-wide settings.
type Config struct {
	OnFailure FailurePolicy
	// StartTimeout applies to targets without their own StartTimeout. Zero
	// leaves the choice to the Starter.
	StartTimeout time.Duration
	Reporter     reporting.Reporter
	Clock        clock.Clock
}

// Orchestrator processes a StartupPlan strictly in order.
type Orchestrator struct {
	starter      Starter
	onFailure    FailurePolicy
	startTimeout time.Duration
	reporter     reporting.Reporter
	clock        clock.Clock
}

// New creates an Orchestrator. It does not contact any host.
func New(starter Starter, cfg Config) *Orchestrator {
	o := &Orchestrator{
		starter:      starter,
		onFailure:    cfg.OnFailure,
		startTimeout: cfg.StartTimeout,
		reporter:     cfg.Reporter,
		clock:        cfg.Clock,
	}
	if o.onFailure == "" {
		o.onFailure = FailureContinue
	}
	if o.reporter == nil {
		o.reporter = reporting.NopReporter{}
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	return o
}

// Run processes every target in plan order and returns one outcome per
// target. Run never returns early: targets that are not attempted because
// of the failure policy or a cancelled context get skipped outcomes.
func (o *Orchestrator) Run(ctx context.Context, plan services.StartupPlan) RunResult {
	began := o.clock.Now()
	result := RunResult{Outcomes: make([]services.StartupOutcome, 0, len(plan))}
	logging.Info(subsystem, "Starting %d service(s) in order (on failure: %s)", len(plan), o.onFailure)

	stop := false
	for _, target := range plan {
		if !stop && ctx.Err() != nil {
			logging.Warn(subsystem, "Run cancelled before %s", target)
			result.Cancelled = true
			stop = true
		}
		if stop {
			result.Outcomes = append(result.Outcomes, o.skip(target))
			continue
		}

		timeout := target.StartTimeout
		if timeout <= 0 {
			timeout = o.startTimeout
		}
		outcome := o.starter.EnsureRunning(ctx, target, timeout)
		result.Outcomes = append(result.Outcomes, outcome)

		if !outcome.Succeeded && o.onFailure == FailureAbort {
			logging.Warn(subsystem, "Aborting run after %s failed", target)
			result.Aborted = true
			stop = true
		}
	}

	result.Elapsed = o.clock.Since(began)
	logging.Info(subsystem, "Run finished in %s: %s", result.Elapsed.Round(time.Millisecond), result.Summary())
	return result
}

func (o *Orchestrator) skip(target services.ServiceTarget) services.StartupOutcome {
	outcome := services.StartupOutcome{
		Target:      target,
		FinalStatus: services.StatusUnknown,
		Skipped:     true,
	}
	o.reporter.Report(reporting.Event{
		Timestamp: o.clock.Now(),
		Type:      reporting.EventTypeSkipped,
		Target:    target,
		Status:    outcome.FinalStatus,
		Outcome:   &outcome,
	})
	return outcome
}

const subsystem = "Orchestrator"

// RunResult holds the outcomes of one run, in plan order.
type RunResult struct {
	Outcomes  []services.StartupOutcome `json:"outcomes" yaml:"outcomes"`
	Aborted   bool                      `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Cancelled bool                      `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Elapsed   time.Duration             `json:"elapsed" yaml:"elapsed"`
}

// AllSucceeded reports whether every target reached Running.
func (r RunResult) AllSucceeded() bool {
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not succeed, skipped ones included.
func (r RunResult) Failed() []services.StartupOutcome {
	var failed []services.StartupOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

// Summary returns a one-line count of outcomes by category.
func (r RunResult) Summary() string {
	counts := map[string]int{}
	for _, o := range r.Outcomes {
		counts[o.Category()]++
	}
	var parts []string
	for _, c := range []string{"already running", "started", "timed out", "failed", "skipped"} {
		if counts[c] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[c], c))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// Err returns nil when every target succeeded and otherwise a
// multierror with one entry per unsuccessful target.
func (r RunResult) Err() error {
	var merr *multierror.Error
	for _, o := range r.Failed() {
		merr = multierror.Append(merr, outcomeError(o))
	}
	return merr.ErrorOrNil()
}

func outcomeError(o services.StartupOutcome) error {
	switch {
	case o.Skipped:
		return fmt.Errorf("%s: skipped", o.Target)
	case o.Err != nil:
		return fmt.Errorf("%s: %s (last status %s): %w", o.Target, o.Category(), o.FinalStatus, o.Err)
	default:
		return fmt.Errorf("%s: %s (last status %s)", o.Target, o.Category(), o.FinalStatus)
	}
}
