package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceTarget identifies one controllable service on one remote host.
// StartTimeout and PollInterval override the run-wide timing when non-zero.
type ServiceTarget struct {
	Server       string        `json:"server" yaml:"server"`
	ServiceName  string        `json:"service" yaml:"service"`
	StartTimeout time.Duration `json:"startTimeout,omitempty" yaml:"startTimeout,omitempty"`
	PollInterval time.Duration `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty"`
}

// String returns the target as "service@server".
func (t ServiceTarget) String() string {
	return t.ServiceName + "@" + t.Server
}

// Key is a case-insensitive identity used to detect duplicates.
func (t ServiceTarget) Key() string {
	return strings.ToLower(t.Server) + "/" + strings.ToLower(t.ServiceName)
}

// StartupPlan is the ordered sequence of targets. Index order is the
// required startup order.
type StartupPlan []ServiceTarget

// NewStartupPlan builds a validated plan from the given targets.
func NewStartupPlan(targets ...ServiceTarget) (StartupPlan, error) {
	plan := StartupPlan(append([]ServiceTarget(nil), targets...))
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Validate checks that every target names a server and a service and that
// no target appears twice.
func (p StartupPlan) Validate() error {
	var errs []error
	seen := make(map[string]int, len(p))
	for i, t := range p {
		if strings.TrimSpace(t.Server) == "" {
			errs = append(errs, fmt.Errorf("target %d: server is required", i))
		}
		if strings.TrimSpace(t.ServiceName) == "" {
			errs = append(errs, fmt.Errorf("target %d: service name is required", i))
		}
		if t.StartTimeout < 0 || t.PollInterval < 0 {
			errs = append(errs, fmt.Errorf("target %d (%s): timings must not be negative", i, t))
		}
		if first, dup := seen[t.Key()]; dup {
			errs = append(errs, fmt.Errorf("target %d (%s) duplicates target %d", i, t, first))
			continue
		}
		seen[t.Key()] = i
	}
	return errors.Join(errs...)
}

// StartupOutcome records the result of processing one target.
type StartupOutcome struct {
	Target         ServiceTarget `json:"target" yaml:"target"`
	FinalStatus    ServiceStatus `json:"finalStatus" yaml:"finalStatus"`
	Succeeded      bool          `json:"succeeded" yaml:"succeeded"`
	ElapsedPolls   int           `json:"elapsedPolls" yaml:"elapsedPolls"`
	StartRequested bool          `json:"startRequested" yaml:"startRequested"`
	Skipped        bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Elapsed        time.Duration `json:"elapsed" yaml:"elapsed"`
	Err            error         `json:"-" yaml:"-"`
}

// Category summarizes the outcome for display.
func (o StartupOutcome) Category() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Succeeded && !o.StartRequested:
		return "already running"
	case o.Succeeded:
		return "started"
	case o.StartRequested:
		return "timed out"
	default:
		return "failed"
	}
}
