// Package transporttest provides a simulated remote host and a
// deterministic clock for testing code built on transport.Transport.
package transporttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"svcseq/internal/services"
)

// StepClock is a mock clock whose timers fire immediately by advancing
// mock time by the timer's duration. Code that sleeps through Timer runs
// without real waiting, and Now reflects the simulated elapsed time.
type StepClock struct {
	*clock.Mock
}

// NewStepClock returns a StepClock starting at the Unix epoch.
func NewStepClock() *StepClock {
	return &StepClock{Mock: clock.NewMock()}
}

// Timer implements clock.Clock.
func (c *StepClock) Timer(d time.Duration) *clock.Timer {
	t := c.Mock.Timer(d)
	c.Mock.Add(d)
	return t
}

// Service describes how a simulated service behaves.
type Service struct {
	// Status is reported until a start is requested.
	Status services.ServiceStatus
	// StartDelay is how long after a start request the service reports
	// Running. Until then it reports StartPending.
	StartDelay time.Duration
	// NeverStarts keeps the service in StartPending forever after a start.
	NeverStarts bool
	// Raw, when set, is returned verbatim as a PowerShell-format report.
	Raw string
	// QueryErr and StartErr make the respective calls fail.
	QueryErr error
	StartErr error
}

// Call is one recorded transport invocation.
type Call struct {
	Op     string // "query" or "start"
	Target string // target.String()
	At     time.Time
}

type simService struct {
	Service
	startedAt *time.Time
}

// Simulated is an in-memory transport.Transport backed by a clock.
type Simulated struct {
	Clock clock.Clock
	// QueryCost advances the clock on every query when Clock is a mock,
	// simulating a slow remote call.
	QueryCost time.Duration

	mu       sync.Mutex
	services map[string]*simService
	calls    []Call
}

// NewSimulated creates an empty simulated host.
func NewSimulated(clk clock.Clock) *Simulated {
	if clk == nil {
		clk = clock.New()
	}
	return &Simulated{Clock: clk, services: make(map[string]*simService)}
}

// Add registers a service. It returns the receiver for chaining.
func (s *Simulated) Add(target services.ServiceTarget, svc Service) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.Status == "" {
		svc.Status = services.StatusStopped
	}
	s.services[target.Key()] = &simService{Service: svc}
	return s
}

// Name implements transport.Transport.
func (s *Simulated) Name() string { return "simulated" }

// Query implements transport.Transport.
func (s *Simulated) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	if s.QueryCost > 0 {
		if adder, ok := s.Clock.(interface{ Add(time.Duration) }); ok {
			adder.Add(s.QueryCost)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Clock.Now()
	s.calls = append(s.calls, Call{Op: "query", Target: target.String(), At: now})

	if err := ctx.Err(); err != nil {
		return services.Report{}, err
	}
	svc, ok := s.services[target.Key()]
	if !ok {
		return services.Report{}, fmt.Errorf("service %s does not exist on %s", target.ServiceName, target.Server)
	}
	if svc.QueryErr != nil {
		return services.Report{}, svc.QueryErr
	}
	if svc.Raw != "" {
		return services.Report{Format: services.FormatPowerShell, Raw: svc.Raw}, nil
	}
	return services.Report{Format: services.FormatPowerShell, Raw: string(svc.current(now))}, nil
}

func (svc *simService) current(now time.Time) services.ServiceStatus {
	if svc.startedAt == nil {
		return svc.Status
	}
	if svc.NeverStarts || now.Before(svc.startedAt.Add(svc.StartDelay)) {
		return services.StatusStartPending
	}
	return services.StatusRunning
}

// Start implements transport.Transport.
func (s *Simulated) Start(ctx context.Context, target services.ServiceTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Clock.Now()
	s.calls = append(s.calls, Call{Op: "start", Target: target.String(), At: now})

	if err := ctx.Err(); err != nil {
		return err
	}
	svc, ok := s.services[target.Key()]
	if !ok {
		return fmt.Errorf("service %s does not exist on %s", target.ServiceName, target.Server)
	}
	if svc.StartErr != nil {
		return svc.StartErr
	}
	if svc.startedAt == nil && svc.Status != services.StatusRunning {
		svc.startedAt = &now
	}
	return nil
}

// Calls returns every recorded call in order.
func (s *Simulated) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many times op was called for target.
func (s *Simulated) Count(op string, target services.ServiceTarget) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op && c.Target == target.String() {
			n++
		}
	}
	return n
}
