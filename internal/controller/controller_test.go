package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/internal/transport/transporttest"
)

type recorder struct {
	mu     sync.Mutex
	events []reporting.Event
}

func (r *recorder) Report(e reporting.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []reporting.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reporting.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Name() string { return "mock" }

func (m *mockTransport) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	args := m.Called(target)
	return args.Get(0).(services.Report), args.Error(1)
}

func (m *mockTransport) Start(ctx context.Context, target services.ServiceTarget) error {
	return m.Called(target).Error(0)
}

var (
	adfs    = services.ServiceTarget{Server: "ADFS-SERVER", ServiceName: "adfssrv"}
	fortify = services.ServiceTarget{Server: "FORTIFY-SERVER", ServiceName: "FortifySSC"}
)

func newSim(t *testing.T) (*transporttest.StepClock, *transporttest.Simulated, *recorder, *Controller) {
	t.Helper()
	clk := transporttest.NewStepClock()
	sim := transporttest.NewSimulated(clk)
	rec := &recorder{}
	return clk, sim, rec, New(sim, Options{Clock: clk, Reporter: rec})
}

func TestEnsureRunning_AlreadyRunning(t *testing.T) {
	_, sim, rec, c := newSim(t)
	sim.Add(adfs, transporttest.Service{Status: services.StatusRunning})

	out := c.EnsureRunning(context.Background(), adfs, 20*time.Second)

	assert.True(t, out.Succeeded)
	assert.False(t, out.StartRequested)
	assert.Equal(t, 0, out.ElapsedPolls)
	assert.Equal(t, services.StatusRunning, out.FinalStatus)
	assert.Equal(t, 0, sim.Count("start", adfs))
	assert.Equal(t, 1, sim.Count("query", adfs))
	assert.Equal(t, "already running", out.Category())
	assert.Equal(t, []reporting.EventType{reporting.EventTypeQuery, reporting.EventTypeOutcome}, rec.types())
}

func TestEnsureRunning_StartsThenPolls(t *testing.T) {
	clk, sim, rec, c := newSim(t)
	sim.Add(adfs, transporttest.Service{Status: services.StatusStopped, StartDelay: 7 * time.Second})
	began := clk.Now()

	out := c.EnsureRunning(context.Background(), adfs, 90*time.Second)

	require.True(t, out.Succeeded)
	assert.True(t, out.StartRequested)
	assert.NoError(t, out.Err)
	// Polls at t=0 and t=5 see StartPending, t=10 sees Running.
	assert.Equal(t, 3, out.ElapsedPolls)
	assert.Equal(t, 10*time.Second, out.Elapsed)
	assert.Equal(t, 10*time.Second, clk.Now().Sub(began))
	assert.Equal(t, "started", out.Category())

	calls := sim.Calls()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, "query", calls[0].Op)
	assert.Equal(t, "start", calls[1].Op)
	assert.Equal(t, 1, sim.Count("start", adfs))

	assert.Equal(t, []reporting.EventType{
		reporting.EventTypeQuery,
		reporting.EventTypeStartRequested,
		reporting.EventTypePoll,
		reporting.EventTypePoll,
		reporting.EventTypePoll,
		reporting.EventTypeOutcome,
	}, rec.types())
}

func TestEnsureRunning_Timeout(t *testing.T) {
	_, sim, rec, c := newSim(t)
	target := fortify
	target.PollInterval = 5 * time.Second
	sim.Add(target, transporttest.Service{NeverStarts: true})

	out := c.EnsureRunning(context.Background(), target, 20*time.Second)

	assert.False(t, out.Succeeded)
	assert.True(t, out.StartRequested)
	assert.Equal(t, 4, out.ElapsedPolls)
	assert.Equal(t, services.StatusStartPending, out.FinalStatus)
	assert.Equal(t, 1, sim.Count("start", target))
	assert.Equal(t, "timed out", out.Category())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, reporting.EventTypeOutcome, last.Type)
	require.NotNil(t, last.Outcome)
	assert.False(t, last.Outcome.Succeeded)
}

func TestEnsureRunning_UsesTargetPollInterval(t *testing.T) {
	_, sim, _, c := newSim(t)
	target := fortify
	target.PollInterval = 10 * time.Second
	sim.Add(target, transporttest.Service{NeverStarts: true})

	out := c.EnsureRunning(context.Background(), target, 30*time.Second)
	assert.Equal(t, 3, out.ElapsedPolls)
}

func TestEnsureRunning_DefaultStartTimeout(t *testing.T) {
	_, sim, _, c := newSim(t)
	sim.Add(adfs, transporttest.Service{NeverStarts: true})

	out := c.EnsureRunning(context.Background(), adfs, 0)
	assert.False(t, out.Succeeded)
	assert.Equal(t, int(DefaultStartTimeout/DefaultPollInterval), out.ElapsedPolls)
}

func TestEnsureRunning_SlowQueriesDoNotExtendDeadline(t *testing.T) {
	clk, sim, _, c := newSim(t)
	sim.QueryCost = 4 * time.Second
	target := fortify
	target.PollInterval = 5 * time.Second
	sim.Add(target, transporttest.Service{NeverStarts: true})

	out := c.EnsureRunning(context.Background(), target, 20*time.Second)

	assert.False(t, out.Succeeded)
	// Each poll costs 4s plus a 5s sleep, so fewer polls fit than with
	// instant queries.
	assert.Equal(t, 3, out.ElapsedPolls)
	assert.LessOrEqual(t, out.Elapsed, 20*time.Second+target.PollInterval+2*sim.QueryCost)
	assert.Equal(t, out.Elapsed, clk.Now().Sub(time.Unix(0, 0)))
}

func TestEnsureRunning_MalformedOutputIsNotRunning(t *testing.T) {
	_, sim, _, c := newSim(t)
	sim.Add(adfs, transporttest.Service{Raw: "something unexpected"})

	out := c.EnsureRunning(context.Background(), adfs, 10*time.Second)

	assert.False(t, out.Succeeded)
	assert.True(t, out.StartRequested)
	assert.Equal(t, services.StatusUnknown, out.FinalStatus)
	assert.Equal(t, 1, sim.Count("start", adfs))
}

func TestEnsureRunning_Idempotent(t *testing.T) {
	_, sim, _, c := newSim(t)
	sim.Add(adfs, transporttest.Service{StartDelay: time.Second})

	first := c.EnsureRunning(context.Background(), adfs, 30*time.Second)
	second := c.EnsureRunning(context.Background(), adfs, 30*time.Second)

	assert.True(t, first.Succeeded)
	assert.True(t, second.Succeeded)
	assert.False(t, second.StartRequested)
	assert.Equal(t, 0, second.ElapsedPolls)
	assert.Equal(t, 1, sim.Count("start", adfs))
}

func TestEnsureRunning_QueryErrorsKeepPolling(t *testing.T) {
	_, sim, rec, c := newSim(t)
	queryErr := errors.New("rpc server unavailable")
	sim.Add(adfs, transporttest.Service{QueryErr: queryErr})

	out := c.EnsureRunning(context.Background(), adfs, 15*time.Second)

	assert.False(t, out.Succeeded)
	assert.True(t, out.StartRequested)
	assert.Equal(t, 3, out.ElapsedPolls)
	assert.Equal(t, services.StatusError, out.FinalStatus)
	assert.ErrorIs(t, out.Err, queryErr)
	assert.Contains(t, rec.types(), reporting.EventTypeQueryFailed)
}

func TestEnsureRunning_StartFailureIsNotFatal(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Query", adfs).Return(services.Report{Format: services.FormatCode, Raw: "1"}, nil).Once()
	tr.On("Query", adfs).Return(services.Report{Format: services.FormatCode, Raw: "4"}, nil)
	tr.On("Start", adfs).Return(errors.New("access is denied")).Once()

	rec := &recorder{}
	c := New(tr, Options{Clock: transporttest.NewStepClock(), Reporter: rec})
	out := c.EnsureRunning(context.Background(), adfs, 20*time.Second)

	assert.True(t, out.Succeeded)
	assert.True(t, out.StartRequested)
	assert.NoError(t, out.Err)
	assert.Equal(t, 1, out.ElapsedPolls)
	assert.Contains(t, rec.types(), reporting.EventTypeStartFailed)
	tr.AssertExpectations(t)
}

func TestEnsureRunning_StartFailureReportedOnTimeout(t *testing.T) {
	tr := &mockTransport{}
	startErr := errors.New("access is denied")
	tr.On("Query", adfs).Return(services.Report{Format: services.FormatCode, Raw: "1"}, nil)
	tr.On("Start", adfs).Return(startErr).Once()

	c := New(tr, Options{Clock: transporttest.NewStepClock()})
	out := c.EnsureRunning(context.Background(), adfs, 10*time.Second)

	assert.False(t, out.Succeeded)
	assert.ErrorIs(t, out.Err, startErr)
	assert.Equal(t, services.StatusStopped, out.FinalStatus)
}

func TestEnsureRunning_CancelledContext(t *testing.T) {
	_, sim, _, c := newSim(t)
	sim.Add(adfs, transporttest.Service{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := c.EnsureRunning(ctx, adfs, 10*time.Second)

	assert.False(t, out.Succeeded)
	assert.False(t, out.StartRequested)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Equal(t, 0, sim.Count("start", adfs))
}

func TestWaitUntilRunning(t *testing.T) {
	tests := []struct {
		name      string
		svc       transporttest.Service
		timeout   time.Duration
		interval  time.Duration
		wantOK    bool
		wantPolls int
	}{
		{
			name:      "already running returns after one poll",
			svc:       transporttest.Service{Status: services.StatusRunning},
			timeout:   20 * time.Second,
			interval:  5 * time.Second,
			wantOK:    true,
			wantPolls: 1,
		},
		{
			name:      "stopped service is never started by a wait",
			svc:       transporttest.Service{Status: services.StatusStopped},
			timeout:   20 * time.Second,
			interval:  5 * time.Second,
			wantOK:    false,
			wantPolls: 4,
		},
		{
			name:      "partial interval still allows a final poll",
			svc:       transporttest.Service{Status: services.StatusPaused},
			timeout:   21 * time.Second,
			interval:  5 * time.Second,
			wantOK:    false,
			wantPolls: 5,
		},
		{
			name:      "zero timeout uses default",
			svc:       transporttest.Service{Status: services.StatusStopped},
			timeout:   0,
			interval:  10 * time.Second,
			wantOK:    false,
			wantPolls: int(DefaultWaitTimeout / (10 * time.Second)),
		},
		{
			name:      "zero interval uses controller default",
			svc:       transporttest.Service{Status: services.StatusStopped},
			timeout:   10 * time.Second,
			interval:  0,
			wantOK:    false,
			wantPolls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sim, _, c := newSim(t)
			sim.Add(adfs, tt.svc)

			res := c.WaitUntilRunning(context.Background(), adfs, tt.timeout, tt.interval)
			assert.Equal(t, tt.wantOK, res.Running)
			assert.Equal(t, tt.wantPolls, res.Polls)
			assert.Equal(t, 0, sim.Count("start", adfs))
		})
	}
}

func TestQueryStatus(t *testing.T) {
	_, sim, rec, c := newSim(t)
	sim.Add(adfs, transporttest.Service{Status: services.StatusPaused})

	assert.Equal(t, services.StatusPaused, c.QueryStatus(context.Background(), adfs))
	assert.Equal(t, services.StatusError, c.QueryStatus(context.Background(), fortify))
	assert.Equal(t, []reporting.EventType{reporting.EventTypeQueryFailed}, rec.types())
	assert.Equal(t, "simulated", c.TransportName())
}
