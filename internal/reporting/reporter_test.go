package reporting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"svcseq/internal/services"
	"svcseq/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	events []Event
}

func (r *recordingReporter) Report(e Event) {
	r.events = append(r.events, e)
}

func TestMultiReporter_FansOutAndStamps(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	m := MultiReporter{a, nil, b}

	m.Report(Event{Type: EventTypePoll, Poll: 1})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.False(t, a.events[0].Timestamp.IsZero())
	assert.Equal(t, a.events[0], b.events[0])
}

func TestChannelReporter(t *testing.T) {
	r := NewChannelReporter(2)
	r.Report(Event{Type: EventTypeQuery})
	r.Report(Event{Type: EventTypeOutcome})
	r.Close()

	var got []EventType
	for e := range r.Events() {
		got = append(got, e.Type)
	}
	assert.Equal(t, []EventType{EventTypeQuery, EventTypeOutcome}, got)
}

func TestConsoleReporter_Lines(t *testing.T) {
	target := services.ServiceTarget{Server: "SONAR-SERVER", ServiceName: "SonarQube"}

	tests := []struct {
		name     string
		event    Event
		contains []string
		excludes []string
	}{
		{
			name:     "already running",
			event:    Event{Type: EventTypeQuery, Target: target, Status: services.StatusRunning},
			contains: []string{"SonarQube on SONAR-SERVER is already running."},
		},
		{
			name:     "not running",
			event:    Event{Type: EventTypeQuery, Target: target, Status: services.StatusStopped},
			contains: []string{"is not running (status: Stopped). Attempting to start..."},
		},
		{
			name:     "poll",
			event:    Event{Type: EventTypePoll, Target: target, Status: services.StatusStartPending, Poll: 3},
			contains: []string{"Waiting for SonarQube on SONAR-SERVER... current status: StartPending (poll 3)"},
		},
		{
			name:     "query failure carries error detail",
			event:    Event{Type: EventTypeQueryFailed, Target: target, Err: errors.New("access is denied")},
			contains: []string{"Failed to query SonarQube on SONAR-SERVER", "access is denied", "level=WARN"},
		},
		{
			name: "started",
			event: Event{Type: EventTypeOutcome, Target: target, Outcome: &services.StartupOutcome{
				Succeeded: true, StartRequested: true, FinalStatus: services.StatusRunning,
			}},
			contains: []string{"SonarQube on SONAR-SERVER is now running."},
		},
		{
			name: "timed out",
			event: Event{Type: EventTypeOutcome, Target: target, Outcome: &services.StartupOutcome{
				StartRequested: true, FinalStatus: services.StatusStartPending,
			}},
			contains: []string{"SonarQube on SONAR-SERVER did not reach Running within the start timeout (last status: StartPending)", "level=ERROR"},
		},
		{
			name: "cancelled while waiting",
			event: Event{Type: EventTypeOutcome, Target: target, Outcome: &services.StartupOutcome{
				Target: target, StartRequested: true, FinalStatus: services.StatusStartPending, Err: context.Canceled,
			}},
			contains: []string{"SonarQube on SONAR-SERVER was cancelled before it reached Running (last status: StartPending)", "level=WARN"},
			excludes: []string{"timeout"},
		},
		{
			name: "cancelled before start",
			event: Event{Type: EventTypeOutcome, Target: target, Outcome: &services.StartupOutcome{
				Target: target, FinalStatus: services.StatusStopped, Err: fmt.Errorf("wait: %w", context.Canceled),
			}},
			contains: []string{"was cancelled before it reached Running (last status: Stopped)"},
			excludes: []string{"timeout"},
		},
		{
			name: "query errors until the deadline",
			event: Event{Type: EventTypeOutcome, Target: target, Outcome: &services.StartupOutcome{
				Target: target, StartRequested: true, FinalStatus: services.StatusError, Err: errors.New("RPC server is unavailable"),
			}},
			contains: []string{"SonarQube on SONAR-SERVER could not be queried before the start timeout (last status: Error)", "RPC server is unavailable", "level=ERROR"},
			excludes: []string{"did not reach Running"},
		},
		{
			name:     "skipped",
			event:    Event{Type: EventTypeSkipped, Target: target},
			contains: []string{"Skipping SonarQube on SONAR-SERVER"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logging.InitForCLI(logging.LevelDebug, &buf)

			NewConsoleReporter().Report(tt.event)

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
