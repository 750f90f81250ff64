package reporting

import (
	"fmt"
	"time"

	"svcseq/internal/services"
)

// EventType defines the type of progress event.
type EventType string

const (
	EventTypeQuery          EventType = "target.query"
	EventTypeQueryFailed    EventType = "target.query_failed"
	EventTypePoll           EventType = "target.poll"
	EventTypeStartRequested EventType = "target.start_requested"
	EventTypeStartFailed    EventType = "target.start_failed"
	EventTypeOutcome        EventType = "target.outcome"
	EventTypeSkipped        EventType = "target.skipped"
)

// String makes EventType satisfy the fmt.Stringer interface.
func (et EventType) String() string {
	return string(et)
}

// Event is a single progress update about one target.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Target    services.ServiceTarget
	Status    services.ServiceStatus
	Poll      int
	Err       error

	// Outcome is set for EventTypeOutcome and EventTypeSkipped.
	Outcome *services.StartupOutcome
}

// String provides a simple representation for debugging.
func (e Event) String() string {
	return fmt.Sprintf("Event(TS: %s, Type: %s, Target: %s, Status: %s, Poll: %d, Err: %v)",
		e.Timestamp.Format(time.RFC3339), e.Type, e.Target, e.Status, e.Poll, e.Err)
}
