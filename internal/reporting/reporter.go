package reporting

import "time"

// Reporter receives progress events. Implementations must not block the
// caller for long; the startup sequence waits on Report.
type Reporter interface {
	Report(event Event)
}

// NopReporter discards every event.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Event) {}

// MultiReporter fans an event out to several reporters in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, r := range m {
		if r != nil {
			r.Report(event)
		}
	}
}

// ChannelReporter forwards events to a buffered channel, typically drained
// by the TUI.
type ChannelReporter struct {
	ch chan Event
}

// NewChannelReporter creates a ChannelReporter with the given buffer size.
func NewChannelReporter(buffer int) *ChannelReporter {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelReporter{ch: make(chan Event, buffer)}
}

// Report implements Reporter. It blocks when the buffer is full so no
// progress update is lost.
func (c *ChannelReporter) Report(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.ch <- event
}

// Events returns the receive side of the channel.
func (c *ChannelReporter) Events() <-chan Event {
	return c.ch
}

// Close closes the channel. Report must not be called afterwards.
func (c *ChannelReporter) Close() {
	close(c.ch)
}
