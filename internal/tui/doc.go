// Package tui implements the live terminal view of a startup run using
// the Bubble Tea framework.
//
// The view owns no business logic. It consumes two channels:
//
//   - progress events from a reporting.ChannelReporter, one row per target
//   - log entries from pkg/logging in TUI mode, shown in a scrollable panel
//
// The run itself executes in a separate goroutine. Quitting while the run
// is in progress cancels it through the context.CancelFunc in Config; the
// view then stays open until the orchestrator has marked the remaining
// targets as skipped and closed the event channel.
package tui
