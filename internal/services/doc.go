// Package services defines the data model shared by every svcseq component.
//
// # Core Concepts
//
// ServiceTarget: one (server, service name) pair that must be running before
// the next target in the plan is touched.
//
// StartupPlan: the ordered list of targets. Order is the startup order and
// is never rearranged.
//
// ServiceStatus: the state of a remote Windows service as observed by one
// query. A status is produced fresh on every query and never cached.
//
// StartupOutcome: what happened to one target during a run.
//
// # Status Parsing
//
// Transports hand back a raw Report. ParseStatus turns it into a
// ServiceStatus for each supported report format:
//
//   - FormatSC: the text printed by `sc \\server query name`
//   - FormatPowerShell: the value of `(Get-Service -Name name).Status`
//   - FormatCode: a bare numeric SERVICE_STATE code
//
// Output that cannot be understood maps to StatusUnknown and is never an
// error.
package services
