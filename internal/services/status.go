package services

import (
	"strconv"
	"strings"
)

// ServiceStatus represents the observed state of a remote service.
type ServiceStatus string

const (
	StatusRunning         ServiceStatus = "Running"
	StatusStopped         ServiceStatus = "Stopped"
	StatusStartPending    ServiceStatus = "StartPending"
	StatusStopPending     ServiceStatus = "StopPending"
	StatusPaused          ServiceStatus = "Paused"
	StatusContinuePending ServiceStatus = "ContinuePending"
	StatusPausePending    ServiceStatus = "PausePending"
	StatusUnknown         ServiceStatus = "Unknown"
	StatusError           ServiceStatus = "Error"
)

// String makes ServiceStatus satisfy the fmt.Stringer interface.
func (s ServiceStatus) String() string {
	return string(s)
}

// IsRunning reports whether the status is Running. Every other value,
// including Unknown and Error, counts as not running.
func (s ServiceStatus) IsRunning() bool {
	return s == StatusRunning
}

// IsPending reports whether the service is in a transitional state.
func (s ServiceStatus) IsPending() bool {
	switch s {
	case StatusStartPending, StatusStopPending, StatusContinuePending, StatusPausePending:
		return true
	default:
		return false
	}
}

// stateCodes maps the Windows SERVICE_STATE codes reported by sc.exe and
// the SCM API to statuses.
var stateCodes = map[int]ServiceStatus{
	1: StatusStopped,
	2: StatusStartPending,
	3: StatusStopPending,
	4: StatusRunning,
	5: StatusContinuePending,
	6: StatusPausePending,
	7: StatusPaused,
}

// stateNames is keyed by the normalized (lowercase, no separators) name.
var stateNames = map[string]ServiceStatus{
	"stopped":         StatusStopped,
	"startpending":    StatusStartPending,
	"stoppending":     StatusStopPending,
	"running":         StatusRunning,
	"continuepending": StatusContinuePending,
	"pausepending":    StatusPausePending,
	"paused":          StatusPaused,
}

// StatusFromCode maps a numeric SERVICE_STATE code. Codes outside 1..7 map
// to StatusUnknown.
func StatusFromCode(code int) ServiceStatus {
	if s, ok := stateCodes[code]; ok {
		return s
	}
	return StatusUnknown
}

// StatusFromText maps a state name case-insensitively, ignoring '_', '-'
// and spaces, so "START_PENDING" and "StartPending" agree.
func StatusFromText(text string) ServiceStatus {
	if s, ok := stateNames[normalizeStateName(text)]; ok {
		return s
	}
	return StatusUnknown
}

func normalizeStateName(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(text)))
}

// ReportFormat identifies how a transport encodes the status it returns.
type ReportFormat string

const (
	FormatSC         ReportFormat = "sc"
	FormatPowerShell ReportFormat = "powershell"
	FormatCode       ReportFormat = "code"
)

// Report is the raw status representation returned by a transport query.
type Report struct {
	Format ReportFormat
	Raw    string
}

// ParseStatus extracts a ServiceStatus from a raw report. Unrecognized
// formats and unparseable output yield StatusUnknown.
func ParseStatus(r Report) ServiceStatus {
	switch r.Format {
	case FormatSC:
		return parseSCQuery(r.Raw)
	case FormatPowerShell:
		return parseTextOrCode(r.Raw)
	case FormatCode:
		code, err := strconv.Atoi(strings.TrimSpace(r.Raw))
		if err != nil {
			return StatusUnknown
		}
		return StatusFromCode(code)
	default:
		return StatusUnknown
	}
}

// parseSCQuery locates the STATE line of `sc query` output:
//
//	STATE              : 4  RUNNING
//
// The numeric code wins when present, otherwise the state name is used.
func parseSCQuery(out string) ServiceStatus {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "STATE") {
			continue
		}
		fields = fields[1:]
		if len(fields) > 0 && fields[0] == ":" {
			fields = fields[1:]
		} else if len(fields) > 0 && strings.HasPrefix(fields[0], ":") {
			fields[0] = strings.TrimPrefix(fields[0], ":")
		}
		if len(fields) == 0 {
			return StatusUnknown
		}
		if code, err := strconv.Atoi(fields[0]); err == nil {
			if s := StatusFromCode(code); s != StatusUnknown {
				return s
			}
			fields = fields[1:]
		}
		if len(fields) == 0 {
			return StatusUnknown
		}
		return StatusFromText(fields[0])
	}
	return StatusUnknown
}

// parseTextOrCode handles single-value output such as "Running" or "4".
// Only the first non-empty line is considered.
func parseTextOrCode(out string) ServiceStatus {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if code, err := strconv.Atoi(line); err == nil {
			return StatusFromCode(code)
		}
		return StatusFromText(line)
	}
	return StatusUnknown
}
