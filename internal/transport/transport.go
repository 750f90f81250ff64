package transport

import (
	"context"
	"errors"
	"strings"

	"svcseq/internal/services"
)

// ErrUnsupported is returned by transports that cannot run on the current
// platform.
var ErrUnsupported = errors.New("transport not supported on this platform")

// Transport issues one logical query or start request per call against a
// remote service. Implementations are stateless between calls.
type Transport interface {
	// Name identifies the transport in diagnostics.
	Name() string

	// Query returns the raw status representation of the service.
	Query(ctx context.Context, target services.ServiceTarget) (services.Report, error)

	// Start asks the service control manager to start the service. It does
	// not wait for the service to reach Running.
	Start(ctx context.Context, target services.ServiceTarget) error
}

// Kind selects a transport implementation.
type Kind string

const (
	KindSC         Kind = "sc"
	KindPowerShell Kind = "powershell"
	KindSCM        Kind = "scm"
	KindSSH        Kind = "ssh"
)

// Kinds lists every supported transport kind.
func Kinds() []Kind {
	return []Kind{KindSC, KindPowerShell, KindSCM, KindSSH}
}

// ParseKind validates a transport kind, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// uncPath renders a server name as the \\server form sc.exe expects.
func uncPath(server string) string {
	return `\\` + strings.TrimLeft(server, `\`)
}
