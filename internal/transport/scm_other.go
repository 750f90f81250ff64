//go:build !windows

package transport

import (
	"context"
	"fmt"

	"svcseq/internal/services"
)

// SCM is only functional on Windows. Elsewhere every call fails with
// ErrUnsupported, which the controller records as an Error status.
type SCM struct{}

// NewSCM creates a native Service Control Manager transport.
func NewSCM() *SCM {
	return &SCM{}
}

// Name implements Transport.
func (s *SCM) Name() string { return string(KindSCM) }

// Query implements Transport.
func (s *SCM) Query(_ context.Context, target services.ServiceTarget) (services.Report, error) {
	return services.Report{}, fmt.Errorf("query %s via scm: %w", target, ErrUnsupported)
}

// Start implements Transport.
func (s *SCM) Start(_ context.Context, target services.ServiceTarget) error {
	return fmt.Errorf("start %s via scm: %w", target, ErrUnsupported)
}
