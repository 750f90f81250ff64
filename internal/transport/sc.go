package transport

import (
	"context"
	"fmt"

	"svcseq/internal/services"
)

// SC controls services with the Windows service control utility,
// `sc \\server query|start name`, run on the local machine.
type SC struct {
	Runner CommandRunner
	// Binary defaults to "sc".
	Binary string
}

// NewSC creates an sc.exe transport. A nil runner runs commands locally.
func NewSC(runner CommandRunner) *SC {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &SC{Runner: runner}
}

// Name implements Transport.
func (s *SC) Name() string { return string(KindSC) }

func (s *SC) binary() string {
	if s.Binary == "" {
		return "sc"
	}
	return s.Binary
}

// Query implements Transport.
func (s *SC) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	out, err := s.Runner.Run(ctx, s.binary(), uncPath(target.Server), "query", target.ServiceName)
	if err != nil {
		return services.Report{}, fmt.Errorf("sc query %s: %w", target, err)
	}
	return services.Report{Format: services.FormatSC, Raw: out}, nil
}

// Start implements Transport.
func (s *SC) Start(ctx context.Context, target services.ServiceTarget) error {
	if _, err := s.Runner.Run(ctx, s.binary(), uncPath(target.Server), "start", target.ServiceName); err != nil {
		return fmt.Errorf("sc start %s: %w", target, err)
	}
	return nil
}
