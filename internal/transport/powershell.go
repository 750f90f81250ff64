package transport

import (
	"context"
	"fmt"
	"strings"

	"svcseq/internal/services"
)

// PowerShell controls services through PowerShell remoting:
// Invoke-Command -ComputerName <server> -ScriptBlock { ... }.
type PowerShell struct {
	Runner CommandRunner
	// Binary defaults to "powershell". Set to "pwsh" for PowerShell 7.
	Binary string
}

// NewPowerShell creates a PowerShell remoting transport.
func NewPowerShell(runner CommandRunner) *PowerShell {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PowerShell{Runner: runner}
}

// Name implements Transport.
func (p *PowerShell) Name() string { return string(KindPowerShell) }

func (p *PowerShell) binary() string {
	if p.Binary == "" {
		return "powershell"
	}
	return p.Binary
}

// psQuote renders s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func invokeScript(server, script string) string {
	return fmt.Sprintf("Invoke-Command -ComputerName %s -ErrorAction Stop -ScriptBlock { %s }", psQuote(server), script)
}

func (p *PowerShell) run(ctx context.Context, script string) (string, error) {
	return p.Runner.Run(ctx, p.binary(), "-NoProfile", "-NonInteractive", "-Command", script)
}

// Query implements Transport.
func (p *PowerShell) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	script := invokeScript(target.Server,
		fmt.Sprintf("(Get-Service -Name %s -ErrorAction Stop).Status.ToString()", psQuote(target.ServiceName)))
	out, err := p.run(ctx, script)
	if err != nil {
		return services.Report{}, fmt.Errorf("powershell query %s: %w", target, err)
	}
	return services.Report{Format: services.FormatPowerShell, Raw: out}, nil
}

// Start implements Transport. ServiceController.Start returns as soon as
// the request is accepted, unlike Start-Service which waits for Running.
func (p *PowerShell) Start(ctx context.Context, target services.ServiceTarget) error {
	script := invokeScript(target.Server,
		fmt.Sprintf("(Get-Service -Name %s -ErrorAction Stop).Start()", psQuote(target.ServiceName)))
	if _, err := p.run(ctx, script); err != nil {
		return fmt.Errorf("powershell start %s: %w", target, err)
	}
	return nil
}
