package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"svcseq/internal/reporting"
	"svcseq/internal/services"
)

// waitTimeout bounds the wait; zero means the configured wait timeout.
var waitTimeout time.Duration

// waitInterval is the pause between polls; zero means the configured one.
var waitInterval time.Duration

// waitCmd waits for a service without starting it.
var waitCmd = &cobra.Command{
	Use:   "wait <server> <service>",
	Short: "Wait until a service reports Running, without starting it",
	Long: `Polls a service until it reports Running or the timeout passes. No start
is requested. Useful after starting a service by other means.

The command exits non-zero when the service did not reach Running in time.`,
	Args: cobra.ExactArgs(2),
	RunE: runWait,
}

// waitView is the printable result of a wait.
type waitView struct {
	Server     string `json:"server" yaml:"server"`
	Service    string `json:"service" yaml:"service"`
	Running    bool   `json:"running" yaml:"running"`
	Polls      int    `json:"polls" yaml:"polls"`
	LastStatus string `json:"lastStatus" yaml:"lastStatus"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runWait(cmd *cobra.Command, args []string) error {
	if waitTimeout < 0 || waitInterval < 0 {
		return fmt.Errorf("--timeout and --interval must not be negative")
	}
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	application, err := newApplication(false, "")
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	svcs, err := application.Services(reporting.NewConsoleReporter())
	if err != nil {
		return err
	}

	target := services.ServiceTarget{Server: args[0], ServiceName: args[1]}
	timeout := waitTimeout
	if timeout == 0 {
		timeout = application.Settings().Timing.WaitTimeout
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res := svcs.Controller.WaitUntilRunning(ctx, target, timeout, waitInterval)
	view := waitView{
		Server:     target.Server,
		Service:    target.ServiceName,
		Running:    res.Running,
		Polls:      res.Polls,
		LastStatus: res.LastStatus.String(),
	}
	if res.LastErr != nil {
		view.Error = res.LastErr.Error()
	}
	if err := printer.PrintValue(view); err != nil {
		return err
	}

	if !res.Running {
		return fmt.Errorf("%s did not reach Running within %s (last status %s)", target, timeout, res.LastStatus)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "How long to wait (default from config, 60s)")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 0, "Pause between polls (default from config, 5s)")
}
