package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// startOnFailure overrides the configured failure policy.
var startOnFailure string

// startTUI shows the live view instead of line-by-line progress.
var startTUI bool

// startCmd runs the configured startup plan.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Bring up every configured service in order",
	Long: `Brings every configured service into the Running state, one after the
other, in the configured order.

Services that are already running are left alone. For the others svcseq
requests a start and polls until the service reports Running or its start
timeout passes. With --on-failure=continue (the default) a failed service
does not stop the run; with --on-failure=abort the remaining services are
skipped.

Progress is logged to stderr and the outcome table is printed on stdout.
The command exits non-zero when any service did not reach Running.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	application, err := newApplication(startTUI, startOnFailure)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	result, err := application.Run(ctx)
	if err != nil {
		return err
	}
	if err := printer.PrintRun(result); err != nil {
		return err
	}
	return result.Err()
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startOnFailure, "on-failure", "", "What to do when a service fails to start: continue or abort (default from config)")
	startCmd.Flags().BoolVar(&startTUI, "tui", false, "Show the interactive live view")
}
