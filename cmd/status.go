package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcseq/internal/cli"
	"svcseq/internal/reporting"
	"svcseq/internal/services"
)

// statusCmd queries services without starting them.
var statusCmd = &cobra.Command{
	Use:   "status [server service]",
	Short: "Show the current status of the configured services",
	Long: `Queries every configured service once and prints its status. Nothing is
started. Pass a server and a service name to query a single service that
does not have to be part of the configuration.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts either no arguments or <server> <service>, received %d", len(args))
		}
		return nil
	},
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	targets := []services.ServiceTarget(application.Plan())
	if len(args) == 2 {
		targets = []services.ServiceTarget{{Server: args[0], ServiceName: args[1]}}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	rows := make([]cli.StatusView, 0, len(targets))
	for _, t := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rows = append(rows, cli.StatusView{
			Server:  t.Server,
			Service: t.ServiceName,
			Status:  svcs.Controller.QueryStatus(ctx, t).String(),
		})
	}
	return printer.PrintStatuses(rows)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
