package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// planCmd prints the resolved plan.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the configured startup order and effective timing",
	Long: `Loads and validates the layered configuration and prints the services
in the order they will be started, with the timing that applies to each.
Nothing is contacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		application, err := newApplication(false, "")
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return printer.PrintPlan(application.Settings())
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
