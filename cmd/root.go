package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"svcseq/internal/app"
	"svcseq/internal/cli"
)

// configPath points at an explicit config file layered over the user and
// project files.
var configPath string

// debug enables verbose logging across the application.
var debug bool

// outputFormat selects how results are printed on stdout.
var outputFormat string

// configureApp, when set, adjusts the application configuration before it
// is loaded. Tests use it to swap in a simulated transport and clock.
var configureApp func(*app.Config)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "svcseq",
	Short: "Bring up Windows services on remote hosts in a fixed order",
	Long: `svcseq brings a set of Windows services on remote hosts into the Running
state, one after the other, in the order given by its configuration.

For every service it queries the current status, requests a start when the
service is not running and polls until the service reports Running or the
start timeout passes. Results are printed as a table or as JSON/YAML.

Configuration:
  svcseq layers ~/.config/svcseq/config.yaml, .svcseq/config.yaml in the
  current directory and the file given with --config, in that order.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed services, unreachable hosts)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "svcseq version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication loads the configuration and builds the application for
// one command invocation.
func newApplication(tui bool, onFailure string) (*app.Application, error) {
	cfg := app.NewConfig(configPath, tui, debug, onFailure)
	if configureApp != nil {
		configureApp(cfg)
	}
	return app.NewApplication(cfg)
}

// newPrinter validates --output and returns a printer on the command's
// stdout.
func newPrinter(cmd *cobra.Command) (*cli.Printer, error) {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return cli.NewPrinter(cmd.OutOrStdout(), format), nil
}

// signalContext returns the command context, cancelled on interrupt or
// termination so that waits unwind and remaining targets are skipped.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file layered over the user and project config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
