package app

import (
	"context"
	"fmt"
	"os"

	"svcseq/internal/config"
	"svcseq/internal/orchestrator"
	"svcseq/internal/reporting"
	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

// Application is the main application structure that bootstraps and runs svcseq
type Application struct {
	config *Config
	plan   services.StartupPlan
}

// NewApplication loads the layered configuration, applies command-line
// overrides and validates the startup plan.
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag. Stdout is reserved for
	// results, so logs go to stderr.
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.InitForCLI(appLogLevel, os.Stderr)

	if cfg.Settings == nil {
		settings, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load svcseq configuration")
			return nil, fmt.Errorf("failed to load svcseq configuration: %w", err)
		}
		cfg.Settings = &settings
	}

	if cfg.OnFailure != "" {
		policy, err := orchestrator.ParseFailurePolicy(cfg.OnFailure)
		if err != nil {
			return nil, err
		}
		cfg.Settings.OnFailure = string(policy)
	}

	plan, err := cfg.Settings.Plan()
	if err != nil {
		return nil, fmt.Errorf("invalid startup plan: %w", err)
	}
	logging.Debug("Bootstrap", "Loaded plan with %d service(s), transport %s", len(plan), cfg.Settings.Transport.Type)

	return &Application{
		config: cfg,
		plan:   plan,
	}, nil
}

// Plan returns the validated startup plan.
func (a *Application) Plan() services.StartupPlan {
	return a.plan
}

// Settings returns the merged configuration.
func (a *Application) Settings() config.SvcseqConfig {
	return *a.config.Settings
}

// Services wires a fresh set of collaborators reporting to reporter.
func (a *Application) Services(reporter reporting.Reporter) (*Services, error) {
	return InitializeServices(a.config, reporter)
}

// Run executes the startup plan in the appropriate mode. The error is
// about the run itself (for example the TUI failing); per-target failures
// are in the result.
func (a *Application) Run(ctx context.Context) (orchestrator.RunResult, error) {
	if len(a.plan) == 0 {
		return orchestrator.RunResult{}, fmt.Errorf("no services configured; add a services list to %v or pass --config", config.SearchPaths())
	}
	if a.config.TUI {
		return runTUIMode(ctx, a)
	}
	return runCLIMode(ctx, a)
}
