package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"svcseq/internal/orchestrator"
	"svcseq/internal/transport"
	"svcseq/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/svcseq"
	projectConfigDir = ".svcseq"
	configFileName   = "config.yaml"
)

// LoadConfig loads the svcseq configuration by layering default, user and
// project settings, then the explicit file when explicitPath is not empty.
// The result is validated.
func LoadConfig(explicitPath string) (SvcseqConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = overlayIfExists(config, userConfigPath, "user"); err != nil {
		return SvcseqConfig{}, err
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = overlayIfExists(config, projectConfigPath, "project"); err != nil {
		return SvcseqConfig{}, err
	}

	// 4. Explicit file, which must exist
	if explicitPath != "" {
		explicitConfig, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return SvcseqConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicitConfig)
		logging.Debug("Config", "Loaded config from %s", explicitPath)
	}

	config.Transport.SSH.KeyFile = expandHome(config.Transport.SSH.KeyFile)
	config.Transport.SSH.KnownHostsFile = expandHome(config.Transport.SSH.KnownHostsFile)

	if err := Validate(config); err != nil {
		return SvcseqConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func overlayIfExists(base SvcseqConfig, path, layer string) (SvcseqConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return SvcseqConfig{}, fmt.Errorf("error loading %s config from %s: %w", layer, path, err)
	}
	logging.Debug("Config", "Loaded %s config from %s", layer, path)
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a SvcseqConfig from a YAML file. Unknown keys
// are rejected so that a typo such as "startTimout" does not go unnoticed.
func loadConfigFromFile(filePath string) (SvcseqConfig, error) {
	var config SvcseqConfig
	f, err := os.Open(filePath)
	if err != nil {
		return SvcseqConfig{}, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		// An empty file decodes to EOF and means "no overrides".
		if errors.Is(err, io.EOF) {
			return SvcseqConfig{}, nil
		}
		return SvcseqConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay SvcseqConfig) SvcseqConfig {
	merged := base

	if overlay.Transport.Type != "" {
		merged.Transport.Type = overlay.Transport.Type
	}
	if overlay.Transport.CommandTimeout != 0 {
		merged.Transport.CommandTimeout = overlay.Transport.CommandTimeout
	}
	if overlay.Transport.Binary != "" {
		merged.Transport.Binary = overlay.Transport.Binary
	}

	ssh := overlay.Transport.SSH
	if ssh.Host != "" {
		merged.Transport.SSH.Host = ssh.Host
	}
	if ssh.User != "" {
		merged.Transport.SSH.User = ssh.User
	}
	if ssh.KeyFile != "" {
		merged.Transport.SSH.KeyFile = ssh.KeyFile
	}
	if ssh.KnownHostsFile != "" {
		merged.Transport.SSH.KnownHostsFile = ssh.KnownHostsFile
	}
	if ssh.DialRetries != 0 {
		merged.Transport.SSH.DialRetries = ssh.DialRetries
	}
	if ssh.DialRetryInterval != 0 {
		merged.Transport.SSH.DialRetryInterval = ssh.DialRetryInterval
	}

	if overlay.Timing.PollInterval != 0 {
		merged.Timing.PollInterval = overlay.Timing.PollInterval
	}
	if overlay.Timing.StartTimeout != 0 {
		merged.Timing.StartTimeout = overlay.Timing.StartTimeout
	}
	if overlay.Timing.WaitTimeout != 0 {
		merged.Timing.WaitTimeout = overlay.Timing.WaitTimeout
	}

	if overlay.OnFailure != "" {
		merged.OnFailure = overlay.OnFailure
	}

	// The list order is the startup order, so a layer replaces it whole.
	if len(overlay.Services) > 0 {
		merged.Services = append(merged.Services[:0:0], overlay.Services...)
	}

	return merged
}

// Validate checks the merged configuration. Every problem is reported,
// each naming the offending setting or service entry.
func Validate(c SvcseqConfig) error {
	var errs []error

	kind, ok := transport.ParseKind(c.Transport.Type)
	if !ok {
		errs = append(errs, fmt.Errorf("transport.type %q is not one of %v", c.Transport.Type, transport.Kinds()))
	}
	if kind == transport.KindSSH {
		if c.Transport.SSH.Host == "" {
			errs = append(errs, errors.New("transport.ssh.host is required for the ssh transport"))
		}
		if c.Transport.SSH.User == "" {
			errs = append(errs, errors.New("transport.ssh.user is required for the ssh transport"))
		}
	}
	if c.Transport.CommandTimeout < 0 {
		errs = append(errs, errors.New("transport.commandTimeout must not be negative"))
	}

	if c.Timing.PollInterval < 0 || c.Timing.StartTimeout < 0 || c.Timing.WaitTimeout < 0 {
		errs = append(errs, errors.New("timing values must not be negative"))
	}

	if _, err := orchestrator.ParseFailurePolicy(c.OnFailure); err != nil {
		errs = append(errs, fmt.Errorf("onFailure: %w", err))
	}

	if _, err := c.Plan(); err != nil {
		errs = append(errs, fmt.Errorf("services: %w", err))
	}

	return errors.Join(errs...)
}

// SearchPaths returns the user and project config paths in load order.
// Paths that cannot be determined are left out.
func SearchPaths() []string {
	var paths []string
	if p, err := getUserConfigPath(); err == nil {
		paths = append(paths, p)
	}
	if p, err := getProjectConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := osUserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
