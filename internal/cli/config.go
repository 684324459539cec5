package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	DefaultEnv   string               `yaml:"default_env"`
	Environments map[string]EnvConfig `yaml:"environments"`
}

// EnvConfig represents configuration for a specific environment.
type EnvConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// GetConfigPath returns the path to the CLI config file.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".expdeck", "config.yaml"), nil
}

// LoadConfig loads the configuration from file. A missing file yields an
// empty config rather than an error.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{
				DefaultEnv:   "prod",
				Environments: make(map[string]EnvConfig),
			}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Environments == nil {
		cfg.Environments = make(map[string]EnvConfig)
	}
	return &cfg, nil
}

// GetEnvConfig resolves the effective environment configuration, applying
// command-line overrides on top of the config file.
func GetEnvConfig(env, baseURLOverride, apiKeyOverride string) (EnvConfig, string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return EnvConfig{}, "", err
	}

	effectiveEnv := env
	if effectiveEnv == "" {
		effectiveEnv = cfg.DefaultEnv
	}
	if effectiveEnv == "" {
		effectiveEnv = "prod"
	}

	envCfg := cfg.Environments[effectiveEnv]
	if baseURLOverride != "" {
		envCfg.BaseURL = baseURLOverride
	}
	if apiKeyOverride != "" {
		envCfg.APIKey = apiKeyOverride
	}
	if envCfg.BaseURL == "" {
		envCfg.BaseURL = "http://localhost:8080"
	}

	return envCfg, effectiveEnv, nil
}
