package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the promoctl configuration
type Config struct {
	DefaultRules    string `yaml:"default_rules"`
	DefaultStrategy string `yaml:"default_strategy"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".promoctl", "config.yaml"), nil
}

// LoadConfig loads the configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveRulesPath returns the rules file to operate on.
// Priority: command flag > PROMOCTL_RULES environment variable > config file
// default > rules.yaml.
func ResolveRulesPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if envPath := os.Getenv("PROMOCTL_RULES"); envPath != "" {
		return envPath, nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DefaultRules != "" {
		return cfg.DefaultRules, nil
	}

	return "rules.yaml", nil
}

// ResolveStrategy returns the selection strategy to use.
// Priority: command flag > config file default > engine default.
func ResolveStrategy(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.DefaultStrategy, nil
}

// InitConfig creates a default config file
func InitConfig() error {
	cfg := &Config{
		DefaultRules:    "rules.yaml",
		DefaultStrategy: "all",
	}
	return SaveConfig(cfg)
}
