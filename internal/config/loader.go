package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file. A missing file is not an
// error: the tools must run with nothing but the token in the
// environment, so defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse TOML over the defaults
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Token resolves the bearer token, consulting a local .env file first so
// the token never has to live in the shell profile.
func (c *Config) Token() (string, error) {
	_ = godotenv.Load()

	token := strings.TrimSpace(os.Getenv(c.JMAP.TokenEnv))
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set", c.JMAP.TokenEnv)
	}
	return token, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// JMAP validation
	if c.JMAP.SessionURL == "" {
		errs = append(errs, errors.New("jmap.session_url is required"))
	}
	if c.JMAP.TokenEnv == "" {
		errs = append(errs, errors.New("jmap.token_env is required"))
	}
	if c.JMAP.PageSize < 1 || c.JMAP.PageSize > 500 {
		errs = append(errs, errors.New("jmap.page_size must be between 1 and 500"))
	}
	if c.JMAP.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("jmap.timeout_seconds must be at least 1"))
	}

	// Retry validation
	if c.Retry.MaxRetries < 1 {
		errs = append(errs, errors.New("retry.max_retries must be at least 1"))
	}
	if c.Retry.BackoffSeconds < 1 {
		errs = append(errs, errors.New("retry.backoff_seconds must be at least 1"))
	}

	// Top-senders validation
	if c.TopSenders.Count < 1 {
		errs = append(errs, errors.New("top_senders.count must be at least 1"))
	}
	if c.TopSenders.Months < 1 {
		errs = append(errs, errors.New("top_senders.months must be at least 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
