package config

import "time"

// Config represents the application configuration
type Config struct {
	JMAP       JMAPConfig       `toml:"jmap"`
	Retry      RetryConfig      `toml:"retry"`
	TopSenders TopSendersConfig `toml:"top_senders"`
}

// JMAPConfig contains connection settings for the JMAP API
type JMAPConfig struct {
	SessionURL     string `toml:"session_url"`
	TokenEnv       string `toml:"token_env"`
	PageSize       int    `toml:"page_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout as a duration
func (j JMAPConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// RetryConfig bounds the paginator's recovery behavior
type RetryConfig struct {
	MaxRetries     int `toml:"max_retries"`
	BackoffSeconds int `toml:"backoff_seconds"`
}

// Backoff returns the exponential backoff base as a duration
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffSeconds) * time.Second
}

// TopSendersConfig holds defaults for the top-senders subcommand
type TopSendersConfig struct {
	Count  int `toml:"count"`
	Months int `toml:"months"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		JMAP: JMAPConfig{
			SessionURL:     "https://api.fastmail.com/jmap/session",
			TokenEnv:       "FASTMAIL_TOKEN",
			PageSize:       50,
			TimeoutSeconds: 30,
		},
		Retry: RetryConfig{
			MaxRetries:     5,
			BackoffSeconds: 2,
		},
		TopSenders: TopSendersConfig{
			Count:  25,
			Months: 6,
		},
	}
}
