package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.JMAP.SessionURL != "https://api.fastmail.com/jmap/session" {
		t.Errorf("expected Fastmail session URL, got %s", cfg.JMAP.SessionURL)
	}

	if cfg.JMAP.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", cfg.JMAP.PageSize)
	}

	if cfg.Retry.MaxRetries != 5 {
		t.Errorf("expected MaxRetries=5, got %d", cfg.Retry.MaxRetries)
	}

	if cfg.TopSenders.Count != 25 {
		t.Errorf("expected Count=25, got %d", cfg.TopSenders.Count)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "missing session url",
			modify: func(c *Config) {
				c.JMAP.SessionURL = ""
			},
			wantErr: true,
		},
		{
			name: "invalid page_size",
			modify: func(c *Config) {
				c.JMAP.PageSize = 0
			},
			wantErr: true,
		},
		{
			name: "page_size over limit",
			modify: func(c *Config) {
				c.JMAP.PageSize = 1000
			},
			wantErr: true,
		},
		{
			name: "invalid max_retries",
			modify: func(c *Config) {
				c.Retry.MaxRetries = 0
			},
			wantErr: true,
		},
		{
			name: "invalid months",
			modify: func(c *Config) {
				c.TopSenders.Months = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JMAP.PageSize != 50 {
		t.Errorf("expected default PageSize=50, got %d", cfg.JMAP.PageSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[jmap]\npage_size = 100\n\n[top_senders]\ncount = 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JMAP.PageSize != 100 {
		t.Errorf("expected PageSize=100, got %d", cfg.JMAP.PageSize)
	}
	if cfg.TopSenders.Count != 10 {
		t.Errorf("expected Count=10, got %d", cfg.TopSenders.Count)
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Errorf("expected untouched MaxRetries=5, got %d", cfg.Retry.MaxRetries)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[jmap]\npage_size = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a negative page_size")
	}
}

func TestToken(t *testing.T) {
	cfg := Default()
	cfg.JMAP.TokenEnv = "FASTMAIL_TOKEN_TEST"

	t.Setenv("FASTMAIL_TOKEN_TEST", "")
	if _, err := cfg.Token(); err == nil {
		t.Error("Token() succeeded with unset variable")
	}

	t.Setenv("FASTMAIL_TOKEN_TEST", "  fmu1-abc  ")
	token, err := cfg.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "fmu1-abc" {
		t.Errorf("Token() = %q, want trimmed value", token)
	}
}

func TestTimeoutAndBackoff(t *testing.T) {
	cfg := Default()

	if got := cfg.JMAP.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	if got := cfg.Retry.Backoff(); got != 2*time.Second {
		t.Errorf("Backoff() = %v, want 2s", got)
	}
}
