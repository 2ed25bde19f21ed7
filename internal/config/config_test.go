package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.Addr(); got != "0.0.0.0:5000" {
		t.Errorf("expected 0.0.0.0:5000, got %s", got)
	}
	if cfg.RateLimit.Limit != 0 {
		t.Error("rate limiting should be off by default")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  port: 5050
input:
  backend: noop
  dispatch_timeout: 500ms
ratelimit:
  limit: 3
  window: 2s
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Server.Port != 5050 {
		t.Errorf("expected port 5050, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("expected default host to survive, got %q", cfg.Server.Host)
	}
	if cfg.Input.Backend != "noop" {
		t.Errorf("expected backend noop, got %q", cfg.Input.Backend)
	}
	if cfg.Input.DispatchTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms dispatch timeout, got %v", cfg.Input.DispatchTimeout)
	}
	if cfg.RateLimit.Limit != 3 || cfg.RateLimit.Window != 2*time.Second {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "   \n"} {
		cfg, err := Parse([]byte(in))
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if cfg != Default() {
			t.Errorf("Parse(%q) should return defaults", in)
		}
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("server:\n  prot: 5000\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestParse_TrailingDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"known fields", "server:\n  port: 5000\n---\nserver:\n  port: 6000\n"},
		{"unknown fields", "server:\n  port: 6000\n---\nbogus: 1\n"},
		{"empty mapping", "server:\n  port: 6000\n---\n{}\n"},
		{"scalar", "server:\n  port: 6000\n---\nhello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Error("expected error for trailing document")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("volume:\n  watch: true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !cfg.Volume.Watch {
		t.Error("expected volume.watch to be true")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPort:         "8081",
		EnvHost:         "127.0.0.1",
		EnvInputBackend: "uinput",
		EnvLogLevel:     "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Server.Port != 8081 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Input.Backend != "uinput" {
		t.Errorf("expected backend uinput, got %q", cfg.Input.Backend)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Logging.Level)
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvPort {
			return "five-thousand", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestOverrides_Apply(t *testing.T) {
	port := 7000
	backend := "noop"
	watch := true

	cfg := Default()
	Overrides{Port: &port, Backend: &backend, Watch: &watch}.Apply(&cfg)

	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Input.Backend != "noop" {
		t.Errorf("expected backend noop, got %q", cfg.Input.Backend)
	}
	if !cfg.Volume.Watch {
		t.Error("expected watch to be enabled")
	}
	if cfg.Logging.Level != "info" {
		t.Error("unset overrides must not change config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"bad host", func(c *Config) { c.Server.Host = "not a host" }},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"unknown backend", func(c *Config) { c.Input.Backend = "hid" }},
		{"dispatch timeout", func(c *Config) { c.Input.DispatchTimeout = 0 }},
		{"negative limit", func(c *Config) { c.RateLimit.Limit = -1 }},
		{"limit without window", func(c *Config) { c.RateLimit.Limit = 2; c.RateLimit.Window = 0 }},
		{"watch without interval", func(c *Config) { c.Volume.Watch = true; c.Volume.PollInterval = 0 }},
		{"ws frame limit", func(c *Config) { c.WebSocket.MaxMessageBytes = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
