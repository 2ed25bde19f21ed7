// Package config loads the gesture-control configuration.
//
// Values are layered: defaults, then an optional YAML file, then environment
// variables, then command line flags. Validate is called once on the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 5000

	EnvPort         = "PORT"
	EnvHost         = "HOST"
	EnvInputBackend = "GESTURE_INPUT_BACKEND"
	EnvLogLevel     = "LOG_LEVEL"
	EnvConfigFile   = "GESTURE_CONFIG"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Input     InputConfig     `yaml:"input"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Volume    VolumeConfig    `yaml:"volume"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type InputConfig struct {
	// Backend is one of auto, native, xdotool, uinput, noop.
	Backend         string        `yaml:"backend"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	UinputDevice    string        `yaml:"uinput_device"`
}

// RateLimitConfig throttles gestures per client. Limit 0 disables it.
type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type VolumeConfig struct {
	Watch        bool          `yaml:"watch"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type WebSocketConfig struct {
	Enabled         bool  `yaml:"enabled"`
	MaxMessageBytes int64 `yaml:"max_message_bytes"`
	SendBuffer      int   `yaml:"send_buffer"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			MaxBodyBytes:    4096,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 3 * time.Second,
		},
		Input: InputConfig{
			Backend:         "auto",
			DispatchTimeout: 2 * time.Second,
			UinputDevice:    "/dev/uinput",
		},
		RateLimit: RateLimitConfig{
			Limit:  0,
			Window: time.Second,
		},
		Volume: VolumeConfig{
			Watch:        false,
			PollInterval: 500 * time.Millisecond,
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			MaxMessageBytes: 1024,
			SendBuffer:      32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile decodes a YAML file on top of the defaults. Unknown fields are
// rejected.
func LoadFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(new(yaml.Node)); !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from the environment using lookup, normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := lookup(EnvInputBackend); ok && v != "" {
		c.Input.Backend = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Overrides carries values set on the command line. Nil fields are ignored.
type Overrides struct {
	Host      *string
	Port      *int
	Backend   *string
	LogLevel  *string
	LogFormat *string
	RateLimit *int
	Watch     *bool
}

func (o Overrides) Apply(c *Config) {
	if o.Host != nil {
		c.Server.Host = *o.Host
	}
	if o.Port != nil {
		c.Server.Port = *o.Port
	}
	if o.Backend != nil {
		c.Input.Backend = *o.Backend
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		c.Logging.Format = *o.LogFormat
	}
	if o.RateLimit != nil {
		c.RateLimit.Limit = *o.RateLimit
	}
	if o.Watch != nil {
		c.Volume.Watch = *o.Watch
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535", ErrInvalidConfig)
	}
	if c.Server.Host != "" && net.ParseIP(c.Server.Host) == nil && c.Server.Host != "localhost" {
		return fmt.Errorf("%w: server.host must be an IP address or localhost", ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be > 0", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must be >= 0", ErrInvalidConfig)
	}

	switch c.Input.Backend {
	case "auto", "native", "xdotool", "uinput", "noop":
	default:
		return fmt.Errorf("%w: input.backend must be one of auto, native, xdotool, uinput, noop", ErrInvalidConfig)
	}
	if c.Input.DispatchTimeout <= 0 {
		return fmt.Errorf("%w: input.dispatch_timeout must be > 0", ErrInvalidConfig)
	}

	if c.RateLimit.Limit < 0 {
		return fmt.Errorf("%w: ratelimit.limit must be >= 0", ErrInvalidConfig)
	}
	if c.RateLimit.Limit > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: ratelimit.window must be > 0 when ratelimit.limit is set", ErrInvalidConfig)
	}

	if c.Volume.Watch && c.Volume.PollInterval <= 0 {
		return fmt.Errorf("%w: volume.poll_interval must be > 0", ErrInvalidConfig)
	}

	if c.WebSocket.MaxMessageBytes <= 0 {
		return fmt.Errorf("%w: websocket.max_message_bytes must be > 0", ErrInvalidConfig)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be debug, info, warn or error", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format must be json or console", ErrInvalidConfig)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
