// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the file [Load] reads.
const EnvironmentVariable = "COURIER_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Strategy selects where RPC commands execute.
type Strategy string

const (
	// StrategyLocal executes commands in-process.
	StrategyLocal Strategy = "local"
	// StrategyRemote forwards commands to a courier server.
	StrategyRemote Strategy = "remote"
)

// Config is the complete courier configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Files  FilesConfig  `yaml:"files"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the per-environment sections. Zero fields do not
// override.
type Overrides struct {
	Log    *LogConfig    `yaml:"log,omitempty"`
	Server *ServerConfig `yaml:"server,omitempty"`
	Client *ClientConfig `yaml:"client,omitempty"`
	Files  *FilesConfig  `yaml:"files,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is auto, text, or json. Auto picks text when stderr is a
	// terminal.
	Format string `yaml:"format"`
}

// ServerConfig configures `courier server`.
type ServerConfig struct {
	// Address is a transport URL: ws://host:port/path or tcp://host:port.
	Address string `yaml:"address"`

	// RetryInterval is how long a connection task waits after a
	// transient read failure.
	RetryInterval time.Duration `yaml:"retry_interval"`

	// MetricsPath mounts the Prometheus handler on the WebSocket
	// listener. Empty disables it. Ignored for tcp:// addresses.
	MetricsPath string `yaml:"metrics_path"`
}

// ClientConfig configures the editor-side backend.
type ClientConfig struct {
	Address  string   `yaml:"address"`
	Strategy Strategy `yaml:"strategy"`

	// MailboxCapacity bounds every mailbox the backend opens.
	MailboxCapacity int `yaml:"mailbox_capacity"`

	// TickInterval is the host loop period when nothing wakes it.
	TickInterval time.Duration `yaml:"tick_interval"`

	// CallTimeout bounds how long `courier call` waits for a result.
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// FilesConfig configures the file-system service.
type FilesConfig struct {
	// Root confines every path in a file command. Empty serves the
	// whole filesystem.
	Root string `yaml:"root"`
}

// Default returns the configuration used before any file is applied.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()
	return &Config{
		Environment: Development,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Server: ServerConfig{
			Address:       "ws://0.0.0.0:9000/rpc",
			RetryInterval: time.Second,
			MetricsPath:   "/metrics",
		},
		Client: ClientConfig{
			Address:         "ws://127.0.0.1:9000/rpc",
			Strategy:        StrategyLocal,
			MailboxCapacity: 100,
			TickInterval:    50 * time.Millisecond,
			CallTimeout:     10 * time.Second,
		},
		Files: FilesConfig{
			Root: homeDirectory,
		},
	}
}

// Load reads the file named by COURIER_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your courier.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile reads path over [Default], applies the matching environment
// section, and expands variables. It does not validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.decode(path, data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a YAML subset, so one decoder handles both.
		data = jsonc.ToJSON(data)
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &Overrides{Log: &LogConfig{Format: "json"}}
		}
	}
	if overrides == nil {
		return
	}

	if o := overrides.Log; o != nil {
		override(&c.Log.Level, o.Level)
		override(&c.Log.Format, o.Format)
	}
	if o := overrides.Server; o != nil {
		override(&c.Server.Address, o.Address)
		override(&c.Server.RetryInterval, o.RetryInterval)
		override(&c.Server.MetricsPath, o.MetricsPath)
	}
	if o := overrides.Client; o != nil {
		override(&c.Client.Address, o.Address)
		override(&c.Client.Strategy, o.Strategy)
		override(&c.Client.MailboxCapacity, o.MailboxCapacity)
		override(&c.Client.TickInterval, o.TickInterval)
		override(&c.Client.CallTimeout, o.CallTimeout)
	}
	if o := overrides.Files; o != nil {
		override(&c.Files.Root, o.Root)
	}
}

func override[T comparable](target *T, value T) {
	var zero T
	if value != zero {
		*target = value
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Files.Root = expandVars(c.Files.Root, vars)
	vars["COURIER_ROOT"] = c.Files.Root

	c.Server.Address = expandVars(c.Server.Address, vars)
	c.Client.Address = expandVars(c.Client.Address, vars)
}

// expandVars resolves ${VAR} and ${VAR:-default} against vars, then
// the process environment, then the default.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, fallback := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return fallback
	})
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of auto, text, json; got %q", c.Log.Format))
	}

	if err := validateAddress(c.Server.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.address: %w", err))
	}
	if c.Server.RetryInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.retry_interval must be positive"))
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("server.metrics_path must start with /"))
	}

	if err := validateAddress(c.Client.Address); err != nil {
		errs = append(errs, fmt.Errorf("client.address: %w", err))
	}
	if c.Client.Strategy != StrategyLocal && c.Client.Strategy != StrategyRemote {
		errs = append(errs, fmt.Errorf("client.strategy must be local or remote; got %q", c.Client.Strategy))
	}
	if c.Client.MailboxCapacity <= 0 {
		errs = append(errs, fmt.Errorf("client.mailbox_capacity must be positive"))
	}
	if c.Client.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("client.tick_interval must be positive"))
	}
	if c.Client.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("client.call_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func validateAddress(address string) error {
	parsed, err := url.Parse(address)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "ws", "tcp":
	default:
		return fmt.Errorf("unsupported scheme %q (want ws or tcp)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host in %q", address)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
