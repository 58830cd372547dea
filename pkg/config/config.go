// Package config holds the tabcloner configuration: destination browser,
// replication tuning, native host limits, the HTTP relay and logging.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/tabcloner/pkg/locator"
	"github.com/entrhq/tabcloner/pkg/logging"
	"github.com/entrhq/tabcloner/pkg/nativemsg"
)

// Config is the full tabcloner configuration.
type Config struct {
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Replication ReplicationConfig `mapstructure:"replication" yaml:"replication"`
	Host        HostConfig        `mapstructure:"host" yaml:"host"`
	Relay       RelayConfig       `mapstructure:"relay" yaml:"relay"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// BrowserConfig describes the destination browser and how it is launched.
type BrowserConfig struct {
	// Name is used in user-facing messages
	Name string `mapstructure:"name" yaml:"name"`

	// Path pins the binary; when empty the locator policy applies
	Path string `mapstructure:"path" yaml:"path"`

	// Paths holds the well-known installation path per GOOS
	Paths map[string]string `mapstructure:"paths" yaml:"paths"`

	// BinaryName is searched on PATH when the well-known path is missing
	BinaryName string `mapstructure:"binary_name" yaml:"binary_name"`

	// Args are passed to every launch
	Args []string `mapstructure:"args" yaml:"args"`

	// UserDataDir is the profile the destination runs with
	UserDataDir string `mapstructure:"user_data_dir" yaml:"user_data_dir"`

	// RemoteDebuggingPort is the CDP port; 0 picks a free one
	RemoteDebuggingPort int `mapstructure:"remote_debugging_port" yaml:"remote_debugging_port"`

	// LaunchTimeout bounds the wait for the CDP endpoint
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`

	// DownloadURL is shown when the browser is not installed
	DownloadURL string `mapstructure:"download_url" yaml:"download_url"`
}

// ReplicationConfig tunes how tabs are opened.
type ReplicationConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	WaitUntil         string        `mapstructure:"wait_until" yaml:"wait_until"`
	TabDelay          time.Duration `mapstructure:"tab_delay" yaml:"tab_delay"`
	SkipPatterns      []string      `mapstructure:"skip_patterns" yaml:"skip_patterns"`
}

// HostConfig configures the native messaging host.
type HostConfig struct {
	MaxFrameSize int `mapstructure:"max_frame_size" yaml:"max_frame_size"`
}

// RelayConfig configures the HTTP relay server and client.
type RelayConfig struct {
	Addr           string `mapstructure:"addr" yaml:"addr"`
	URL            string `mapstructure:"url" yaml:"url"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`

	// Dir overrides ~/.tabcloner/logs
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default values
const (
	DefaultBrowserName       = "Sidekick"
	DefaultDownloadURL       = "https://www.meetsidekick.com/"
	DefaultLaunchTimeout     = 30 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultWaitUntil         = "domcontentloaded"
	DefaultTabDelay          = 200 * time.Millisecond
	DefaultRelayAddr         = "127.0.0.1:8768"
	DefaultMaxConnections    = 16
	DefaultMaxBodyBytes      = 32 * 1024 * 1024
)

// DefaultSkipPatterns match URLs another browser instance cannot open.
var DefaultSkipPatterns = []string{
	"chrome://*",
	"chrome-extension://*",
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	paths := make(map[string]string, len(locator.DefaultPaths))
	for goos, p := range locator.DefaultPaths {
		paths[goos] = p
	}

	return &Config{
		Browser: BrowserConfig{
			Name:          DefaultBrowserName,
			Paths:         paths,
			BinaryName:    locator.DefaultBinaryName,
			Args:          []string{"--disable-blink-features=AutomationControlled"},
			UserDataDir:   "$HOME/.tabcloner/profile",
			LaunchTimeout: DefaultLaunchTimeout,
			DownloadURL:   DefaultDownloadURL,
		},
		Replication: ReplicationConfig{
			NavigationTimeout: DefaultNavigationTimeout,
			WaitUntil:         DefaultWaitUntil,
			TabDelay:          DefaultTabDelay,
			SkipPatterns:      append([]string(nil), DefaultSkipPatterns...),
		},
		Host: HostConfig{
			MaxFrameSize: nativemsg.DefaultMaxFrameSize,
		},
		Relay: RelayConfig{
			Addr:           DefaultRelayAddr,
			URL:            "http://" + DefaultRelayAddr,
			MaxConnections: DefaultMaxConnections,
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
		Logging: LoggingConfig{
			Level: "debug",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Browser.Name) == "" {
		return fmt.Errorf("browser.name is required")
	}

	if c.Browser.Path == "" && c.Browser.BinaryName == "" && c.Browser.Paths[runtime.GOOS] == "" && c.Browser.Paths["linux"] == "" {
		return fmt.Errorf("browser.path, browser.paths or browser.binary_name must be set")
	}

	if c.Browser.RemoteDebuggingPort < 0 || c.Browser.RemoteDebuggingPort > 65535 {
		return fmt.Errorf("browser.remote_debugging_port out of range: %d", c.Browser.RemoteDebuggingPort)
	}

	if c.Browser.LaunchTimeout <= 0 {
		return fmt.Errorf("browser.launch_timeout must be positive")
	}

	if c.Replication.NavigationTimeout <= 0 {
		return fmt.Errorf("replication.navigation_timeout must be positive")
	}

	if c.Replication.TabDelay < 0 {
		return fmt.Errorf("replication.tab_delay cannot be negative")
	}

	switch c.Replication.WaitUntil {
	case "load", "domcontentloaded", "networkidle", "commit":
	default:
		return fmt.Errorf("invalid replication.wait_until: %s (must be load, domcontentloaded, networkidle or commit)", c.Replication.WaitUntil)
	}

	for _, pattern := range c.Replication.SkipPatterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid replication.skip_patterns entry '%s': %w", pattern, err)
		}
	}

	if c.Host.MaxFrameSize < 0 {
		return fmt.Errorf("host.max_frame_size cannot be negative")
	}

	if c.Relay.MaxConnections < 0 {
		return fmt.Errorf("relay.max_connections cannot be negative")
	}

	if c.Relay.MaxBodyBytes < 0 {
		return fmt.Errorf("relay.max_body_bytes cannot be negative")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}

	return nil
}

// LocatorOptions converts the browser section into locator options.
func (c *Config) LocatorOptions() locator.Options {
	return locator.Options{
		Path:       c.Browser.Path,
		Paths:      c.Browser.Paths,
		BinaryName: c.Browser.BinaryName,
	}
}
