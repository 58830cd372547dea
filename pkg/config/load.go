package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. TABCLONER_REPLICATION_TAB_DELAY.
const EnvPrefix = "TABCLONER"

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = EnvPrefix + "_CONFIG"

// DefaultConfigPath returns ~/.tabcloner/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tabcloner", "config.yaml"), nil
}

// Load reads the configuration from path over the defaults. An empty path
// uses $TABCLONER_CONFIG, then DefaultConfigPath. A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("browser.name", cfg.Browser.Name)
	v.SetDefault("browser.path", cfg.Browser.Path)
	v.SetDefault("browser.paths", cfg.Browser.Paths)
	v.SetDefault("browser.binary_name", cfg.Browser.BinaryName)
	v.SetDefault("browser.args", cfg.Browser.Args)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.SetDefault("browser.remote_debugging_port", cfg.Browser.RemoteDebuggingPort)
	v.SetDefault("browser.launch_timeout", cfg.Browser.LaunchTimeout)
	v.SetDefault("browser.download_url", cfg.Browser.DownloadURL)
	v.SetDefault("replication.navigation_timeout", cfg.Replication.NavigationTimeout)
	v.SetDefault("replication.wait_until", cfg.Replication.WaitUntil)
	v.SetDefault("replication.tab_delay", cfg.Replication.TabDelay)
	v.SetDefault("replication.skip_patterns", cfg.Replication.SkipPatterns)
	v.SetDefault("host.max_frame_size", cfg.Host.MaxFrameSize)
	v.SetDefault("relay.addr", cfg.Relay.Addr)
	v.SetDefault("relay.url", cfg.Relay.URL)
	v.SetDefault("relay.max_connections", cfg.Relay.MaxConnections)
	v.SetDefault("relay.max_body_bytes", cfg.Relay.MaxBodyBytes)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.dir", cfg.Logging.Dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	expandConfigEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// durationKeys are rendered as Go duration strings instead of nanoseconds.
var durationKeys = map[string]bool{
	"launch_timeout":     true,
	"navigation_timeout": true,
	"tab_delay":          true,
}

// Marshal renders the configuration as YAML that Load reads back.
func (c *Config) Marshal() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	formatDurations(&node)

	data, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func formatDurations(node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		for _, child := range node.Content {
			formatDurations(child)
		}
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if durationKeys[key.Value] && val.Kind == yaml.ScalarNode {
			if n, err := strconv.ParseInt(val.Value, 10, 64); err == nil {
				val.Value = time.Duration(n).String()
				val.Tag = "!!str"
			}
			continue
		}
		formatDurations(val)
	}
}

func expandConfigEnv(cfg *Config) {
	cfg.Browser.Path = expandEnv(cfg.Browser.Path)
	cfg.Browser.UserDataDir = expandEnv(cfg.Browser.UserDataDir)
	cfg.Logging.Dir = expandEnv(cfg.Logging.Dir)
	for goos, p := range cfg.Browser.Paths {
		cfg.Browser.Paths[goos] = expandEnv(p)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if key == "HOME" {
			if home, err := os.UserHomeDir(); err == nil {
				return home
			}
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}
