package main

import (
	"fmt"

	"github.com/entrhq/tabcloner/pkg/browser"
	"github.com/entrhq/tabcloner/pkg/config"
	"github.com/entrhq/tabcloner/pkg/locator"
	"github.com/entrhq/tabcloner/pkg/logging"
	"github.com/entrhq/tabcloner/pkg/replicate"
)

// loadConfig loads the configuration and points the logging package at
// the configured directory and level.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg.Logging.Dir, level)
	return cfg, nil
}

// newLogger opens the per-process log file, named after the command's
// role. On failure NewLogger has already fallen back to stderr and said so.
func newLogger(role string) *logging.Logger {
	logging.SetRole(role)
	logger, _ := logging.NewLogger(role)
	return logger
}

func newLocator(cfg *config.Config) *locator.Locator {
	return locator.New(cfg.LocatorOptions())
}

func newEngine(cfg *config.Config, logger *logging.Logger) (*replicate.Engine, error) {
	filter, err := replicate.NewURLFilter(cfg.Replication.SkipPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid skip pattern: %w", err)
	}

	launcher := browser.NewPlaywrightLauncher(browser.LaunchOptions{
		Args:                cfg.Browser.Args,
		UserDataDir:         cfg.Browser.UserDataDir,
		RemoteDebuggingPort: cfg.Browser.RemoteDebuggingPort,
		Timeout:             cfg.Browser.LaunchTimeout,
	})

	return replicate.NewEngine(newLocator(cfg), launcher, filter, replicate.Options{
		BrowserName: cfg.Browser.Name,
		DownloadURL: cfg.Browser.DownloadURL,
		Navigate: browser.NavigateOptions{
			WaitUntil: cfg.Replication.WaitUntil,
			Timeout:   float64(cfg.Replication.NavigationTimeout.Milliseconds()),
		},
		TabDelay: cfg.Replication.TabDelay,
	}, logger.Named("replicate")), nil
}
