package browser

import (
	"context"
	"time"
)

// Launcher starts or attaches to a destination browser.
type Launcher interface {
	Launch(ctx context.Context, binary string) (Session, error)
}

// Session is an automation handle on a running destination browser.
type Session interface {
	// OpenInitial navigates the page the browser started with, or a fresh
	// page when the launch attached to an instance that was already running.
	OpenInitial(url string, opts NavigateOptions) error

	// OpenNew creates a page in the shared browsing context and navigates it.
	OpenNew(url string, opts NavigateOptions) error

	// Release drops the automation handle. It never closes the browser.
	Release() error
}

// LaunchOptions configures how the destination browser is started.
type LaunchOptions struct {
	// Args are appended to the launch command line
	Args []string

	// UserDataDir is the profile directory; empty lets the browser decide
	UserDataDir string

	// RemoteDebuggingPort is the CDP port; 0 picks a free port
	RemoteDebuggingPort int

	// Headless runs without a window; only used by tests and probes
	Headless bool

	// Timeout bounds process start plus CDP connection
	Timeout time.Duration
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values
const (
	DefaultTimeout       = 30000.0 // 30 seconds in milliseconds
	DefaultLaunchTimeout = 30 * time.Second
	DefaultWaitUntil     = "domcontentloaded"
)
