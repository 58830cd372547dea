package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher starts the destination browser and attaches Playwright
// to it over CDP.
type PlaywrightLauncher struct {
	mu        sync.Mutex
	opts      LaunchOptions
	installed bool

	// prepare runs before the browser is started; install by default
	prepare func() error

	// runOptions keeps the driver quiet: stdout belongs to the host protocol
	runOptions *playwright.RunOptions
}

// NewPlaywrightLauncher creates a launcher with the given options.
func NewPlaywrightLauncher(opts LaunchOptions) *PlaywrightLauncher {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultLaunchTimeout
	}
	l := &PlaywrightLauncher{
		opts: opts,
		runOptions: &playwright.RunOptions{
			SkipInstallBrowsers: true,
			Verbose:             false,
			Stdout:              io.Discard,
			Stderr:              io.Discard,
		},
	}
	l.prepare = l.install
	return l
}

// install fetches the Playwright driver once per process. Browsers are not
// downloaded: the destination binary is supplied by the caller.
func (l *PlaywrightLauncher) install() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.installed {
		return nil
	}
	if err := playwright.Install(l.runOptions); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	l.installed = true
	return nil
}

// Launch starts binary with a remote debugging port and connects to it.
// When binary hands off to an instance already running on the same
// profile, Launch attaches to that instance and the first tab goes to a
// new page so the user's existing tabs are left untouched.
//
// A browser process started here is killed if the launch fails before a
// session exists.
func (l *PlaywrightLauncher) Launch(ctx context.Context, binary string) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	if err := l.prepare(); err != nil {
		return nil, err
	}

	proc, err := startBrowser(binary, l.opts)
	if err != nil {
		return nil, err
	}

	session, err := l.attach(ctx, proc)
	if err != nil {
		proc.kill()
		return nil, err
	}
	return session, nil
}

func (l *PlaywrightLauncher) attach(ctx context.Context, proc *browserProcess) (*PlaywrightSession, error) {
	ep, err := proc.waitForEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	pw, err := playwright.Run(l.runOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	timeout := float64(l.opts.Timeout / time.Millisecond)
	b, err := pw.Chromium.ConnectOverCDP(ep.wsURL, playwright.BrowserTypeConnectOverCDPOptions{
		Timeout: &timeout,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	// The default context is the user's profile; new pages share its cookies
	contexts := b.Contexts()
	if len(contexts) == 0 {
		_ = pw.Stop()
		return nil, fmt.Errorf("browser exposed no default context")
	}
	browserContext := contexts[0]

	var initial playwright.Page
	if pages := browserContext.Pages(); len(pages) > 0 && !ep.handedOff {
		initial = pages[0]
	} else {
		initial, err = browserContext.NewPage()
		if err != nil {
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	return &PlaywrightSession{
		playwright: pw,
		context:    browserContext,
		page:       initial,
	}, nil
}
