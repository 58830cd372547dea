package browser

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession is a Playwright connection to a running destination
// browser.
type PlaywrightSession struct {
	playwright  *playwright.Playwright
	releaseOnce sync.Once

	// context is the browser's default context
	context playwright.BrowserContext

	// page receives the first tab
	page playwright.Page
}

// OpenInitial navigates the session's initial page.
func (s *PlaywrightSession) OpenInitial(url string, opts NavigateOptions) error {
	return navigate(s.page, url, opts)
}

// OpenNew creates a page in the default context and navigates it.
func (s *PlaywrightSession) OpenNew(url string, opts NavigateOptions) error {
	page, err := s.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	return navigate(page, url, opts)
}

// Release stops the Playwright driver. The browser keeps running.
func (s *PlaywrightSession) Release() error {
	var err error
	s.releaseOnce.Do(func() {
		if s.playwright != nil {
			if stopErr := s.playwright.Stop(); stopErr != nil {
				err = fmt.Errorf("failed to stop playwright: %w", stopErr)
			}
		}
	})
	return err
}

func navigate(page playwright.Page, url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		timeout := opts.Timeout
		playwrightOpts.Timeout = &timeout
	}

	if _, err := page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}
