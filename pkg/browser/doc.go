// Package browser drives the destination browser through Playwright.
//
// The destination is started as a detached process with a remote debugging
// port, and Playwright attaches to it over CDP. Releasing a session stops
// only the Playwright driver: the browser window, with every page opened
// during the session, stays with the user.
//
// # Session Lifecycle
//
//  1. Launch: PlaywrightLauncher.Launch starts the binary and connects. If
//     the profile is already open, the new process hands off and exits, and
//     Launch attaches to the running instance through the profile's
//     DevToolsActivePort file. A failed launch kills the process it started.
//  2. Open: OpenInitial reuses the browser's first page (a new page after a
//     hand-off), OpenNew adds pages to the same browsing context so they
//     share cookies
//  3. Release: the automation handle goes away, the browser does not
//
// # Example Usage
//
//	launcher := browser.NewPlaywrightLauncher(browser.LaunchOptions{
//	    Args: []string{"--disable-blink-features=AutomationControlled"},
//	})
//	session, err := launcher.Launch(ctx, "/usr/bin/sidekick")
//	if err != nil {
//	    return err
//	}
//	defer session.Release()
//
//	err = session.OpenInitial("https://example.com", browser.NavigateOptions{
//	    WaitUntil: "domcontentloaded",
//	    Timeout:   30000,
//	})
//
// Probe is a separate, headless check built on chromedp that confirms a
// binary speaks the DevTools protocol before any user-visible launch.
package browser
