// Package replicate opens the tabs of a snapshot in the destination browser.
package replicate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/tabcloner/pkg/browser"
	"github.com/entrhq/tabcloner/pkg/locator"
	"github.com/entrhq/tabcloner/pkg/logging"
	"github.com/entrhq/tabcloner/pkg/types"
)

// UngroupedLabel labels tabs that belong to no group.
const UngroupedLabel = "ungrouped"

// Locator resolves the destination browser binary.
type Locator interface {
	Locate() (string, error)
}

// Options tunes a replication run.
type Options struct {
	// BrowserName is used in result messages
	BrowserName string

	// DownloadURL is suggested when the browser is missing
	DownloadURL string

	// Navigate applies to every page navigation
	Navigate browser.NavigateOptions

	// TabDelay separates successive non-first tabs
	TabDelay time.Duration
}

// Engine replicates snapshots. Runs are sequential; an Engine holds no
// state between them.
type Engine struct {
	locator  Locator
	launcher browser.Launcher
	filter   *URLFilter
	opts     Options
	logger   *logging.Logger
	sleep    func(time.Duration)
}

// NewEngine creates an engine.
func NewEngine(loc Locator, launcher browser.Launcher, filter *URLFilter, opts Options, logger *logging.Logger) *Engine {
	if opts.BrowserName == "" {
		opts.BrowserName = "destination"
	}
	if opts.Navigate.WaitUntil == "" {
		opts.Navigate.WaitUntil = browser.DefaultWaitUntil
	}
	if opts.Navigate.Timeout == 0 {
		opts.Navigate.Timeout = browser.DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		locator:  loc,
		launcher: launcher,
		filter:   filter,
		opts:     opts,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// entry is one URL to open, in order.
type entry struct {
	group string
	url   string
	title string
}

// plan lists the openable URLs: ungrouped tabs first, then each group's
// tabs in group order.
func (e *Engine) plan(snap *types.Snapshot) []entry {
	var entries []entry

	add := func(group string, tab types.TabRef) {
		if reason := e.filter.Check(tab.URL); reason != SkipNone {
			e.logger.Warnf("Skipping %s in %s: %q", reason, group, tab.URL)
			return
		}
		entries = append(entries, entry{group: group, url: tab.URL, title: tab.Title})
	}

	for _, tab := range snap.UngroupedTabs {
		add(UngroupedLabel, tab)
	}
	for _, g := range snap.Groups {
		label := g.Title
		if label == "" {
			label = "Untitled"
		}
		for _, tab := range g.Tabs {
			add(label, tab)
		}
	}
	return entries
}

// Replicate opens every eligible tab of snap in a freshly launched
// destination browser. Per-URL failures only lower tabsCloned; an error
// Result is reserved for locate, launch and automation-layer faults.
func (e *Engine) Replicate(ctx context.Context, snap *types.Snapshot) (res types.Result) {
	if snap == nil {
		return types.ErrorResult("No tab group data provided")
	}

	path, err := e.locator.Locate()
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			e.logger.Errorf("%s not found: %v", e.opts.BrowserName, err)
			return types.ErrorResult("%s browser not found. Please install %s from %s",
				e.opts.BrowserName, e.opts.BrowserName, e.opts.DownloadURL)
		}
		return types.ErrorResult("Failed to locate %s browser: %v", e.opts.BrowserName, err)
	}
	e.logger.Infof("Found %s at: %s", e.opts.BrowserName, path)

	session, err := e.launcher.Launch(ctx, path)
	if err != nil {
		e.logger.Errorf("Failed to launch %s: %v", e.opts.BrowserName, err)
		return types.ErrorResult("Failed to launch %s browser: %v", e.opts.BrowserName, err)
	}
	e.logger.Infof("Launched %s browser successfully", e.opts.BrowserName)

	// Only the automation handle is released; the window stays open
	defer func() {
		if err := session.Release(); err != nil {
			e.logger.Warnf("Failed to release automation session: %v", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("Automation failure while cloning tabs: %v", r)
			res = types.ErrorResult("Automation failure while cloning tabs: %v", r)
		}
	}()

	entries := e.plan(snap)
	e.logger.Infof("Opening %d URLs in %s", len(entries), e.opts.BrowserName)

	tabsCloned := 0
	for i, en := range entries {
		if i >= 2 && e.opts.TabDelay > 0 {
			e.sleep(e.opts.TabDelay)
		}

		var err error
		if i == 0 {
			err = session.OpenInitial(en.url, e.opts.Navigate)
		} else {
			err = session.OpenNew(en.url, e.opts.Navigate)
		}
		if err != nil {
			e.logger.Errorf("Error opening %s (%s): %v", en.url, en.group, err)
			continue
		}
		tabsCloned++
		e.logger.Infof("Opened: %s (%s)", en.url, en.group)
	}

	groupsCloned := snap.GroupCount()
	e.logger.Infof("Cloned %d groups with %d of %d tabs", groupsCloned, tabsCloned, len(entries))

	return types.ClonedResult(
		fmt.Sprintf("Opened %d tabs from %d groups in %s", tabsCloned, groupsCloned, e.opts.BrowserName),
		groupsCloned,
		tabsCloned,
	)
}
