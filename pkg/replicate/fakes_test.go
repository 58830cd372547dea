package replicate

import (
	"context"
	"fmt"

	"github.com/entrhq/tabcloner/pkg/browser"
	"github.com/entrhq/tabcloner/pkg/locator"
)

type fakeLocator struct {
	path string
	err  error
}

func (f fakeLocator) Locate() (string, error) {
	return f.path, f.err
}

func notFound() fakeLocator {
	return fakeLocator{err: fmt.Errorf("%w: test", locator.ErrNotFound)}
}

type opened struct {
	url     string
	initial bool
	opts    browser.NavigateOptions
}

type fakeSession struct {
	opened   []opened
	failOn   map[int]bool // 1-based attempt numbers that fail
	panicOn  int
	released int
}

func (s *fakeSession) open(url string, initial bool, opts browser.NavigateOptions) error {
	s.opened = append(s.opened, opened{url: url, initial: initial, opts: opts})
	n := len(s.opened)
	if s.panicOn == n {
		panic("driver connection lost")
	}
	if s.failOn[n] {
		return fmt.Errorf("navigation failed: net::ERR_NAME_NOT_RESOLVED at %s", url)
	}
	return nil
}

func (s *fakeSession) OpenInitial(url string, opts browser.NavigateOptions) error {
	return s.open(url, true, opts)
}

func (s *fakeSession) OpenNew(url string, opts browser.NavigateOptions) error {
	return s.open(url, false, opts)
}

func (s *fakeSession) Release() error {
	s.released++
	return nil
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launched []string
}

func (l *fakeLauncher) Launch(_ context.Context, binary string) (browser.Session, error) {
	l.launched = append(l.launched, binary)
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}
