package replicate

import (
	"fmt"

	"github.com/gobwas/glob"
)

// SkipReason explains why a tab is not replicated.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipEmptyURL   SkipReason = "empty url"
	SkipPrivileged SkipReason = "privileged url"
)

// URLFilter rejects URLs that must never reach the destination browser.
type URLFilter struct {
	patterns []string
	skip     []glob.Glob
}

// NewURLFilter compiles the privileged-URL patterns.
func NewURLFilter(patterns []string) (*URLFilter, error) {
	f := &URLFilter{patterns: append([]string(nil), patterns...)}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern '%s': %w", pattern, err)
		}
		f.skip = append(f.skip, g)
	}

	return f, nil
}

// Check returns SkipNone when url may be opened. A nil filter only rejects
// empty URLs.
func (f *URLFilter) Check(url string) SkipReason {
	if url == "" {
		return SkipEmptyURL
	}
	if f == nil {
		return SkipNone
	}
	for _, g := range f.skip {
		if g.Match(url) {
			return SkipPrivileged
		}
	}
	return SkipNone
}

// Patterns returns the configured patterns.
func (f *URLFilter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}
