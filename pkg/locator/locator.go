// Package locator resolves the destination browser binary on disk.
package locator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrNotFound is returned when no browser binary could be resolved. It is an
// expected condition, not a failure of the locator itself.
var ErrNotFound = errors.New("browser binary not found")

// Default well-known installation paths, keyed by GOOS.
var DefaultPaths = map[string]string{
	"darwin":  "/Applications/Sidekick.app/Contents/MacOS/Sidekick",
	"windows": `C:\Program Files\Sidekick\Application\sidekick.exe`,
	"linux":   "/usr/bin/sidekick",
}

// DefaultBinaryName is searched for on PATH when the well-known path is absent.
const DefaultBinaryName = "sidekick"

// Options configures a Locator.
type Options struct {
	// Path, when set, is the only well-known location consulted.
	Path string

	// Paths maps GOOS to the platform's well-known installation path.
	Paths map[string]string

	// BinaryName is looked up on PATH as the fallback.
	BinaryName string

	// GOOS overrides runtime.GOOS.
	GOOS string
}

// Locator finds the destination browser.
type Locator struct {
	wellKnown  string
	binaryName string

	stat     func(string) (os.FileInfo, error)
	lookPath func(string) (string, error)
}

// New creates a Locator for the current platform.
func New(opts Options) *Locator {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	paths := opts.Paths
	if paths == nil {
		paths = DefaultPaths
	}

	wellKnown := opts.Path
	if wellKnown == "" {
		wellKnown = pathFor(paths, goos)
	}

	binaryName := opts.BinaryName
	if binaryName == "" {
		binaryName = DefaultBinaryName
	}

	return &Locator{
		wellKnown:  wellKnown,
		binaryName: binaryName,
		stat:       os.Stat,
		lookPath:   exec.LookPath,
	}
}

// pathFor picks the platform entry. Unlisted platforms use the linux layout.
func pathFor(paths map[string]string, goos string) string {
	if p, ok := paths[goos]; ok {
		return p
	}
	return paths["linux"]
}

// WellKnownPath returns the path checked before the PATH search.
func (l *Locator) WellKnownPath() string {
	return l.wellKnown
}

// BinaryName returns the name searched for on PATH.
func (l *Locator) BinaryName() string {
	return l.binaryName
}

// Locate returns the browser binary path or ErrNotFound.
func (l *Locator) Locate() (string, error) {
	if l.wellKnown != "" {
		if info, err := l.stat(l.wellKnown); err == nil && !info.IsDir() {
			return l.wellKnown, nil
		}
	}

	if l.binaryName != "" {
		if path, err := l.lookPath(l.binaryName); err == nil && path != "" {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: checked %q and %q on PATH", ErrNotFound, l.wellKnown, l.binaryName)
}
