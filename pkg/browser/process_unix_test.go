//go:build unix

package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleInstanceBrowser behaves like Chromium's profile lock: with the
// profile already locked it hands off and exits 0, otherwise it stays up
// without ever opening a debugging port.
const singleInstanceBrowser = `#!/bin/sh
for a in "$@"; do
  case "$a" in
    --user-data-dir=*) dir="${a#--user-data-dir=}" ;;
  esac
done
if [ -n "$TABCLONER_TEST_PIDFILE" ]; then
  echo $$ > "$TABCLONER_TEST_PIDFILE"
fi
if [ -n "$dir" ] && [ -e "$dir/SingletonLock" ]; then
  exit 0
fi
exec sleep 30
`

func writeBrowser(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "sidekick")
	require.NoError(t, os.WriteFile(bin, []byte(singleInstanceBrowser), 0755))
	return bin
}

func alive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

func TestStartBrowser_SecondLaunchOnOpenProfile(t *testing.T) {
	running := versionServer(t, "ws://127.0.0.1:1/devtools/browser/running")

	profile := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(profile, "SingletonLock"), nil, 0600))
	writeActivePort(t, profile, serverPort(t, running))

	proc, err := startBrowser(writeBrowser(t), LaunchOptions{UserDataDir: profile})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ep, err := proc.waitForEndpoint(ctx)
	require.NoError(t, err)
	assert.True(t, ep.handedOff)
	assert.Equal(t, "ws://127.0.0.1:1/devtools/browser/running", ep.wsURL)
}

func TestPlaywrightLauncher_KillsBrowserOnFailedLaunch(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	t.Setenv("TABCLONER_TEST_PIDFILE", pidFile)

	launcher := NewPlaywrightLauncher(LaunchOptions{
		UserDataDir: t.TempDir(),
		Timeout:     time.Second,
	})
	launcher.prepare = func() error { return nil }

	session, err := launcher.Launch(context.Background(), writeBrowser(t))
	require.Error(t, err)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !alive(pid) }, 2*time.Second, 20*time.Millisecond,
		"browser %d still running after a failed launch", pid)
}

func TestPlaywrightLauncher_PrepareFailureStartsNothing(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	t.Setenv("TABCLONER_TEST_PIDFILE", pidFile)

	launcher := NewPlaywrightLauncher(LaunchOptions{Timeout: time.Second})
	launcher.prepare = func() error { return errors.New("failed to install playwright: offline") }

	_, err := launcher.Launch(context.Background(), writeBrowser(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	_, statErr := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(statErr), "browser must not start when the driver is unavailable")
}
