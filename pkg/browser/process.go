package browser

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const endpointPollInterval = 250 * time.Millisecond

// devToolsActivePortFile is written by Chromium into the profile directory
// with the port the running instance listens on.
const devToolsActivePortFile = "DevToolsActivePort"

// browserProcess is a destination browser started by this process. It is
// detached from the host so it outlives it.
type browserProcess struct {
	pid         int
	port        int
	userDataDir string
	process     *os.Process
	exited      chan struct{}
	exitErr     error
}

// endpoint is where Playwright attaches.
type endpoint struct {
	wsURL string

	// handedOff is set when the launched process passed its command line to
	// an instance already running on the same profile and exited
	handedOff bool
}

// launchArgs builds the command line for a CDP-enabled launch.
func launchArgs(opts LaunchOptions, port int) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", port),
		"--no-first-run",
		"--no-default-browser-check",
	}
	if opts.UserDataDir != "" {
		args = append(args, "--user-data-dir="+opts.UserDataDir)
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, opts.Args...)
	// Guarantees an initial page to reuse for the first tab
	return append(args, "about:blank")
}

// freePort asks the kernel for an unused loopback port.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve debugging port: %w", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

func startBrowser(binary string, opts LaunchOptions) (*browserProcess, error) {
	port := opts.RemoteDebuggingPort
	if port == 0 {
		var err error
		if port, err = freePort(); err != nil {
			return nil, err
		}
	}

	cmd := exec.Command(binary, launchArgs(opts, port)...)
	// No inherited stdio: the host's stdout carries protocol frames
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", binary, err)
	}

	p := &browserProcess{
		pid:         cmd.Process.Pid,
		port:        port,
		userDataDir: opts.UserDataDir,
		process:     cmd.Process,
		exited:      make(chan struct{}),
	}
	go func() {
		p.exitErr = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

// waitForEndpoint polls /json/version until the browser reports its
// WebSocket debugger URL.
//
// Chromium hands a launch over to an instance already running on the same
// profile and exits 0. That instance keeps its original port, so after a
// clean exit the port is taken from the profile's DevToolsActivePort file.
func (p *browserProcess) waitForEndpoint(ctx context.Context) (endpoint, error) {
	port := p.port
	handedOff := false
	exited := p.exited

	ticker := time.NewTicker(endpointPollInterval)
	defer ticker.Stop()

	for {
		if handedOff {
			if active, err := readDevToolsActivePort(p.userDataDir); err == nil {
				port = active
			}
		}

		versionURL := fmt.Sprintf("http://127.0.0.1:%d/json/version", port)
		if wsURL, err := fetchDebuggerURL(ctx, versionURL); err == nil {
			return endpoint{wsURL: wsURL, handedOff: handedOff}, nil
		}

		select {
		case <-ctx.Done():
			if handedOff {
				return endpoint{}, fmt.Errorf("browser handed off to a running instance that exposes no debugging endpoint in %s: %w", p.userDataDir, ctx.Err())
			}
			return endpoint{}, fmt.Errorf("browser did not expose a debugging endpoint on port %d: %w", p.port, ctx.Err())
		case <-exited:
			if p.exitErr != nil {
				return endpoint{}, fmt.Errorf("browser exited during startup: %w", p.exitErr)
			}
			handedOff = true
			exited = nil
			continue
		case <-ticker.C:
		}
	}
}

// readDevToolsActivePort returns the port recorded in the profile. The
// file holds the port on its first line and the browser target path on the
// second.
func readDevToolsActivePort(userDataDir string) (int, error) {
	if userDataDir == "" {
		return 0, fmt.Errorf("no user data dir")
	}
	f, err := os.Open(filepath.Join(userDataDir, devToolsActivePortFile))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%s is empty", devToolsActivePortFile)
	}
	port, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in %s: %q", devToolsActivePortFile, scanner.Text())
	}
	return port, nil
}

// kill stops a browser this launch started and waits for it to be reaped.
// A process that already exited, including one that handed off to a running
// instance, is left alone.
func (p *browserProcess) kill() {
	select {
	case <-p.exited:
		return
	default:
	}
	if p.process != nil {
		_ = killProcessTree(p.process)
	}
	select {
	case <-p.exited:
	case <-time.After(5 * time.Second):
	}
}

func fetchDebuggerURL(ctx context.Context, versionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("no webSocketDebuggerUrl in response")
	}
	return version.WebSocketDebuggerURL, nil
}
