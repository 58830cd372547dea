//go:build unix

package browser

import (
	"os"
	"syscall"
)

// detachedProcAttr puts the browser in its own process group so signals sent
// to the host's group do not reach it.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessTree kills the browser's process group, renderers included.
func killProcessTree(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		return p.Kill()
	}
	return nil
}
