//go:build !unix && !windows

package browser

import (
	"os"
	"syscall"
)

func detachedProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcessTree(p *os.Process) error {
	return p.Kill()
}
