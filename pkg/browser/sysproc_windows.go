//go:build windows

package browser

import (
	"os"
	"syscall"
)

// createBreakawayFromJob lets the browser leave the job object Chrome puts
// native hosts in, so it is not killed with the host.
const createBreakawayFromJob = 0x01000000

func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | createBreakawayFromJob,
	}
}

func killProcessTree(p *os.Process) error {
	return p.Kill()
}
