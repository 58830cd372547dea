package transport

import (
	"sync"

	"github.com/entrhq/tabcloner/pkg/types"
)

// Mailbox holds at most one pending snapshot. A Put replaces whatever is
// waiting; Take empties the slot.
type Mailbox struct {
	mu   sync.Mutex
	snap *types.Snapshot
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Put stores snap and reports whether an unread snapshot was overwritten.
func (m *Mailbox) Put(snap *types.Snapshot) (replaced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced = m.snap != nil
	m.snap = snap
	return replaced
}

// Take returns the pending snapshot and clears the slot.
func (m *Mailbox) Take() (*types.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snap
	m.snap = nil
	return snap, snap != nil
}

// Pending reports whether a snapshot is waiting.
func (m *Mailbox) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap != nil
}
