// Package transport decides where a received snapshot goes: straight into
// the replication engine, or into a mailbox for a later pull.
package transport

import (
	"context"
	"fmt"

	"github.com/entrhq/tabcloner/pkg/types"
)

// Deliverer hands a snapshot to its destination and reports the outcome.
type Deliverer interface {
	Deliver(ctx context.Context, snap *types.Snapshot) types.Result
}

// Replicator is the subset of replicate.Engine used by Direct.
type Replicator interface {
	Replicate(ctx context.Context, snap *types.Snapshot) types.Result
}

// Direct replicates immediately.
type Direct struct {
	replicator Replicator
}

// NewDirect wraps r.
func NewDirect(r Replicator) *Direct {
	return &Direct{replicator: r}
}

// Deliver implements Deliverer.
func (d *Direct) Deliver(ctx context.Context, snap *types.Snapshot) types.Result {
	return d.replicator.Replicate(ctx, snap)
}

// MailboxDeliverer buffers snapshots for a later fetch.
type MailboxDeliverer struct {
	mailbox *Mailbox
}

// NewMailboxDeliverer stores into m.
func NewMailboxDeliverer(m *Mailbox) *MailboxDeliverer {
	return &MailboxDeliverer{mailbox: m}
}

// Deliver implements Deliverer. tabsCount counts every tab, grouped and
// ungrouped, before any filtering.
func (d *MailboxDeliverer) Deliver(_ context.Context, snap *types.Snapshot) types.Result {
	if snap == nil {
		return types.ErrorResult("No tab group data provided")
	}
	d.mailbox.Put(snap)

	groups, tabs := snap.GroupCount(), snap.TabCount()
	return types.StoredResult(
		fmt.Sprintf("Stored %d tabs from %d groups. Open Sidekick extension and click \"Fetch from Chrome\" to import.", tabs, groups),
		groups,
		tabs,
	)
}
