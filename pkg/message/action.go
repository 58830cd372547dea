// Package message turns native message payloads into typed requests.
package message

import "github.com/entrhq/tabcloner/pkg/types"

// ActionCloneToSidekick is the wire name of the clone action.
const ActionCloneToSidekick = "cloneToSidekick"

// Action is the closed set of request actions. Implementations live in this
// package only; dispatchers switch over the concrete types.
type Action interface {
	// Name returns the action as it appeared on the wire.
	Name() string
	isAction()
}

// CloneToSidekick asks for the snapshot to be replicated in the
// destination browser. Snapshot is nil when the request carried no data.
type CloneToSidekick struct {
	Snapshot *types.Snapshot
}

// Name implements Action.
func (CloneToSidekick) Name() string { return ActionCloneToSidekick }

func (CloneToSidekick) isAction() {}

// Unknown is any action this build does not understand.
type Unknown struct {
	Action string
}

// Name implements Action.
func (u Unknown) Name() string { return u.Action }

func (Unknown) isAction() {}
