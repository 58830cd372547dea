// Package host implements the native messaging request loop: read one
// framed request from the source browser, act on it, write one framed
// Result back, repeat until the browser closes the pipe.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/entrhq/tabcloner/pkg/logging"
	"github.com/entrhq/tabcloner/pkg/message"
	"github.com/entrhq/tabcloner/pkg/nativemsg"
	"github.com/entrhq/tabcloner/pkg/transport"
	"github.com/entrhq/tabcloner/pkg/types"
)

// ErrFatal is returned by Run after an unrecoverable internal fault. The
// process should exit non-zero.
var ErrFatal = errors.New("unrecoverable internal error")

// State is the lifecycle state of a Host.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a Host.
type Options struct {
	// MaxFrameSize bounds incoming and outgoing frames. Zero uses
	// nativemsg.DefaultMaxFrameSize.
	MaxFrameSize int

	Logger *logging.Logger
}

// Host serves requests sequentially over a pair of streams.
type Host struct {
	reader    *nativemsg.Reader
	writer    *nativemsg.Writer
	deliverer transport.Deliverer
	logger    *logging.Logger
	state     atomic.Int32
}

// New creates a host reading requests from r and writing Results to w.
func New(r io.Reader, w io.Writer, d transport.Deliverer, opts Options) *Host {
	reader := nativemsg.NewReader(r)
	writer := nativemsg.NewWriter(w)
	reader.SetMaxFrameSize(opts.MaxFrameSize)
	writer.SetMaxFrameSize(opts.MaxFrameSize)

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Host{
		reader:    reader,
		writer:    writer,
		deliverer: d,
		logger:    logger,
	}
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	return State(h.state.Load())
}

// Run serves requests until the input stream ends.
//
// A clean end of input returns nil. A malformed stream returns an error
// wrapping nativemsg.ErrMalformedStream; the loop never tries to resync.
// Internal faults and failed writes return an error wrapping ErrFatal.
func (h *Host) Run(ctx context.Context) error {
	h.state.Store(int32(StateRunning))
	defer h.state.Store(int32(StateStopped))

	h.logger.Infof("Native messaging host started")

	for {
		if err := ctx.Err(); err != nil {
			h.logger.Infof("Host stopping: %v", err)
			return err
		}

		payload, err := h.reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			h.logger.Infof("Input closed, host stopping")
			return nil
		}
		if err != nil {
			h.logger.Errorf("Failed to read request: %v", err)
			return fmt.Errorf("failed to read request: %w", err)
		}

		res, fault := h.handle(ctx, payload)

		if err := h.writer.WriteJSON(res); err != nil {
			h.logger.Errorf("Failed to write result: %v", err)
			return fmt.Errorf("%w: failed to write result: %v", ErrFatal, err)
		}
		if fault != nil {
			return fault
		}
	}
}

// handle turns one payload into one Result. A non-nil error means the
// process must stop after the Result is written.
func (h *Host) handle(ctx context.Context, payload []byte) (res types.Result, fault error) {
	id := uuid.NewString()
	logger := h.logger

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[%s] Internal error: %v", id, r)
			res = types.ErrorResult("Internal error: %v", r)
			fault = fmt.Errorf("%w: %v", ErrFatal, r)
		}
	}()

	logger.Infof("[%s] Received request (%d bytes)", id, len(payload))

	req, err := message.Parse(payload)
	if err != nil {
		var perr *message.ParseError
		if errors.As(err, &perr) {
			logger.Warnf("[%s] Invalid request: %s", id, perr.Details)
			return types.ErrorResult("Invalid request: %s", perr.Details), nil
		}
		logger.Errorf("[%s] Failed to parse request: %v", id, err)
		return types.ErrorResult("Failed to parse request: %v", err), nil
	}

	switch action := req.Action.(type) {
	case message.CloneToSidekick:
		if action.Snapshot == nil {
			logger.Warnf("[%s] %s request without data", id, action.Name())
			return types.ErrorResult("Invalid request: missing tab group data"), nil
		}
		logger.Infof("[%s] Cloning %d groups, %d tabs", id, action.Snapshot.GroupCount(), action.Snapshot.TabCount())
		res = h.deliverer.Deliver(ctx, action.Snapshot)
	case message.Unknown:
		logger.Warnf("[%s] Unknown action: %q", id, action.Action)
		res = types.ErrorResult("Unknown action: %s", action.Action)
	}

	logger.Infof("[%s] Result: %s", id, res.Status)
	return res, nil
}
