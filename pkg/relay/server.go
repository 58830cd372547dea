// Package relay is the polling alternative to direct replication. The
// source extension POSTs a request to the relay, which holds the snapshot
// in a single-slot mailbox until the destination side fetches it.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/entrhq/tabcloner/pkg/logging"
	"github.com/entrhq/tabcloner/pkg/message"
	"github.com/entrhq/tabcloner/pkg/transport"
	"github.com/entrhq/tabcloner/pkg/types"
)

const (
	// DefaultAddr matches the port the extensions poll.
	DefaultAddr = "127.0.0.1:8768"

	DefaultMaxConnections = 16
	DefaultMaxBodyBytes   = 32 << 20

	StatusEmpty   = "empty"
	StatusRunning = "running"

	shutdownTimeout = 5 * time.Second
)

// PendingResponse is the body of GET /pending.
type PendingResponse struct {
	Status  string          `json:"status"`
	Data    *types.Snapshot `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status         string `json:"status"`
	HasPendingData bool   `json:"hasPendingData"`
}

// Options configures a Server.
type Options struct {
	Addr           string
	MaxConnections int
	MaxBodyBytes   int64
	Logger         *logging.Logger
}

// Server serves the relay endpoints.
type Server struct {
	mailbox   *transport.Mailbox
	deliverer *transport.MailboxDeliverer
	opts      Options
	logger    *logging.Logger
}

// NewServer creates a relay server buffering into mb.
func NewServer(mb *transport.Mailbox, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = DefaultMaxConnections
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		mailbox:   mb,
		deliverer: transport.NewMailboxDeliverer(mb),
		opts:      opts,
		logger:    logger,
	}
}

// Handler returns the relay's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pending", s.handlePending)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	return s.withLogging(cors(mux))
}

// ListenAndServe listens on the configured address and serves until ctx
// is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. At most
// MaxConnections are served at once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.logger.Infof("Relay listening on http://%s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(netutil.LimitListener(ln, s.opts.MaxConnections))
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		s.logger.Infof("Relay stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handlePending(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.mailbox.Take()
	if !ok {
		writeJSON(w, http.StatusOK, PendingResponse{Status: StatusEmpty, Message: "No pending tab data"})
		return
	}
	s.logger.Infof("Served pending tab data (%d groups, %d tabs)", snap.GroupCount(), snap.TabCount())
	writeJSON(w, http.StatusOK, PendingResponse{Status: types.StatusSuccess, Data: snap})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: StatusRunning, HasPendingData: s.mailbox.Pending()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, types.ErrorResult("request body exceeds %d bytes", maxErr.Limit))
			return
		}
		s.logger.Errorf("Failed to read request body: %v", err)
		writeJSON(w, http.StatusInternalServerError, types.ErrorResult("%v", err))
		return
	}

	req, err := message.Parse(body)
	if err != nil {
		s.logger.Errorf("Rejected request: %v", err)
		writeJSON(w, http.StatusInternalServerError, types.ErrorResult("%v", err))
		return
	}
	s.logger.Infof("Received request: %s", req.Action.Name())

	clone, ok := req.Action.(message.CloneToSidekick)
	if !ok {
		writeJSON(w, http.StatusBadRequest, types.ErrorResult("Unknown action: %s", req.Action.Name()))
		return
	}
	if clone.Snapshot == nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResult("Invalid request: missing tab group data"))
		return
	}

	if s.mailbox.Pending() {
		s.logger.Warnf("Replacing unfetched tab data")
	}
	res := s.deliverer.Deliver(r.Context(), clone.Snapshot)
	s.logger.Infof("Stored %d groups with %d tabs", clone.Snapshot.GroupCount(), clone.Snapshot.TabCount())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debugf("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// cors allows any origin; the relay only binds to loopback by default.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
