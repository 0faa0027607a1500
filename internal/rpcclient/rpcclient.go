// Package rpcclient implements the JSON-RPC 2.0 wire client rpcsurge drives
// load through. A [Caller] provisions per-client [Session] handles and exposes
// the three-call workflow contract: initialize, acknowledge, list operations.
package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mkrell/rpcsurge/internal/clientmetrics"
)

// ProtocolVersion is sent with session.initialize.
const ProtocolVersion = "2025-06-18"

// JSON-RPC method names for the fixed workflow.
const (
	MethodInitialize     = "session.initialize"
	MethodAcknowledge    = "session.acknowledge"
	MethodListOperations = "operations.list"
)

// Caller performs single request/response exchanges against the remote
// service. Implementations exist for HTTP and WebSocket transports. Each call
// blocks until the exchange completes or the context is canceled; no timeout
// is imposed here beyond what the transport configuration carries.
type Caller interface {
	// NewSession provisions a fresh client handle. For connection-oriented
	// transports this dials the remote service.
	NewSession(ctx context.Context, id int) (*Session, error)

	Initialize(ctx context.Context, s *Session) error
	Acknowledge(ctx context.Context, s *Session) error
	ListOperations(ctx context.Context, s *Session) error
}

// Session is one simulated caller's handle: its id, the session token obtained
// from a successful initialize, the JSON-RPC id sequence, and any transport
// connection state. A session executes at most one workflow at a time.
type Session struct {
	ID int

	mu    sync.Mutex
	token string
	seq   int64
	conn  closer
	stats *clientmetrics.Metrics
}

type closer interface {
	Close() error
}

func newSession(id int) *Session {
	return &Session{ID: id, stats: clientmetrics.New()}
}

// Token returns the session token obtained during initialize, if any.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Stats exposes the session's transport counters.
func (s *Session) Stats() clientmetrics.Snapshot {
	return s.stats.Snapshot()
}

// Close releases any transport state owned by the session.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// RPCError is a structured JSON-RPC error response.
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPError represents a transport-level HTTP failure with status details.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func encodeRequest(id int64, method string, params any) ([]byte, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}
	return body, nil
}

type initializeParams struct {
	ClientName      string `json:"client_name"`
	ProtocolVersion string `json:"protocol_version"`
}

type sessionParams struct {
	SessionID string `json:"session_id"`
}
