package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/mkrell/rpcsurge/internal/clientmetrics"
)

// WSOptions configures the WebSocket transport.
type WSOptions struct {
	URL              string
	Headers          http.Header
	HandshakeTimeout time.Duration
	ReceiveTimeout   time.Duration
	ClientName       string
}

// WSCaller speaks JSON-RPC over a per-session WebSocket connection. Each
// session owns its own connection; NewSession dials it.
type WSCaller struct {
	url            string
	headers        http.Header
	clientName     string
	dialer         *websocket.Dialer
	receiveTimeout time.Duration
}

// NewWSCaller creates a WebSocket caller.
func NewWSCaller(opts WSOptions) (*WSCaller, error) {
	if opts.URL == "" {
		return nil, errors.New("target endpoint is required")
	}
	if opts.HandshakeTimeout == 0 {
		opts.HandshakeTimeout = 30 * time.Second
	}
	if opts.ReceiveTimeout == 0 {
		opts.ReceiveTimeout = 10 * time.Second
	}
	name := opts.ClientName
	if name == "" {
		name = "rpcsurge"
	}
	return &WSCaller{
		url:        opts.URL,
		headers:    opts.Headers,
		clientName: name,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
			Proxy:            http.ProxyFromEnvironment,
		},
		receiveTimeout: opts.ReceiveTimeout,
	}, nil
}

// NewSession dials a dedicated connection for the handle.
func (c *WSCaller) NewSession(ctx context.Context, id int) (*Session, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	s := newSession(id)
	s.conn = &wsConn{conn: conn, stats: s.stats, receiveTimeout: c.receiveTimeout}
	return s, nil
}

func (c *WSCaller) Initialize(ctx context.Context, s *Session) error {
	result, err := c.call(ctx, s, MethodInitialize, initializeParams{
		ClientName:      c.clientName,
		ProtocolVersion: ProtocolVersion,
	})
	if err != nil {
		return err
	}
	s.setToken(result.Get("session_id").String())
	return nil
}

func (c *WSCaller) Acknowledge(ctx context.Context, s *Session) error {
	_, err := c.call(ctx, s, MethodAcknowledge, sessionParams{SessionID: s.Token()})
	return err
}

func (c *WSCaller) ListOperations(ctx context.Context, s *Session) error {
	_, err := c.call(ctx, s, MethodListOperations, sessionParams{SessionID: s.Token()})
	return err
}

func (c *WSCaller) call(ctx context.Context, s *Session, method string, params any) (gjson.Result, error) {
	conn, ok := s.conn.(*wsConn)
	if !ok || conn == nil {
		return gjson.Result{}, errors.New("session is not connected")
	}

	id := s.nextID()
	body, err := encodeRequest(id, method, params)
	if err != nil {
		return gjson.Result{}, err
	}

	data, err := conn.roundTrip(ctx, id, body)
	if err != nil {
		return gjson.Result{}, err
	}
	return decodeResponse(data, s)
}

// wsConn serializes access to one websocket connection. A session runs one
// workflow at a time, so the lock only guards against teardown races.
type wsConn struct {
	mu             sync.Mutex
	conn           *websocket.Conn
	stats          *clientmetrics.Metrics
	receiveTimeout time.Duration
}

// roundTrip writes one request frame and reads frames until the response with
// the matching id arrives. Unsolicited frames (notifications) are skipped.
func (w *wsConn) roundTrip(ctx context.Context, id int64, body []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil, errors.New("not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(w.receiveTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = w.conn.SetWriteDeadline(deadline)
	if err := w.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		w.stats.IncrementErrors()
		return nil, fmt.Errorf("write message: %w", err)
	}
	w.stats.IncrementSent(int64(len(body)))

	for {
		_ = w.conn.SetReadDeadline(deadline)
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			w.stats.IncrementErrors()
			return nil, fmt.Errorf("read message: %w", err)
		}
		w.stats.IncrementReceived(int64(len(data)))
		if gjson.GetBytes(data, "id").Int() == id {
			return data, nil
		}
	}
}

// Close sends a close frame and tears the connection down.
func (w *wsConn) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}

	err := w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second),
	)

	closeErr := w.conn.Close()
	w.conn = nil

	if err != nil {
		return err
	}
	return closeErr
}
