package rpcclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxErrorBodyBytes = 1024

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	Endpoint   string
	Headers    http.Header
	Timeout    time.Duration // per-request timeout; 0 means none
	ClientName string
}

// HTTPCaller speaks JSON-RPC over HTTP POST. Sessions are cheap: connection
// reuse is handled by the shared http.Client transport.
type HTTPCaller struct {
	endpoint   string
	headers    http.Header
	clientName string
	client     *http.Client
}

// NewHTTPCaller creates an HTTP caller with a tuned transport.
func NewHTTPCaller(opts HTTPOptions) (*HTTPCaller, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("target endpoint is required")
	}
	name := opts.ClientName
	if name == "" {
		name = "rpcsurge"
	}
	return &HTTPCaller{
		endpoint:   endpoint,
		headers:    opts.Headers,
		clientName: name,
		client:     newHTTPClient(opts.Timeout),
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// NewSession provisions a handle. No network round-trip happens until the
// first workflow step.
func (c *HTTPCaller) NewSession(_ context.Context, id int) (*Session, error) {
	return newSession(id), nil
}

// Initialize performs the handshake and stores the returned session token on
// the handle.
func (c *HTTPCaller) Initialize(ctx context.Context, s *Session) error {
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

// Acknowledge confirms the handshake for the session.
func (c *HTTPCaller) Acknowledge(ctx context.Context, s *Session) error {
	_, err := c.call(ctx, s, MethodAcknowledge, sessionParams{SessionID: s.Token()})
	return err
}

// ListOperations fetches the operation catalog for the session.
func (c *HTTPCaller) ListOperations(ctx context.Context, s *Session) error {
	_, err := c.call(ctx, s, MethodListOperations, sessionParams{SessionID: s.Token()})
	return err
}

func (c *HTTPCaller) call(ctx context.Context, s *Session, method string, params any) (gjson.Result, error) {
	body, err := encodeRequest(s.nextID(), method, params)
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	s.stats.IncrementSent(int64(len(body)))
	resp, err := c.client.Do(req)
	if err != nil {
		s.stats.IncrementErrors()
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		s.stats.IncrementErrors()
		return gjson.Result{}, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.stats.IncrementErrors()
		return gjson.Result{}, err
	}
	s.stats.IncrementReceived(int64(len(data)))

	return decodeResponse(data, s)
}

// decodeResponse splits a JSON-RPC response into result or structured error.
func decodeResponse(data []byte, s *Session) (gjson.Result, error) {
	if rpcErr := gjson.GetBytes(data, "error"); rpcErr.Exists() {
		s.stats.IncrementErrors()
		return gjson.Result{}, &RPCError{
			Code:    rpcErr.Get("code").Int(),
			Message: rpcErr.Get("message").String(),
		}
	}
	return gjson.GetBytes(data, "result"), nil
}
