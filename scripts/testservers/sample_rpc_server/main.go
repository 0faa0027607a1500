// Sample JSON-RPC server implementing the session handshake protocol over
// HTTP and WebSocket. Intended for exercising rpcsurge locally:
//
//	go run ./scripts/testservers/sample_rpc_server -mode http -port 8080
//	rpcsurge --target http://localhost:8080/rpc
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type serverMode string

const (
	modeHTTP      serverMode = "http"
	modeWebSocket serverMode = "websocket"
)

const protocolVersion = "2025-06-18"

func main() {
	mode := flag.String("mode", "http", "Server mode: http, websocket")
	port := flag.Int("port", 0, "Listening port")
	maxDelay := flag.Duration("max-delay", 20*time.Millisecond, "Upper bound for simulated per-call latency")
	errorRate := flag.Float64("error-rate", 0, "Fraction of calls answered with a JSON-RPC error (0..1)")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	srv := &rpcServer{
		sessions:  make(map[string]bool),
		maxDelay:  *maxDelay,
		errorRate: *errorRate,
	}

	switch serverMode(*mode) {
	case modeHTTP:
		log.Fatal(runHTTPServer(*port, srv))
	case modeWebSocket:
		log.Fatal(runWebSocketServer(*port, srv))
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

type rpcServer struct {
	mu        sync.Mutex
	sessions  map[string]bool
	counter   int64
	maxDelay  time.Duration
	errorRate float64
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (s *rpcServer) handle(req rpcRequest) rpcResponse {
	if s.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(s.maxDelay))))
	}
	if s.errorRate > 0 && rand.Float64() < s.errorRate {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32000, Message: "injected failure"}}
	}

	switch req.Method {
	case "session.initialize":
		var params struct {
			ClientName      string `json:"client_name"`
			ProtocolVersion string `json:"protocol_version"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "invalid params"}}
		}
		if params.ProtocolVersion != protocolVersion {
			return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
				Code:    -32602,
				Message: fmt.Sprintf("unsupported protocol version %q", params.ProtocolVersion),
			}}
		}
		s.mu.Lock()
		s.counter++
		sessionID := fmt.Sprintf("sess-%d-%d", s.counter, time.Now().UnixNano())
		s.sessions[sessionID] = true
		s.mu.Unlock()
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"session_id":       sessionID,
			"protocol_version": protocolVersion,
		}}

	case "session.acknowledge":
		if resp, ok := s.requireSession(req); !ok {
			return resp
		}
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"acknowledged": true}}

	case "operations.list":
		if resp, ok := s.requireSession(req); !ok {
			return resp
		}
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"operations": []map[string]any{
				{"name": "echo", "description": "Echo the input back"},
				{"name": "compute", "description": "Run a sample computation"},
			},
		}}

	default:
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}}
	}
}

func (s *rpcServer) requireSession(req rpcRequest) (rpcResponse, bool) {
	var params struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.SessionID == "" {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "session_id required"}}, false
	}
	s.mu.Lock()
	known := s.sessions[params.SessionID]
	s.mu.Unlock()
	if !known {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32001, Message: "unknown session"}}, false
	}
	return rpcResponse{}, true
}

func runHTTPServer(port int, srv *rpcServer) error {
	mux := http.NewServeMux()
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(srv.handle(req))
	}
	mux.HandleFunc("/rpc", handler)
	mux.HandleFunc("/", handler)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("sample JSON-RPC HTTP server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func runWebSocketServer(port int, srv *rpcServer) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		go handleConn(conn, srv)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("sample JSON-RPC WebSocket server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func handleConn(conn *websocket.Conn, srv *rpcServer) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		resp, err := json.Marshal(srv.handle(req))
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
			return
		}
	}
}
