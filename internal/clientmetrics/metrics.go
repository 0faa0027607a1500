// Package clientmetrics tracks per-session transport counters for the JSON-RPC
// callers.
package clientmetrics

import (
	"sync"
)

// Metrics counts requests, responses, and transport errors for one session.
type Metrics struct {
	mu           sync.Mutex
	messagesSent int64
	messagesRecv int64
	bytesSent    int64
	bytesRecv    int64
	errors       int64
}

// New creates a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// IncrementSent increments messages sent and bytes sent counters.
func (m *Metrics) IncrementSent(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent++
	m.bytesSent += bytes
}

// IncrementReceived increments messages received and bytes received counters.
func (m *Metrics) IncrementReceived(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesRecv++
	m.bytesRecv += bytes
}

// IncrementErrors increments the error counter.
func (m *Metrics) IncrementErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

// Snapshot is a consistent point-in-time view of all counters.
type Snapshot struct {
	MessagesSent     int64
	MessagesReceived int64
	BytesSent        int64
	BytesReceived    int64
	Errors           int64
}

// Snapshot returns a consistent snapshot of all counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		MessagesSent:     m.messagesSent,
		MessagesReceived: m.messagesRecv,
		BytesSent:        m.bytesSent,
		BytesReceived:    m.bytesRecv,
		Errors:           m.errors,
	}
}
