// Package logging defines the leveled log sink the rest of rpcsurge writes to.
package logging

import (
	"fmt"
	"io"
	"sync"
)

// Sink accepts leveled log messages. Components emit through it and never
// branch on level; routing and filtering belong to the concrete sink.
type Sink interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// NopSink discards everything. It is the default wherever no sink is injected.
type NopSink struct{}

func (NopSink) Errorf(string, ...any) {}
func (NopSink) Warnf(string, ...any)  {}
func (NopSink) Infof(string, ...any)  {}
func (NopSink) Debugf(string, ...any) {}

// WriterSink writes one line per message to an io.Writer, prefixed with the
// level tag. Safe for concurrent use.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink. A nil writer yields a sink that discards.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = io.Discard
	}
	return &WriterSink{w: w}
}

func (s *WriterSink) Errorf(format string, args ...any) { s.emit("ERROR", format, args) }
func (s *WriterSink) Warnf(format string, args ...any)  { s.emit("WARN", format, args) }
func (s *WriterSink) Infof(format string, args ...any)  { s.emit("INFO", format, args) }
func (s *WriterSink) Debugf(format string, args ...any) { s.emit("DEBUG", format, args) }

func (s *WriterSink) emit(level, format string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s\n", level, fmt.Sprintf(format, args...))
}
