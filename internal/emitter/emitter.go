// Package emitter provides output sinks for Virta record sets.
package emitter

import (
	"context"

	"github.com/yairfalse/virta/pkg/record"
)

// Sink transmits record sets to a backend.
type Sink interface {
	// Emit sends one record set. Each set is consumed exactly once.
	Emit(ctx context.Context, set record.Set) error

	// Close releases the backend channel.
	Close() error
}

// MultiSink fans out to multiple sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that sends to multiple backends.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit sends to all sinks, returns the first error.
func (m *MultiSink) Emit(ctx context.Context, set record.Set) error {
	for _, s := range m.sinks {
		if err := s.Emit(ctx, set); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
