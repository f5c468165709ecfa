package output

import (
	"context"
	"errors"
	"fmt"

	"rdsdash/internal/snapshot"
)

// Sink defines a destination for an export snapshot.
//
// Sinks only read the snapshot and must refuse one whose export version
// they do not implement (see snapshot.Supported).
type Sink interface {
	Write(ctx context.Context, s *snapshot.Snapshot) error
	Close() error
}

// Manager coordinates writing a snapshot to multiple sinks.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

// Len is the number of registered sinks.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sinks)
}

// Write hands s to every sink in registration order. A failing sink does
// not stop the others; all failures are returned joined.
func (m *Manager) Write(ctx context.Context, s *snapshot.Snapshot) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if err := snapshot.Supported(s); err != nil {
		return err
	}
	var errs []error
	for _, sink := range m.sinks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", sink, err))
			continue
		}
		if err := sink.Write(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", sink, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
