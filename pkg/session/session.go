// Package session manages browser session lifecycle. Every flow run
// acquires a fresh session and releases it exactly once; sessions are
// never shared or pooled.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
)

// Session is one live browser, owned by the flow that acquired it.
type Session struct {
	ID     string
	Driver core.Driver

	mu       sync.Mutex
	released bool
}

// Released reports whether the session has been given back.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Factory builds a fresh driver for each session.
type Factory func() (core.Driver, error)

// Manager acquires and releases sessions over a driver factory.
type Manager struct {
	factory Factory
}

// NewManager creates a Manager producing sessions from the factory.
func NewManager(factory Factory) *Manager {
	return &Manager{factory: factory}
}

// Acquire starts a new browser session. Driver start-up failures are
// wrapped as session acquire errors; the caller gets no half-open
// session to clean up.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.ErrSessionAcquire.WithCause(err)
	}

	drv, err := m.factory()
	if err != nil {
		return nil, core.ErrSessionAcquire.WithCause(err)
	}

	sess := &Session{
		ID:     uuid.NewString()[:8],
		Driver: drv,
	}
	logger.Info("session %s acquired (%s)", sess.ID, drv.Info().Name)
	return sess, nil
}

// Release quits the session's browser. Safe to call more than once;
// only the first call quits. Quit failures are logged, not returned,
// since nothing can act on a browser that failed to die.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	if err := s.Driver.Quit(); err != nil {
		logger.Warn("session %s quit failed: %v", s.ID, err)
	} else {
		logger.Info("session %s released", s.ID)
	}
}
