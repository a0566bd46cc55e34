package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/survey/pkg/domain"
	"github.com/aescanero/survey/pkg/ports"
	"go.uber.org/zap"
)

// SessionStore implements ports.SessionStore using an in-memory map.
// Entries expire after ttl; a sweeper evicts them periodically.
type SessionStore struct {
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]entry
	now      func() time.Time

	running bool
	stopCh  chan struct{}
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// NewSessionStore creates a new in-memory session store
func NewSessionStore(ttl time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

// Load retrieves a session
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, ports.ErrSessionNotFound
	}

	// Stored as JSON so callers never share a slice with the store
	var session domain.Session
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrSessionCorrupt, err)
	}

	return &session, nil
}

// Save stores a session and refreshes its TTL
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = entry{
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Exists checks if a live session is stored
func (s *SessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	return ok && !s.expired(e), nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Start starts the expiry sweeper. It may be started again after Stop.
func (s *SessionStore) Start(interval time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.mu.Unlock()

	go s.run(interval, stopCh)
}

// Stop stops the expiry sweeper
func (s *SessionStore) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	s.stopCh = nil
	s.mu.Unlock()

	close(stopCh)
}

// run is the sweeper loop
func (s *SessionStore) run(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep evicts expired sessions and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("expired sessions swept",
			zap.Int("removed", removed),
			zap.Int("remaining", len(s.sessions)))
	}

	return removed
}

func (s *SessionStore) expired(e entry) bool {
	return !s.now().Before(e.expiresAt)
}
