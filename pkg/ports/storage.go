package ports

import (
	"context"
	"errors"

	"github.com/aescanero/survey/pkg/domain"
)

// ErrSessionNotFound is returned when a session is missing or expired
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCorrupt is returned when a stored session cannot be decoded
var ErrSessionCorrupt = errors.New("session corrupt")

// SessionStore persists per-user survey sessions
type SessionStore interface {
	// Load returns the session, ErrSessionNotFound or ErrSessionCorrupt
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Save stores the session and refreshes its TTL
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes the session
	Delete(ctx context.Context, sessionID string) error

	// Exists reports whether a live session is stored under sessionID
	Exists(ctx context.Context, sessionID string) (bool, error)
}
