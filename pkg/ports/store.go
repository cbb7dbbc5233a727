package ports

import (
	"context"

	"github.com/aretw0/setter/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the sessions that have not expired.
	List(ctx context.Context) ([]string, error)
}

// HistoryStore is the per-session conversation log. Every write refreshes
// the session's expiry.
type HistoryStore interface {
	// Append adds messages to the end of the log.
	Append(ctx context.Context, sessionID string, msgs ...domain.Message) error

	// History returns the last limit messages in order. A limit of zero or
	// less returns the whole log. An unknown session yields an empty slice.
	History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Clear drops the log.
	Clear(ctx context.Context, sessionID string) error
}
