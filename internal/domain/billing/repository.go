package billing

import (
	"context"

	"github.com/google/uuid"
)

// SessionRepository persists billing sessions for split-bill flows.
type SessionRepository interface {
	// FindByID loads a session. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// FindBySelection returns all sessions partitioning a selection
	FindBySelection(ctx context.Context, selectionID uuid.UUID) ([]*Session, error)
	// Save persists the session state
	Save(ctx context.Context, session *Session) error
	// Delete removes a session, returning its items to the unassigned pool
	Delete(ctx context.Context, id uuid.UUID) error
}
