package port

import (
	"context"

	"github.com/anle/storefront/internal/core/domain"
)

type SessionStore interface {
	// Create stores the session and returns the opaque token the cookie carries.
	Create(ctx context.Context, session domain.Session) (string, error)

	// Get resolves a token, returning domain.ErrUnauthenticated for unknown
	// or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)

	Delete(ctx context.Context, token string) error
}
