package handlers

import (
	"context"

	"github.com/secretpages/backend/internal/models"
	"github.com/secretpages/backend/internal/secrets"
)

// ProfileStore captures the persistence operations required by the auth and
// friend handlers.
type ProfileStore interface {
	Upsert(ctx context.Context, profile models.Profile) error
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	FindByID(ctx context.Context, id string) (models.Profile, error)
}

// SecretStore captures persistence for per-user secrets.
type SecretStore interface {
	Upsert(ctx context.Context, secret models.Secret) error
	FindByUser(ctx context.Context, userID string) (models.Secret, error)
}

// FriendStore captures operations required by the friend handlers.
type FriendStore interface {
	CreateRequest(ctx context.Context, friendship models.Friendship) error
	Accept(ctx context.Context, requestID, addresseeID string) error
	ListForUser(ctx context.Context, userID string) ([]models.Friendship, error)
	AcceptedBetween(ctx context.Context, userA, userB string) (bool, error)
}

// SessionManager issues, verifies, and refreshes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error)
	Verify(ctx context.Context, accessToken string) (models.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// AccountAdmin performs privileged account deletion. A nil AccountAdmin on
// the handler means the service credential is not configured and the
// endpoint must fail closed.
type AccountAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
}

// SecretEvents is the typed in-process signal connecting the secret editor
// to its viewers.
type SecretEvents interface {
	Publish(userID string) uint64
	Subscribe(userID string) (<-chan secrets.Update, func())
}
