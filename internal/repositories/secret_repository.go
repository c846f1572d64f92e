package repositories

import (
	"context"

	"github.com/secretpages/backend/internal/models"
)

// SecretRepository defines data access for per-user secrets.
type SecretRepository interface {
	Upsert(ctx context.Context, secret models.Secret) error
	FindByUser(ctx context.Context, userID string) (models.Secret, error)
}
