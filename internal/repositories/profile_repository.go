package repositories

import (
	"context"

	"github.com/secretpages/backend/internal/models"
)

// ProfileRepository defines the data access contract for profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile models.Profile) error
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	FindByID(ctx context.Context, id string) (models.Profile, error)
}
