package repositories

import (
	"context"

	"github.com/secretpages/backend/internal/models"
)

// FriendRepository defines data access for friendship rows.
type FriendRepository interface {
	CreateRequest(ctx context.Context, friendship models.Friendship) error
	Accept(ctx context.Context, requestID, addresseeID string) error
	ListForUser(ctx context.Context, userID string) ([]models.Friendship, error)
	AcceptedBetween(ctx context.Context, userA, userB string) (bool, error)
}
