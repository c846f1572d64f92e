package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/secretpages/backend/internal/db"
)

// PostgresAccountAdmin performs the privileged, irreversible removal of an
// account. Deleting the profile row cascades to the user's secret,
// friendships, and sessions via foreign keys. Construction requires the
// operator-provisioned service key: the key unlocks nothing in the database
// itself, it is the explicit grant that this deployment may destroy
// accounts. Without it the deletion endpoint stays unwired and fails closed.
type PostgresAccountAdmin struct {
	pool db.Pool
}

// NewPostgresAccountAdmin constructs the privileged account deleter.
func NewPostgresAccountAdmin(pool db.Pool, serviceKey string) (*PostgresAccountAdmin, error) {
	if serviceKey == "" {
		return nil, errors.New("account admin: service key is required")
	}
	return &PostgresAccountAdmin{pool: pool}, nil
}

// DeleteUser removes the account and every dependent row.
func (a *PostgresAccountAdmin) DeleteUser(ctx context.Context, userID string) error {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM profiles
        WHERE id = $1
    `, userID)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", userID, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
