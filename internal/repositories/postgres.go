package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/secretpages/backend/internal/db"
	"github.com/secretpages/backend/internal/models"
)

// PostgresProfileRepository provides PostgreSQL-backed persistence for profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Upsert writes the profile record keyed by user id, overwriting the display
// name and email on re-registration. A clash on another account's email maps
// to ErrConflict.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, profile models.Profile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (id, email, display_name, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id)
        DO UPDATE SET email = EXCLUDED.email,
                      display_name = EXCLUDED.display_name,
                      password_hash = EXCLUDED.password_hash,
                      updated_at = EXCLUDED.updated_at
    `, profile.ID, profile.Email, profile.DisplayName, profile.PasswordHash, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// FindByEmail fetches a profile by its normalized email address.
func (r *PostgresProfileRepository) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, display_name, password_hash, created_at, updated_at
        FROM profiles
        WHERE email = $1
    `, email)

	return scanProfile(row)
}

// FindByID fetches a profile by user id.
func (r *PostgresProfileRepository) FindByID(ctx context.Context, id string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, display_name, password_hash, created_at, updated_at
        FROM profiles
        WHERE id = $1
    `, id)

	return scanProfile(row)
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	var displayName sql.NullString
	if err := row.Scan(&profile.ID, &profile.Email, &displayName, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	profile.DisplayName = displayName.String
	return profile, nil
}

// PostgresSecretRepository provides PostgreSQL-backed persistence for secrets.
type PostgresSecretRepository struct {
	pool db.Pool
}

// NewPostgresSecretRepository constructs a secret repository backed by PostgreSQL.
func NewPostgresSecretRepository(pool db.Pool) *PostgresSecretRepository {
	return &PostgresSecretRepository{pool: pool}
}

// Upsert writes the user's single secret row. Re-saving identical content is
// a no-op write and still succeeds.
func (r *PostgresSecretRepository) Upsert(ctx context.Context, secret models.Secret) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO secrets (user_id, content, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id)
        DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
    `, secret.UserID, secret.Content, secret.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert secret: %w", err)
	}

	return nil
}

// FindByUser fetches the secret stored for a user. ErrNotFound means the
// user has not written one yet.
func (r *PostgresSecretRepository) FindByUser(ctx context.Context, userID string) (models.Secret, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Secret{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT user_id, content, updated_at
        FROM secrets
        WHERE user_id = $1
    `, userID)

	var secret models.Secret
	if err := row.Scan(&secret.UserID, &secret.Content, &secret.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Secret{}, ErrNotFound
		}
		return models.Secret{}, fmt.Errorf("select secret: %w", err)
	}

	return secret, nil
}

// PostgresFriendRepository provides PostgreSQL-backed persistence for friendships.
type PostgresFriendRepository struct {
	pool db.Pool
}

// NewPostgresFriendRepository constructs a friend repository backed by PostgreSQL.
func NewPostgresFriendRepository(pool db.Pool) *PostgresFriendRepository {
	return &PostgresFriendRepository{pool: pool}
}

// CreateRequest persists a new pending friendship. The schema's pair index
// rejects a second row linking the same two users in either direction.
func (r *PostgresFriendRepository) CreateRequest(ctx context.Context, friendship models.Friendship) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friends (id, requester_id, addressee_id, status, created_at, responded_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, friendship.ID, friendship.RequesterID, friendship.AddresseeID, friendship.Status, friendship.CreatedAt, friendship.RespondedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505", "23514":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert friendship: %w", err)
	}

	return nil
}

// Accept flips a pending request to accepted. The update is scoped to the
// addressee recorded on the row, so a requester cannot accept their own
// request; any mismatch reports ErrNotFound.
func (r *PostgresFriendRepository) Accept(ctx context.Context, requestID, addresseeID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE friends
        SET status = $3, responded_at = NOW()
        WHERE id = $1 AND addressee_id = $2 AND status = $4
    `, requestID, addresseeID, models.FriendStatusAccepted, models.FriendStatusPending)
	if err != nil {
		return fmt.Errorf("accept friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForUser returns friendships where the user is requester or addressee.
func (r *PostgresFriendRepository) ListForUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, requester_id, addressee_id, status, created_at, responded_at
        FROM friends
        WHERE requester_id = $1 OR addressee_id = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []models.Friendship
	for rows.Next() {
		var (
			friendship  models.Friendship
			respondedAt sql.NullTime
		)

		if err := rows.Scan(&friendship.ID, &friendship.RequesterID, &friendship.AddresseeID, &friendship.Status, &friendship.CreatedAt, &respondedAt); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}

		if respondedAt.Valid {
			t := respondedAt.Time.UTC()
			friendship.RespondedAt = &t
		}

		friendships = append(friendships, friendship)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships: %w", err)
	}

	return friendships, nil
}

// AcceptedBetween reports whether an accepted friendship links the two users
// in either direction. This is the disclosure check for friend secrets.
func (r *PostgresFriendRepository) AcceptedBetween(ctx context.Context, userA, userB string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
            FROM friends
            WHERE status = $3
              AND ((requester_id = $1 AND addressee_id = $2)
                OR (requester_id = $2 AND addressee_id = $1))
        )
    `, userA, userB, models.FriendStatusAccepted)

	var accepted bool
	if err := row.Scan(&accepted); err != nil {
		return false, fmt.Errorf("select accepted friendship: %w", err)
	}

	return accepted, nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
var _ SecretRepository = (*PostgresSecretRepository)(nil)
var _ FriendRepository = (*PostgresFriendRepository)(nil)
