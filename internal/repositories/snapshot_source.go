package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/secretpages/backend/internal/backup"
	"github.com/secretpages/backend/internal/db"
	"github.com/secretpages/backend/internal/models"
)

// PostgresSnapshotSource reads full-table snapshots for the backup exporter.
type PostgresSnapshotSource struct {
	pool db.Pool
}

// NewPostgresSnapshotSource constructs a snapshot source backed by PostgreSQL.
func NewPostgresSnapshotSource(pool db.Pool) *PostgresSnapshotSource {
	return &PostgresSnapshotSource{pool: pool}
}

// Snapshot reads every profile, secret, and friendship row.
func (s *PostgresSnapshotSource) Snapshot(ctx context.Context) (backup.Snapshot, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	snapshot := backup.Snapshot{TakenAt: time.Now().UTC()}

	rows, err := conn.Query(ctx, `
        SELECT id, email, display_name, password_hash, created_at, updated_at
        FROM profiles
        ORDER BY created_at
    `)
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("query profiles: %w", err)
	}
	for rows.Next() {
		var profile models.Profile
		var displayName sql.NullString
		if err := rows.Scan(&profile.ID, &profile.Email, &displayName, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			rows.Close()
			return backup.Snapshot{}, fmt.Errorf("scan profile: %w", err)
		}
		profile.DisplayName = displayName.String
		snapshot.Profiles = append(snapshot.Profiles, profile)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return backup.Snapshot{}, fmt.Errorf("iterate profiles: %w", err)
	}

	rows, err = conn.Query(ctx, `
        SELECT user_id, content, updated_at
        FROM secrets
        ORDER BY user_id
    `)
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("query secrets: %w", err)
	}
	for rows.Next() {
		var secret models.Secret
		if err := rows.Scan(&secret.UserID, &secret.Content, &secret.UpdatedAt); err != nil {
			rows.Close()
			return backup.Snapshot{}, fmt.Errorf("scan secret: %w", err)
		}
		snapshot.Secrets = append(snapshot.Secrets, secret)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return backup.Snapshot{}, fmt.Errorf("iterate secrets: %w", err)
	}

	rows, err = conn.Query(ctx, `
        SELECT id, requester_id, addressee_id, status, created_at, responded_at
        FROM friends
        ORDER BY created_at
    `)
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("query friendships: %w", err)
	}
	for rows.Next() {
		var friendship models.Friendship
		var respondedAt sql.NullTime
		if err := rows.Scan(&friendship.ID, &friendship.RequesterID, &friendship.AddresseeID, &friendship.Status, &friendship.CreatedAt, &respondedAt); err != nil {
			rows.Close()
			return backup.Snapshot{}, fmt.Errorf("scan friendship: %w", err)
		}
		if respondedAt.Valid {
			t := respondedAt.Time.UTC()
			friendship.RespondedAt = &t
		}
		snapshot.Friendships = append(snapshot.Friendships, friendship)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return backup.Snapshot{}, fmt.Errorf("iterate friendships: %w", err)
	}

	return snapshot, nil
}

var _ backup.SnapshotSource = (*PostgresSnapshotSource)(nil)
