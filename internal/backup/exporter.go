package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/secretpages/backend/internal/models"
)

// Snapshot is a point-in-time copy of the service's tables.
type Snapshot struct {
	TakenAt     time.Time           `json:"takenAt"`
	Profiles    []models.Profile    `json:"profiles"`
	Secrets     []models.Secret     `json:"secrets"`
	Friendships []models.Friendship `json:"friendships"`
}

// SnapshotSource produces a consistent snapshot of the stored tables.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// SnapshotStorage persists an encoded snapshot archive.
type SnapshotStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Exporter dumps a snapshot to object storage. Row counts are logged; row
// contents are not.
type Exporter struct {
	source  SnapshotSource
	storage SnapshotStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewExporter constructs an Exporter over the provided source and storage.
func NewExporter(source SnapshotSource, storage SnapshotStorage, logger *slog.Logger) *Exporter {
	if source == nil {
		panic("backup: snapshot source must not be nil")
	}
	if storage == nil {
		panic("backup: snapshot storage must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		source:  source,
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run takes a snapshot, encodes it, and uploads it under a timestamped key.
// It returns the storage key of the written archive.
func (e *Exporter) Run(ctx context.Context) (string, error) {
	snapshot, err := e.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("take snapshot: %w", err)
	}
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = e.now()
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := fmt.Sprintf("secretpages-%s.json", snapshot.TakenAt.Format("20060102T150405Z"))
	key, err := e.storage.Save(ctx, name, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}

	e.logger.Info("snapshot uploaded",
		"key", key,
		"profiles", len(snapshot.Profiles),
		"secrets", len(snapshot.Secrets),
		"friendships", len(snapshot.Friendships),
	)

	return key, nil
}

// WithNowFunc overrides the time source. Useful for tests.
func (e *Exporter) WithNowFunc(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}
