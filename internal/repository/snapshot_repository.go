// internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/mpstock/internal/repository/postgres"
	"github.com/andresuchdata/mpstock/internal/snapshot"
	"github.com/jmoiron/sqlx"
)

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS dashboard_snapshots (
		name        TEXT PRIMARY KEY,
		payload     JSONB NOT NULL,
		last_update TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// StoredSnapshot is one row of dashboard_snapshots.
type StoredSnapshot struct {
	Name       string    `db:"name"`
	Payload    []byte    `db:"payload"`
	LastUpdate string    `db:"last_update"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SnapshotRepository keeps the latest published document per name. Saving
// overwrites; there is no history.
type SnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	Latest(ctx context.Context, name string) (*StoredSnapshot, error)
	// Save stores payload verbatim. It must decode as a snapshot document.
	Save(ctx context.Context, name string, payload []byte) error
}

type snapshotRepository struct {
	db *postgres.DB
}

func NewSnapshotRepository(db *postgres.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, snapshotSchema); err != nil {
			return fmt.Errorf("error creating dashboard_snapshots: %w", err)
		}
		return nil
	})
}

func (r *snapshotRepository) Latest(ctx context.Context, name string) (*StoredSnapshot, error) {
	query := `
		SELECT name, payload, last_update, updated_at
		FROM dashboard_snapshots
		WHERE name = $1
	`

	var row StoredSnapshot
	err := r.db.WithLimit(ctx, func() error {
		return r.db.GetContext(ctx, &row, query, name)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", name, snapshot.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("error getting snapshot %q: %w", name, err)
	}
	return &row, nil
}

func (r *snapshotRepository) Save(ctx context.Context, name string, payload []byte) error {
	doc, err := validatePayload(name, payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dashboard_snapshots (name, payload, last_update, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			last_update = EXCLUDED.last_update,
			updated_at = NOW()
	`
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, name, string(payload), doc.LastUpdate); err != nil {
			return fmt.Errorf("error saving snapshot %q: %w", name, err)
		}
		return nil
	})
}

// validatePayload decodes payload only to reject anything the loaders could
// not read back. Fields the engine ignores stay in the stored bytes.
func validatePayload(name string, payload []byte) (*snapshot.Document, error) {
	doc, err := snapshot.DecodeBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("save snapshot %q: %w", name, err)
	}
	return doc, nil
}

// SnapshotLoader serves the latest published document from postgres.
type SnapshotLoader struct {
	repo SnapshotRepository
	name string
}

func NewSnapshotLoader(repo SnapshotRepository, name string) *SnapshotLoader {
	return &SnapshotLoader{repo: repo, name: name}
}

func (l *SnapshotLoader) Name() string {
	return "postgres"
}

func (l *SnapshotLoader) Load(ctx context.Context) (*snapshot.Document, error) {
	row, err := l.repo.Latest(ctx, l.name)
	if err != nil {
		return nil, err
	}
	doc, err := snapshot.DecodeBytes(row.Payload)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", l.name, err)
	}
	return doc, nil
}

var _ snapshot.Loader = (*SnapshotLoader)(nil)
