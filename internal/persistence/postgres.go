package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/config"
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool from the configured DSN.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Postgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PostgresSnapshot persists the store snapshot as a single named row in a
// snapshots table. The store loads and saves the collections as a whole, so
// one bytea value per snapshot name is all the schema required.
type PostgresSnapshot struct {
	pg   *Postgres
	name string
}

const ensureSnapshotsTable = `
    CREATE TABLE IF NOT EXISTS snapshots (
        name       TEXT PRIMARY KEY,
        data       BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

// NewPostgresSnapshot ensures the snapshots table exists and returns the
// snapshotter for the given snapshot name.
func NewPostgresSnapshot(ctx context.Context, pg *Postgres, name string, logger *zap.Logger) (*PostgresSnapshot, error) {
	if _, err := pg.Pool.Exec(ctx, ensureSnapshotsTable); err != nil {
		return nil, err
	}
	logger.Info("postgres snapshot backend ready", zap.String("name", name))
	return &PostgresSnapshot{pg: pg, name: name}, nil
}

// Load fetches the snapshot row. No row means no snapshot yet.
func (s *PostgresSnapshot) Load(ctx context.Context) ([]byte, error) {
	const query = `SELECT data FROM snapshots WHERE name=$1`

	var data []byte
	err := s.pg.Pool.QueryRow(ctx, query, s.name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save upserts the snapshot row.
func (s *PostgresSnapshot) Save(ctx context.Context, data []byte) error {
	const query = `
        INSERT INTO snapshots (name, data, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`

	_, err := s.pg.Pool.Exec(ctx, query, s.name, data)
	return err
}

// Ping verifies database connectivity.
func (s *PostgresSnapshot) Ping(ctx context.Context) error {
	return s.pg.Pool.Ping(ctx)
}
