// Package store implements the PostgreSQL-backed persistence this module
// needs beyond the in-process test doubles: the commitment tree's node
// storage (merklepath.Store) and the set of spent nullifiers a deployment
// checks transactions against before accepting them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
)

// Common errors, matching the teacher's storage package vocabulary.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrDBConnection = errors.New("database connection error")
)

// Config holds database configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DefaultConfig returns default database configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "arm",
		Password: "",
		Database: "arm",
		SSLMode:  "disable",
		MaxConns: 20,
	}
}

// PostgresStore implements merklepath.Store and tracks spent nullifiers
// over a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a connection pool and pings it once before
// returning, so connection failures surface immediately rather than on
// the first query.
func NewPostgresStore(ctx context.Context, cfg *Config) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode, cfg.MaxConns,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// ============================================
// merklepath.Store
// ============================================

// GetNode retrieves one commitment-tree node. Missing nodes above the
// tree's current frontier are the caller's (CommitmentTree's) own empty-
// subtree cache responsibility, not this store's.
func (s *PostgresStore) GetNode(ctx context.Context, level, index uint64) (resource.Digest, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT hash FROM commitment_tree_nodes WHERE level = $1 AND index = $2`,
		level, index,
	).Scan(&hash)
	if err == pgx.ErrNoRows {
		return resource.Digest{}, ErrNotFound
	}
	if err != nil {
		return resource.Digest{}, fmt.Errorf("get node: %w", err)
	}
	var d resource.Digest
	copy(d[:], hash)
	return d, nil
}

// SetNode upserts one commitment-tree node.
func (s *PostgresStore) SetNode(ctx context.Context, level, index uint64, hash resource.Digest) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO commitment_tree_nodes (level, index, hash) VALUES ($1, $2, $3)
		 ON CONFLICT (level, index) DO UPDATE SET hash = $3`,
		level, index, hash[:],
	)
	if err != nil {
		return fmt.Errorf("set node: %w", err)
	}
	return nil
}

// GetRoot retrieves the tree's current root.
func (s *PostgresStore) GetRoot(ctx context.Context) (resource.Digest, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx, `SELECT root FROM commitment_tree_state WHERE id = TRUE`).Scan(&hash)
	if err == pgx.ErrNoRows {
		return resource.Digest{}, ErrNotFound
	}
	if err != nil {
		return resource.Digest{}, fmt.Errorf("get root: %w", err)
	}
	var d resource.Digest
	copy(d[:], hash)
	return d, nil
}

// SetRoot upserts the tree's current root.
func (s *PostgresStore) SetRoot(ctx context.Context, root resource.Digest) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO commitment_tree_state (id, root) VALUES (TRUE, $1)
		 ON CONFLICT (id) DO UPDATE SET root = $1`,
		root[:],
	)
	if err != nil {
		return fmt.Errorf("set root: %w", err)
	}
	return nil
}

// GetSize retrieves the tree's current leaf count.
func (s *PostgresStore) GetSize(ctx context.Context) (uint64, error) {
	var size uint64
	err := s.pool.QueryRow(ctx, `SELECT size FROM commitment_tree_state WHERE id = TRUE`).Scan(&size)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get size: %w", err)
	}
	return size, nil
}

// SetSize upserts the tree's current leaf count.
func (s *PostgresStore) SetSize(ctx context.Context, size uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO commitment_tree_state (id, size) VALUES (TRUE, $1)
		 ON CONFLICT (id) DO UPDATE SET size = $1`,
		size,
	)
	if err != nil {
		return fmt.Errorf("set size: %w", err)
	}
	return nil
}

var _ merklepath.Store = (*PostgresStore)(nil)

// ============================================
// Spent nullifiers
// ============================================

// HasNullifier reports whether nf has already been spent.
func (s *PostgresStore) HasNullifier(ctx context.Context, nf resource.Digest) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM spent_nullifiers WHERE nullifier = $1)`, nf[:],
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check nullifier: %w", err)
	}
	return exists, nil
}

// MarkSpent records nf as spent by txHash, failing with ErrDuplicate if it
// was already recorded.
func (s *PostgresStore) MarkSpent(ctx context.Context, nf resource.Digest, txHash resource.Digest) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO spent_nullifiers (nullifier, tx_hash) VALUES ($1, $2)
		 ON CONFLICT (nullifier) DO NOTHING`,
		nf[:], txHash[:],
	)
	if err != nil {
		return fmt.Errorf("mark nullifier spent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}
