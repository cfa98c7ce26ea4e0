// Package postgres persists checkpoints in PostgreSQL through a pgx
// connection pool. It is the saver for multi-host deployments where runs
// resume on a different process than the one that checkpointed them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on a pgx pool.
type Saver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	table      string
}

// Option configures a Saver.
type Option func(*Saver)

// WithSerializer overrides the state blob serializer.
func WithSerializer(s *serialization.Serializer) Option {
	return func(sv *Saver) { sv.serializer = s }
}

// Connect creates a pool from the connection string, runs the schema
// migration and returns a ready saver.
func Connect(ctx context.Context, connString string, opts ...Option) (*Saver, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := NewSaver(pool, opts...)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewSaver wraps an existing pool. Call Migrate before first use.
func NewSaver(pool *pgxpool.Pool, opts ...Option) *Saver {
	s := &Saver{
		pool:       pool,
		serializer: serialization.Default(),
		table:      "checkpoints",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the checkpoint table and its indexes.
func (s *Saver) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id         TEXT PRIMARY KEY,
			graph_name TEXT NOT NULL,
			run_id     TEXT NOT NULL,
			step       INTEGER NOT NULL,
			next_node  TEXT NOT NULL,
			payload    BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_graph_name ON %[1]s (graph_name);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_run_id ON %[1]s (run_id);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s (created_at);
	`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("migrate %s: %w", s.table, err)
	}
	return nil
}

// Save upserts a checkpoint.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	payload, err := s.serializer.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, graph_name, run_id, step, next_node, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			step = EXCLUDED.step,
			next_node = EXCLUDED.next_node,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`, s.table)
	_, err = s.pool.Exec(ctx, query,
		cp.ID, cp.GraphName, cp.RunID, cp.Step, cp.NextNode, payload, cp.CreatedAt)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *Saver) Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error) {
	if id == "" {
		return nil, checkpoint.ErrInvalidCheckpointID
	}
	query := fmt.Sprintf(`
		SELECT id, graph_name, run_id, step, next_node, payload, created_at
		FROM %s WHERE id = $1
	`, s.table)

	var cp checkpoint.Checkpoint
	var payload []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&cp.ID, &cp.GraphName, &cp.RunID, &cp.Step, &cp.NextNode, &payload, &cp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	if err := s.decodeState(&cp, payload); err != nil {
		return nil, err
	}
	return &cp, nil
}

// List returns matching checkpoints, newest first.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, graph_name, run_id, step, next_node, payload, created_at
		FROM %s WHERE true
	`, s.table)
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.GraphName != "" {
		query += " AND graph_name = " + arg(filter.GraphName)
	}
	if filter.RunID != "" {
		query += " AND run_id = " + arg(filter.RunID)
	}
	if filter.Since != nil {
		query += " AND created_at > " + arg(*filter.Since)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*checkpoint.Checkpoint
	for rows.Next() {
		var cp checkpoint.Checkpoint
		var payload []byte
		if err := rows.Scan(&cp.ID, &cp.GraphName, &cp.RunID, &cp.Step, &cp.NextNode, &payload, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		if err := s.decodeState(&cp, payload); err != nil {
			return nil, err
		}
		out = append(out, &cp)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint by ID.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.table), id)
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return checkpoint.ErrCheckpointNotFound
	}
	return nil
}

// Close releases the pool.
func (s *Saver) Close() {
	s.pool.Close()
}

// Ping verifies connectivity, for readiness probes.
func (s *Saver) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *Saver) decodeState(cp *checkpoint.Checkpoint, payload []byte) error {
	cp.State = make(state.State)
	if err := s.serializer.Unmarshal(payload, &cp.State); err != nil {
		return fmt.Errorf("deserialize state for %s: %w", cp.ID, err)
	}
	return nil
}
