// Package sqlite persists checkpoints in a SQLite database via the pure
// Go driver, suitable for single-host deployments and tests that need
// durability without a server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on a SQLite database. Filterable
// fields live in columns; the state snapshot is stored as a serialized
// blob.
type Saver struct {
	db         *sql.DB
	serializer *serialization.Serializer
	table      string
}

// Option configures a Saver.
type Option func(*Saver)

// WithSerializer overrides the state blob serializer.
func WithSerializer(s *serialization.Serializer) Option {
	return func(sv *Saver) { sv.serializer = s }
}

// WithTable overrides the table name. Only identifier-safe names are
// accepted; anything else keeps the default.
func WithTable(name string) Option {
	return func(sv *Saver) {
		if safeIdent(name) {
			sv.table = name
		}
	}
}

func safeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Open opens the database at path ("file::memory:?cache=shared" works
// for tests), creates the schema and returns a ready saver.
func Open(ctx context.Context, path string, opts ...Option) (*Saver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := NewSaver(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSaver wraps an existing database handle. Call Migrate before first
// use.
func NewSaver(db *sql.DB, opts ...Option) *Saver {
	s := &Saver{
		db:         db,
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
			payload    BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_graph_name ON %[1]s (graph_name);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_run_id ON %[1]s (run_id);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s (created_at);
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
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
		INSERT OR REPLACE INTO %s (id, graph_name, run_id, step, next_node, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.table)
	_, err = s.db.ExecContext(ctx, query,
		cp.ID, cp.GraphName, cp.RunID, cp.Step, cp.NextNode, payload, cp.CreatedAt.UnixNano())
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
		FROM %s WHERE id = ?
	`, s.table)
	cp, err := s.scanRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	return cp, nil
}

// List returns matching checkpoints, newest first.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, graph_name, run_id, step, next_node, payload, created_at
		FROM %s WHERE 1=1
	`, s.table)
	var args []any
	if filter.GraphName != "" {
		query += " AND graph_name = ?"
		args = append(args, filter.GraphName)
	}
	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.Since != nil {
		query += " AND created_at > ?"
		args = append(args, filter.Since.UnixNano())
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*checkpoint.Checkpoint
	for rows.Next() {
		cp, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint by ID.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), id)
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return checkpoint.ErrCheckpointNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *Saver) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Saver) scanRow(row rowScanner) (*checkpoint.Checkpoint, error) {
	var cp checkpoint.Checkpoint
	var payload []byte
	var createdAt int64
	if err := row.Scan(&cp.ID, &cp.GraphName, &cp.RunID, &cp.Step, &cp.NextNode, &payload, &createdAt); err != nil {
		return nil, err
	}
	cp.CreatedAt = time.Unix(0, createdAt)
	cp.State = make(state.State)
	if err := s.serializer.Unmarshal(payload, &cp.State); err != nil {
		return nil, fmt.Errorf("deserialize state: %w", err)
	}
	return &cp, nil
}
