// Package redis persists checkpoints in Redis. Each checkpoint is a
// serialized blob under its own key; a sorted-set index scored by
// creation time supports newest-first listing.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on a Redis client.
type Saver struct {
	client     *backend.Client
	serializer *serialization.Serializer
	prefix     string
	ttl        time.Duration
}

// Option configures a Saver.
type Option func(*Saver)

// WithPrefix sets the key prefix. The default is "stategraph:checkpoint:".
func WithPrefix(prefix string) Option {
	return func(s *Saver) { s.prefix = prefix }
}

// WithTTL expires checkpoint blobs after the given duration. Zero, the
// default, keeps them forever. The index is pruned lazily on List.
func WithTTL(ttl time.Duration) Option {
	return func(s *Saver) { s.ttl = ttl }
}

// WithSerializer overrides the blob serializer.
func WithSerializer(ser *serialization.Serializer) Option {
	return func(s *Saver) { s.serializer = ser }
}

// New connects to the given address and returns a saver.
func New(addr, password string, db int, opts ...Option) *Saver {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Saver {
	s := &Saver{
		client:     client,
		serializer: serialization.Default(),
		prefix:     "stategraph:checkpoint:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Saver) key(id string) string { return s.prefix + id }
func (s *Saver) indexKey() string     { return s.prefix + "index" }

// Save stores the checkpoint blob and indexes it by creation time.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	data, err := s.serializer.Marshal(cp)
	if err != nil {
		return fmt.Errorf("serialize checkpoint: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(cp.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(cp.CreatedAt.UnixNano()),
		Member: cp.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *Saver) Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error) {
	if id == "" {
		return nil, checkpoint.ErrInvalidCheckpointID
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	var cp checkpoint.Checkpoint
	if err := s.serializer.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("deserialize checkpoint %s: %w", id, err)
	}
	return &cp, nil
}

// List walks the index newest first, loads each blob and applies the
// filter. Index entries whose blob has expired are dropped from the
// index as they are encountered.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	var out []*checkpoint.Checkpoint
	for _, id := range ids {
		cp, err := s.Load(ctx, id)
		if errors.Is(err, checkpoint.ErrCheckpointNotFound) {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !filter.Matches(cp) {
			continue
		}
		out = append(out, cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Delete removes a checkpoint and its index entry.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	deleted, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	s.client.ZRem(ctx, s.indexKey(), id)
	if deleted == 0 {
		return checkpoint.ErrCheckpointNotFound
	}
	return nil
}

// Ping verifies connectivity, for readiness probes.
func (s *Saver) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Saver) Close() error {
	return s.client.Close()
}
