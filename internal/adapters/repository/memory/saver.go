// Package memory provides the in-process checkpoint saver. It is the
// default for tests and single-binary runs; everything is lost on exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
)

// Saver keeps checkpoints in a map guarded by a mutex. Checkpoints are
// deep-copied on the way in and out so callers can keep mutating their
// state maps.
type Saver struct {
	mu        sync.RWMutex
	byID      map[string]*checkpoint.Checkpoint
	insertSeq map[string]int
	seq       int
}

// NewSaver creates an empty in-memory saver.
func NewSaver() *Saver {
	return &Saver{
		byID:      make(map[string]*checkpoint.Checkpoint),
		insertSeq: make(map[string]int),
	}
}

func clone(cp *checkpoint.Checkpoint) *checkpoint.Checkpoint {
	out := *cp
	out.State = cp.State.Clone()
	return &out
}

// Save stores a copy of the checkpoint, replacing any earlier one with
// the same ID.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[cp.ID]; !exists {
		s.seq++
		s.insertSeq[cp.ID] = s.seq
	}
	s.byID[cp.ID] = clone(cp)
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *Saver) Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error) {
	if id == "" {
		return nil, checkpoint.ErrInvalidCheckpointID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.byID[id]
	if !ok {
		return nil, checkpoint.ErrCheckpointNotFound
	}
	return clone(cp), nil
}

// List returns matching checkpoints, newest first. Ties on CreatedAt
// fall back to insertion order so repeated fast saves stay stable.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []*checkpoint.Checkpoint
	for _, cp := range s.byID {
		if filter.Matches(cp) {
			out = append(out, clone(cp))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.insertOrder(out[i].ID) > s.insertOrder(out[j].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Saver) insertOrder(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insertSeq[id]
}

// Delete removes a checkpoint by ID.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return checkpoint.ErrCheckpointNotFound
	}
	delete(s.byID, id)
	delete(s.insertSeq, id)
	return nil
}

// Len reports how many checkpoints are stored.
func (s *Saver) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
