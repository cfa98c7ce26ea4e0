package checkpoint

import (
	"context"
	"time"
)

// Saver persists checkpoints. Implementations must be safe for
// concurrent use; the engine may checkpoint many runs at once.
type Saver interface {
	// Save persists a checkpoint.
	Save(ctx context.Context, cp *Checkpoint) error

	// Load retrieves a checkpoint by ID.
	Load(ctx context.Context, id string) (*Checkpoint, error)

	// List returns checkpoints matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*Checkpoint, error)

	// Delete removes a checkpoint by ID.
	Delete(ctx context.Context, id string) error
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	GraphName string
	RunID     string
	Since     *time.Time
	Limit     int
}

// Validate rejects filters no saver can honor.
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// Matches reports whether a checkpoint satisfies the filter, ignoring
// Limit. Savers without native query support share this predicate.
func (f *Filter) Matches(cp *Checkpoint) bool {
	if f.GraphName != "" && cp.GraphName != f.GraphName {
		return false
	}
	if f.RunID != "" && cp.RunID != f.RunID {
		return false
	}
	if f.Since != nil && !cp.CreatedAt.After(*f.Since) {
		return false
	}
	return true
}
