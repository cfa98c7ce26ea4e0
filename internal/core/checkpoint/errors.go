package checkpoint

import "errors"

var (
	ErrInvalidCheckpointID = errors.New("invalid checkpoint ID")
	ErrInvalidGraphName    = errors.New("invalid graph name")
	ErrInvalidRunID        = errors.New("invalid run ID")
	ErrNilState            = errors.New("checkpoint state cannot be nil")
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrInvalidLimit        = errors.New("limit cannot be negative")
)
