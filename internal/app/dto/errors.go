package dto

import "errors"

var (
	ErrUnknownGraph   = errors.New("unknown graph")
	ErrMissingGraph   = errors.New("graph name is required")
	ErrInvalidRequest = errors.New("invalid run request")
)
