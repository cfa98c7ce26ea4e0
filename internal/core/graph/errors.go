package graph

import "errors"

// Construction and compile errors. All of them are fatal to the attempt
// that raised them; the builder itself stays mutable and may be corrected
// and recompiled.
var (
	ErrDuplicateNode   = errors.New("duplicate node name")
	ErrUnknownNode     = errors.New("unknown node")
	ErrReservedName    = errors.New("reserved node name")
	ErrNilNodeFunc     = errors.New("node function must not be nil")
	ErrNilRouter       = errors.New("router function must not be nil")
	ErrConflictingEdge = errors.New("node already has an outgoing edge")
	ErrDanglingEdge    = errors.New("edge target is not a registered node")
	ErrInvalidEntry    = errors.New("invalid entry point")
)
