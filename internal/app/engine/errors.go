package engine

import (
	"errors"
	"fmt"
)

// Terminal run errors. Control conditions (canceled, step limit) are
// deliberate early termination, distinct from structural failures so
// callers can tell "stopped on purpose" from "broke".
var (
	ErrInvalidRouteTarget = errors.New("invalid route target")
	ErrStepLimitExceeded  = errors.New("step limit exceeded")
	ErrCanceled           = errors.New("run canceled")
)

// RouteError reports a conditional router returning a name outside the
// compiled graph's declared nodes and targets.
type RouteError struct {
	Node   string
	Target string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("node %q routed to invalid target %q", e.Node, e.Target)
}

func (e *RouteError) Unwrap() error { return ErrInvalidRouteTarget }

// NodeError wraps an error raised by a node's work function. The engine
// never retries; the wrapped error reaches the caller as the run's
// terminal error.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed at step %d: %v", e.Node, e.Step, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
