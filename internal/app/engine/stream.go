package engine

import (
	"context"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
)

// Stream surfaces the events of a running graph as they are produced.
// The channel is buffered for exactly one event, so the loop may run at
// most one step ahead of the consumer and events arrive in step order.
type Stream struct {
	events chan Event
	done   chan struct{}

	result *Result
	err    error
}

// Events yields one event per completed step, then an end event, then
// closes. On failure or cancellation the channel closes after the last
// completed step's event with no end event.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Result returns the run result. It is valid only after Events closes.
func (s *Stream) Result() *Result {
	<-s.done
	return s.result
}

// Err returns the run's terminal error, if any. It is valid only after
// Events closes.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Stream starts the run in a background goroutine and returns
// immediately. The caller must drain Events; an abandoned stream is
// released by canceling ctx.
func (e *Engine) Stream(ctx context.Context, g *graph.CompiledGraph, initial state.State, opts ...RunOption) *Stream {
	cfg := newRunConfig(opts)
	s := &Stream{
		events: make(chan Event, 1),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.events)
		res, err := e.execute(ctx, g, initial, cfg, func(ev Event) {
			// Once ctx is canceled the consumer is gone and the event
			// is dropped. Its step is already merged and stays on the
			// Result regardless.
			select {
			case s.events <- ev:
			case <-ctx.Done():
			}
		})
		s.result = res
		s.err = err
		close(s.done)
	}()
	return s
}
