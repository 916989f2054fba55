// Package topology implements the interface lifecycle lists described by
// the multiplexer's core: the four lists (initialized, inputs, outputs,
// dead) guarded by one mutex with two condition variables, plus the
// Interface record that moves between them.
//
// The C original links interfaces with an intrusive "next" field and
// reaches its topology through a raw back-pointer stored on every
// interface. Here the topology is the sole owner of list membership
// (container/list.Element handles, not intrusive fields on Interface),
// and callers are handed the topology explicitly rather than chasing a
// back-pointer — the non-owning, injected-context re-expression spec.md
// §9 calls for.
package topology

import (
	"container/list"
	"context"

	"github.com/kplexgo/kplex/internal/squeue"
)

// Direction is an interface's data-flow role. None means "shutting down,
// do not activate" and is never a configuration-time value. Both is a
// configuration-time convenience expanded by a transport initializer
// into one In and one Out interface linked by Pair; the runtime proper
// only ever steady-states on In, Out or None.
type Direction int

const (
	None Direction = iota
	In
	Out
	Both
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case Both:
		return "both"
	default:
		return "none"
	}
}

// ReadFunc is an input interface's body, run on its own goroutine. It
// should return when the transport reports EOF/fatal error or when it
// observes Direction flip to None following a Cancel call.
type ReadFunc func(ctx context.Context, ifc *Interface) error

// WriteFunc is an output interface's body.
type WriteFunc func(ctx context.Context, ifc *Interface) error

// CleanupFunc releases transport-private resources. It runs once, from
// the worker goroutine, after the read/write loop returns.
type CleanupFunc func(ifc *Interface)

// Interface is the descriptor for one endpoint.
type Interface struct {
	ID        int
	Kind      string
	Direction Direction

	// Queue is either this output's own exclusive queue, or (for inputs)
	// a reference to the engine's central queue.
	Queue *squeue.Queue

	// Pair is the other half of a bidirectional expansion. Non-owning:
	// the first half to die clears both ends of the link.
	Pair *Interface

	Info    any
	Options map[string]string

	Read    ReadFunc
	Write   WriteFunc
	Cleanup CleanupFunc

	// Cancel unblocks a transport read/write currently in progress, the
	// self-pipe substitute for the source's SIGUSR1. It is set by the
	// transport initializer and must be safe to call concurrently with
	// the read/write loop.
	Cancel func()

	// Done is closed once this interface's worker goroutine has returned
	// from its read/write loop and invoked Cleanup. The reaper waits on
	// it in place of pthread_join.
	Done chan struct{}

	elemInit *list.Element
	elemIn   *list.Element
	elemOut  *list.Element
	elemDead *list.Element
}
