// Package transport turns a parsed config.Descriptor into a live
// topology.Interface: the registry plays the role the source's
// iftypes[] dispatch table does, mapping a type name to the code that
// knows how to open it.
package transport

import (
	"time"

	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// timeInPast is passed to SetDeadline to unblock a conn's in-flight
// read/write immediately — the cancel-worker substitute for network
// transports, per spec.md §9 and SPEC_FULL.md §4.10.
var timeInPast = time.Unix(1, 0)

// InitFunc opens one transport instance and returns the one or two
// (for an expanded Both) interfaces it produces. central is the
// engine's shared input queue, handed to every input side so its
// ReadFunc can push directly onto it.
type InitFunc func(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error)

var registry = map[string]InitFunc{
	"serial":    initSerial,
	"pty":       initPTY,
	"tcp":       initTCP,
	"broadcast": initBroadcast,
	"file":      initFile,
	"seatalk":   initSeatalk,
}

// Open dispatches a descriptor to its registered initializer.
func Open(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	init, ok := registry[desc.Kind]
	if !ok {
		return nil, trace.BadParameter("no transport registered for type %q", desc.Kind)
	}
	ifcs, err := init(desc, central, qsize)
	if err != nil {
		return nil, trace.Wrap(err, "initializing %s interface", desc.Kind)
	}
	return ifcs, nil
}

// direction parses the common "direction" option shared by every
// transport but seatalk, which hardcodes its own.
func direction(desc config.Descriptor) (topology.Direction, error) {
	v, ok := desc.Direction()
	if !ok {
		return topology.None, trace.BadParameter("%s: missing direction", desc.Kind)
	}
	switch v {
	case "in":
		return topology.In, nil
	case "out":
		return topology.Out, nil
	case "both":
		return topology.Both, nil
	default:
		return topology.None, trace.BadParameter("%s: invalid direction %q", desc.Kind, v)
	}
}

// newInterface fills in the fields every transport sets identically.
func newInterface(kind string, dir topology.Direction, desc config.Descriptor) *topology.Interface {
	return &topology.Interface{
		Kind:      kind,
		Direction: dir,
		Options:   desc.Options,
	}
}

// splitBoth expands a Both-direction descriptor into a paired In/Out
// interface, per spec.md §3(b): configuration-time only, never a
// steady-state runtime Direction.
func splitBoth(in, out *topology.Interface, ownQueue *squeue.Queue) {
	in.Pair = out
	out.Pair = in
	out.Queue = ownQueue
}
