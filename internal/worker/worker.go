// Package worker runs one goroutine per interface: claiming its topology
// slot, running its transport read or write loop, and unwinding it
// through the unlink/reap path on exit.
package worker

import (
	"context"

	"github.com/kplexgo/kplex/internal/topology"
)

// Run is the body of an interface's goroutine. It must be launched after
// Interface.Read/Write/Cleanup/Cancel are all set and the interface has
// been registered on the topology's initialized list.
//
// Mirrors start_interface's contract: claim a list slot (or, if the
// interface was cancelled before it ever ran, skip straight to cleanup),
// run the transport loop, then unlink.
func Run(ctx context.Context, ifc *topology.Interface, topo *topology.Topology) {
	defer close(ifc.Done)

	if ifc.Direction == topology.None {
		topo.Abort(ifc)
		if ifc.Cleanup != nil {
			ifc.Cleanup(ifc)
		}
		return
	}

	topo.ClaimSlot(ifc)

	if ifc.Direction == topology.Out {
		_ = ifc.Write(ctx, ifc)
	} else {
		_ = ifc.Read(ctx, ifc)
	}

	Unlink(ifc, topo)
}
