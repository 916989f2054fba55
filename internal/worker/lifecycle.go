package worker

import "github.com/kplexgo/kplex/internal/topology"

// Unlink removes ifc from the inputs/outputs list it is on, tears down
// its queue (deactivating the central queue if ifc was the last input),
// runs its cleanup, and — if ifc was one half of a pair — shuts the
// other half down too: an Out pair has its queue deactivated so its
// writer drains and exits; an In pair is marked None and cancelled so
// its next blocking read returns. Finally ifc is appended to the dead
// list for the reaper to join.
func Unlink(ifc *topology.Interface, topo *topology.Topology) {
	topo.Unlink(ifc, func(t *topology.Topology) {
		if ifc.Direction != topology.Out && t.InputsEmptyLocked() {
			// Last input gone: cascade shutdown through the engine to
			// every output.
			ifc.Queue.Push(nil)
		}

		if ifc.Cleanup != nil {
			ifc.Cleanup(ifc)
		}

		if pair := ifc.Pair; pair != nil {
			ifc.Pair = nil
			pair.Pair = nil
			if pair.Direction == topology.Out {
				pair.Queue.Push(nil)
			} else {
				pair.Direction = topology.None
				if pair.Cancel != nil {
					pair.Cancel()
				}
			}
		}
	})
}

// Reap runs the lifecycle controller's loop: once every registered
// interface has claimed its slot (or aborted), it blocks until there is
// dead-list work or a kill-all event, cancels remaining inputs when
// appropriate, and joins+frees each dead interface by waiting on its
// Done channel before calling free.
func Reap(topo *topology.Topology, cancelInput func(*topology.Interface), free func(*topology.Interface)) {
	topo.ReapLoop(cancelInput, func(ifc *topology.Interface) {
		<-ifc.Done
		free(ifc)
	})
}
