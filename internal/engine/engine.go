// Package engine implements the multiplexer's single consumer: it drains
// the central input queue and fans a copy of each sentence out to every
// output queue, excluding a paired output from ever receiving what its
// own input side produced.
package engine

import (
	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// Run repeatedly pops from central and pushes a copy to every output
// whose pair (if any) did not produce it, until central is deactivated
// and drained — at which point Run forwards the shutdown (a nil push) to
// every output and returns.
func Run(central *squeue.Queue, topo *topology.Topology) {
	for {
		h := central.Pop()

		var blk *senblk.Block
		if h != nil {
			blk = &h.Block
		}

		topo.Outputs(func(o *topology.Interface) {
			if o.Direction != topology.Out {
				return
			}
			if blk != nil && o.Pair != nil && blk.Src == o.Pair.ID {
				return // loopback: o is the OUT half of blk's own source pair
			}
			o.Queue.Push(blk)
		})

		if h == nil {
			return
		}
		central.Release(h)
	}
}
