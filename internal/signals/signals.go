// Package signals bridges OS signals into the topology's kill-all
// event, replacing the source's SIGUSR1-driven pthread_cond_signal
// with a channel a single goroutine watches.
package signals

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kplexgo/kplex/internal/topology"
)

// Bridge owns the signal channel for the process lifetime of Watch.
type Bridge struct {
	ch chan os.Signal
}

// NewBridge registers for SIGINT and SIGTERM.
func NewBridge() *Bridge {
	b := &Bridge{ch: make(chan os.Signal, 1)}
	signal.Notify(b.ch, syscall.SIGINT, syscall.SIGTERM)
	return b
}

// Watch blocks until a registered signal arrives, then calls
// topo.KillAll() once and returns. Callers typically run this in its
// own goroutine.
func (b *Bridge) Watch(topo *topology.Topology) {
	<-b.ch
	topo.KillAll()
}

// Stop releases the OS signal registration.
func (b *Bridge) Stop() {
	signal.Stop(b.ch)
}
