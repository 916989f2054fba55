package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kplexgo/kplex/internal/engine"
	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInput emits each of sentences then returns, as if the transport
// hit EOF. barrier, if non-nil, is used to hold every input open until
// all sibling interfaces (inputs and outputs) have also claimed their
// topology slot, so the test doesn't race the "last input" shutdown or
// the fan-out against a sibling that hasn't started yet.
func fakeInput(barrier *sync.WaitGroup, sentences ...string) topology.ReadFunc {
	return func(ctx context.Context, ifc *topology.Interface) error {
		if barrier != nil {
			barrier.Done()
			barrier.Wait()
		}
		for _, s := range sentences {
			var b senblk.Block
			b.Set([]byte(s), ifc.ID)
			ifc.Queue.Push(&b)
		}
		return nil
	}
}

// fakeOutput drains ifc's queue into out until the queue deactivates.
// barrier, if non-nil, is marked done once the output has claimed its
// slot and entered its write loop.
func fakeOutput(barrier *sync.WaitGroup, out chan<- string) topology.WriteFunc {
	return func(ctx context.Context, ifc *topology.Interface) error {
		if barrier != nil {
			barrier.Done()
		}
		for {
			h := ifc.Queue.Pop()
			if h == nil {
				return nil
			}
			out <- string(h.Bytes())
			ifc.Queue.Release(h)
		}
	}
}

func TestEndToEndLastInputShutdown(t *testing.T) {
	topo := topology.New()
	central := squeue.New(8)

	var barrier sync.WaitGroup
	barrier.Add(4)
	in1 := &topology.Interface{Direction: topology.In, Queue: central, Read: fakeInput(&barrier, "$A*00\r\n")}
	in2 := &topology.Interface{Direction: topology.In, Queue: central, Read: fakeInput(&barrier, "$B*00\r\n")}

	out1ch := make(chan string, 8)
	out2ch := make(chan string, 8)
	out1 := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8), Write: fakeOutput(&barrier, out1ch)}
	out2 := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8), Write: fakeOutput(&barrier, out2ch)}

	for _, ifc := range []*topology.Interface{in1, in2, out1, out2} {
		topo.Register(ifc)
	}

	engineDone := make(chan struct{})
	go func() { engine.Run(central, topo); close(engineDone) }()

	for _, ifc := range []*topology.Interface{in1, in2, out1, out2} {
		go Run(context.Background(), ifc, topo)
	}

	reapDone := make(chan struct{})
	reaped := make(map[int]bool)
	go func() {
		Reap(topo, func(*topology.Interface) {}, func(ifc *topology.Interface) { reaped[ifc.ID] = true })
		close(reapDone)
	}()

	select {
	case <-reapDone:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper never drained: last-input shutdown did not cascade")
	}

	<-engineDone

	got1 := drain(out1ch)
	got2 := drain(out2ch)
	assert.ElementsMatch(t, []string{"$A*00\r\n", "$B*00\r\n"}, got1)
	assert.ElementsMatch(t, []string{"$A*00\r\n", "$B*00\r\n"}, got2)
	assert.True(t, reaped[in1.ID])
	assert.True(t, reaped[in2.ID])
	assert.True(t, reaped[out1.ID])
	assert.True(t, reaped[out2.ID])
}

func drain(ch chan string) []string {
	var out []string
	for {
		select {
		case s := <-ch:
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestNoneDirectionAbortsImmediately(t *testing.T) {
	topo := topology.New()
	ifc := &topology.Interface{Direction: topology.None}
	cleaned := false
	ifc.Cleanup = func(*topology.Interface) { cleaned = true }
	topo.Register(ifc)

	done := make(chan struct{})
	go func() { Run(context.Background(), ifc, topo); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker never exited for a None-direction interface")
	}
	assert.True(t, cleaned)

	reapedCh := make(chan struct{})
	go func() {
		Reap(topo, func(*topology.Interface) {}, func(i *topology.Interface) {
			require.Equal(t, ifc.ID, i.ID)
			close(reapedCh)
		})
	}()
	select {
	case <-reapedCh:
	case <-time.After(time.Second):
		t.Fatal("aborted interface was never reaped")
	}
}
