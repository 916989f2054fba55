package engine

import (
	"testing"
	"time"

	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func push(t *testing.T, q *squeue.Queue, s string, src int) {
	t.Helper()
	var b senblk.Block
	b.Set([]byte(s), src)
	q.Push(&b)
}

func mustRecv(t *testing.T, q *squeue.Queue) string {
	t.Helper()
	h := q.Pop()
	require.NotNil(t, h)
	s := string(h.Bytes())
	q.Release(h)
	return s
}

func TestFanOutToAllOutputs(t *testing.T) {
	topo := topology.New()
	central := squeue.New(8)

	in1 := &topology.Interface{Direction: topology.In}
	topo.Register(in1)
	topo.ClaimSlot(in1)

	out1 := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8)}
	out2 := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8)}
	topo.Register(out1)
	topo.ClaimSlot(out1)
	topo.Register(out2)
	topo.ClaimSlot(out2)

	done := make(chan struct{})
	go func() { Run(central, topo); close(done) }()

	push(t, central, "$A*00\r\n", in1.ID)
	push(t, central, "$B*00\r\n", in1.ID)

	assert.Equal(t, "$A*00\r\n", mustRecv(t, out1.Queue))
	assert.Equal(t, "$B*00\r\n", mustRecv(t, out1.Queue))
	assert.Equal(t, "$A*00\r\n", mustRecv(t, out2.Queue))
	assert.Equal(t, "$B*00\r\n", mustRecv(t, out2.Queue))

	central.Push(nil)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not exit after central shutdown")
	}
}

func TestPairLoopbackExclusion(t *testing.T) {
	topo := topology.New()
	central := squeue.New(8)

	inP := &topology.Interface{Direction: topology.In}
	outP := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8)}
	inP.Pair, outP.Pair = outP, inP

	inQ := &topology.Interface{Direction: topology.In}
	outQ := &topology.Interface{Direction: topology.Out, Queue: squeue.New(8)}
	inQ.Pair, outQ.Pair = outQ, inQ

	for _, ifc := range []*topology.Interface{inP, outP, inQ, outQ} {
		topo.Register(ifc)
		topo.ClaimSlot(ifc)
	}

	done := make(chan struct{})
	go func() { Run(central, topo); close(done) }()

	push(t, central, "$P*00\r\n", inP.ID)

	assert.Equal(t, "$P*00\r\n", mustRecv(t, outQ.Queue))

	central.Push(nil)
	<-done

	// outP must never have received anything from its own input side: its
	// queue only ever saw the shutdown nil-push, so it is now drained.
	assert.Nil(t, outP.Queue.Pop())
}
