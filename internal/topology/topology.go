package topology

import (
	"container/list"
	"sync"
)

// Topology is the one process-wide instance tracking every interface's
// lifecycle state: initialized, inputs, outputs and dead. One mutex
// guards all four lists; two condition variables signal the two events
// other goroutines wait on.
type Topology struct {
	mu sync.Mutex

	initCond *sync.Cond
	deadCond *sync.Cond

	initialized *list.List
	inputs      *list.List
	outputs     *list.List
	dead        *list.List

	killAll bool
	nextID  int
}

// New returns an empty topology.
func New() *Topology {
	t := &Topology{
		initialized: list.New(),
		inputs:      list.New(),
		outputs:     list.New(),
		dead:        list.New(),
	}
	t.initCond = sync.NewCond(&t.mu)
	t.deadCond = sync.NewCond(&t.mu)
	return t
}

// Register assigns a stable handle and places ifc on the initialized
// list, awaiting its worker goroutine to claim a slot.
func (t *Topology) Register(ifc *Interface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	ifc.ID = t.nextID
	ifc.Done = make(chan struct{})
	ifc.elemInit = t.initialized.PushBack(ifc)
}

// Abort removes ifc from the initialized list and appends it directly to
// dead without ever touching inputs/outputs, for an interface cancelled
// (direction forced to None) before its worker claimed a slot. Like
// ClaimSlot, it signals init_cond once the initialized list has drained.
func (t *Topology) Abort(ifc *Interface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ifc.elemInit != nil {
		t.initialized.Remove(ifc.elemInit)
		ifc.elemInit = nil
	}
	if t.initialized.Len() == 0 {
		t.initCond.Broadcast()
	}
	ifc.elemDead = t.dead.PushBack(ifc)
	t.deadCond.Broadcast()
}

// ClaimSlot moves ifc off the initialized list and onto inputs and/or
// outputs according to its direction. A Both interface (one whose
// transport initializer has not yet expanded it into a pair) is
// prepended to both lists simultaneously. Signals init_cond once the
// initialized list has drained.
func (t *Topology) ClaimSlot(ifc *Interface) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ifc.elemInit != nil {
		t.initialized.Remove(ifc.elemInit)
		ifc.elemInit = nil
	}

	switch ifc.Direction {
	case In:
		ifc.elemIn = t.inputs.PushFront(ifc)
	case Out:
		ifc.elemOut = t.outputs.PushFront(ifc)
	case Both:
		ifc.elemIn = t.inputs.PushFront(ifc)
		ifc.elemOut = t.outputs.PushFront(ifc)
	}

	if t.initialized.Len() == 0 {
		t.initCond.Broadcast()
	}
}

// WaitAllClaimed blocks until every interface placed on the initialized
// list has moved itself to inputs or outputs.
func (t *Topology) WaitAllClaimed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.initialized.Len() > 0 {
		t.initCond.Wait()
	}
}

// Unlink removes ifc from whichever of inputs/outputs it is on (both, for
// an unexpanded Both interface) and appends it to dead, signalling
// dead_cond. fn runs with the topology mutex held, immediately after
// removal and before the dead-list append — it is the hook unlink/reap
// (internal/worker) uses to decide queue teardown and pair cancellation
// while list membership is still settled.
func (t *Topology) Unlink(ifc *Interface, fn func(t *Topology)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ifc.elemIn != nil {
		t.inputs.Remove(ifc.elemIn)
		ifc.elemIn = nil
	}
	if ifc.elemOut != nil {
		t.outputs.Remove(ifc.elemOut)
		ifc.elemOut = nil
	}

	if fn != nil {
		fn(t)
	}

	ifc.elemDead = t.dead.PushBack(ifc)
	t.deadCond.Broadcast()
}

// InputsEmptyLocked reports whether the inputs list is empty. Must be
// called with fn passed to Unlink (i.e. with the mutex already held).
func (t *Topology) InputsEmptyLocked() bool {
	return t.inputs.Len() == 0
}

// Outputs calls fn once per interface currently on the outputs list,
// with the topology mutex held for the whole traversal — mirroring the
// engine's fan-out, which must see a consistent snapshot while pushing.
func (t *Topology) Outputs(fn func(*Interface)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for e := t.outputs.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Interface))
	}
}

// Inputs calls fn once per interface currently on the inputs list, with
// the mutex held.
func (t *Topology) Inputs(fn func(*Interface)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for e := t.inputs.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Interface))
	}
}

// KillAll sets the process-wide kill flag and wakes the reaper.
func (t *Topology) KillAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.killAll = true
	t.deadCond.Broadcast()
}

// counts reports the sizes of the three live lists, used by the reaper
// to decide when the system has fully drained.
func (t *Topology) counts() (inputs, outputs, dead int) {
	return t.inputs.Len(), t.outputs.Len(), t.dead.Len()
}

// ReapLoop implements the lifecycle controller's main loop. It first
// waits until the initialized list has drained (every worker has claimed
// its slot or aborted); then, while any of
// inputs, outputs or dead is non-empty, wait for either a dead-list
// addition or the kill flag; if the kill flag is set or outputs has
// drained to empty, cancel every remaining input; then drain dead,
// invoking onReaped for each entry (expected to join the worker's
// goroutine via Interface.Done and free transport state).
func (t *Topology) ReapLoop(cancelInput func(*Interface), onReaped func(*Interface)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for t.initialized.Len() > 0 {
		t.initCond.Wait()
	}

	for {
		inputs, outputs, dead := t.counts()
		if inputs == 0 && outputs == 0 && dead == 0 {
			return
		}

		for t.dead.Len() == 0 && !t.killAll {
			t.deadCond.Wait()
		}

		if t.killAll || t.outputs.Len() == 0 {
			t.killAll = false
			for e := t.inputs.Front(); e != nil; e = e.Next() {
				cancelInput(e.Value.(*Interface))
			}
		}

		for t.dead.Len() > 0 {
			e := t.dead.Front()
			t.dead.Remove(e)
			ifc := e.Value.(*Interface)
			ifc.elemDead = nil
			t.mu.Unlock()
			onReaped(ifc)
			t.mu.Lock()
		}
	}
}
