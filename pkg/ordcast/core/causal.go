package core

import (
	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
)

// BroadcastWriteFunc launches the broadcast-write fan-out for a
// locally-issued causal write, using its freshly stamped vector. It is
// supplied by the wiring layer (NewNode in core/node.go, which wraps
// Broadcaster.BroadcastWrite) so the
// scheduler itself stays transport-agnostic.
type BroadcastWriteFunc func(v clock.Vector, payload Payload)

// CausalScheduler orders deliveries using a vector clock: a remote
// record is delivered only once it is the sender's immediate next
// message and every other component it names has already been seen
// locally (spec.md §4.3).
type CausalScheduler struct {
	nodeID    int
	nodeClock *clock.VectorClock
	queue     *causalQueue
	loop      *loopControl
	applier   Applier
	broadcast BroadcastWriteFunc
	log       logging.Logger
}

// NewCausalScheduler creates a scheduler for a cluster of size n,
// running as node nodeID, and starts its delivery loop through the
// default goroutine-per-call Invoker. broadcast is invoked
// synchronously from AddTask for locally-issued writes, after the
// record has been stamped and applied locally.
func NewCausalScheduler(nodeID, n int, applier Applier, broadcast BroadcastWriteFunc, log logging.Logger) *CausalScheduler {
	return NewCausalSchedulerWithInvoker(nodeID, n, applier, broadcast, log, NewInvoker())
}

// NewCausalSchedulerWithInvoker is NewCausalScheduler with an explicit
// Invoker, so tests can use a WaitGroupInvoker to block until the
// delivery loop goroutine has exited.
func NewCausalSchedulerWithInvoker(nodeID, n int, applier Applier, broadcast BroadcastWriteFunc, log logging.Logger, invoker Invoker) *CausalScheduler {
	s := &CausalScheduler{
		nodeID:    nodeID,
		nodeClock: clock.NewVectorClock(nodeID, n),
		queue:     newCausalQueue(),
		loop:      newLoopControl(),
		applier:   applier,
		broadcast: broadcast,
		log:       log,
	}
	invoker.Spawn(s.run)
	return s
}

// LocalVector returns a snapshot of this node's local vector clock.
func (s *CausalScheduler) LocalVector() clock.Vector {
	return s.nodeClock.Snapshot()
}

// AddTask implements the two cases from spec.md §4.3.
//
// A locally-issued broadcast-write (originator is this node and its
// embedded vector is still zeroed) is stamped and applied immediately
// — causal order self-to-self is trivially satisfied — and the
// broadcast-write fan-out is launched with the stamped vector.
//
// A remote broadcast-write is enqueued unchanged with the
// sender-provided vector, unless it is a duplicate/stale broadcast or
// this node's own write returning to itself, both of which are
// dropped silently on enqueue per spec.md §4.3's edge cases.
func (s *CausalScheduler) AddTask(rec *Record) {
	if rec.Originator == s.nodeID && rec.Vector.IsZero() {
		stamped := s.nodeClock.IncrementSelf()
		rec.Vector = stamped
		s.applier.Apply(rec.Payload.Key, rec.Payload.Value)
		if s.log != nil {
			s.log.Debugf("delivered local causal write %s at %v", rec.UID, stamped)
		}
		if s.broadcast != nil {
			s.broadcast(stamped, rec.Payload)
		}
		return
	}

	if rec.Originator == s.nodeID {
		// Self-originated remote delivery: the local apply already
		// happened synchronously when this write was issued.
		return
	}

	sender := rec.Originator
	if sender < 0 || sender >= len(rec.Vector) {
		if s.log != nil {
			s.log.Warnf("dropping causal record with out-of-range sender %d", sender)
		}
		return
	}
	if rec.Vector[sender] <= s.nodeClock.At(sender) {
		// Duplicate or stale broadcast: a correct predicate would
		// require V[sender] == local[sender]+1 forever, so replaying
		// an already-seen or older stamp would stall the queue.
		if s.log != nil {
			s.log.Debugf("dropping duplicate/stale causal record from sender %d", sender)
		}
		return
	}

	s.queue.Insert(rec)
	s.loop.signal()
}

// Close stops the delivery loop and waits for it to exit.
func (s *CausalScheduler) Close() {
	s.loop.Close()
}

// ifAllowDeliver implements the causal delivery predicate of
// spec.md §4.3 for a remote record from sender s with vector V: true
// iff V[s] == localVector[s]+1 and, for every other k, V[k] <=
// localVector[k].
func (s *CausalScheduler) ifAllowDeliver(rec *Record) bool {
	v := rec.Vector
	sender := rec.Originator
	local := s.nodeClock.Snapshot()

	if v[sender] != local[sender]+1 {
		return false
	}
	for k := range v {
		if k == sender {
			continue
		}
		if v[k] > local[k] {
			return false
		}
	}
	return true
}

// run is the single background delivery loop. Because causal
// readiness is partial-ordered, every wake-up scans all pending
// records rather than only the head (spec.md §4.3).
func (s *CausalScheduler) run() {
	defer s.loop.markStopped()
	for {
		for s.deliverReadyPass() {
		}
		select {
		case <-s.loop.stop:
			return
		case <-s.loop.wake:
		}
	}
}

// deliverReadyPass scans every currently pending record once and
// delivers whichever are eligible, returning whether it delivered
// anything (so the caller can immediately re-scan — a delivery can
// unblock another record in the same queue).
func (s *CausalScheduler) deliverReadyPass() bool {
	delivered := false
	for _, rec := range s.queue.Snapshot() {
		if !s.ifAllowDeliver(rec) {
			continue
		}
		s.nodeClock.MergeMax(rec.Vector)
		s.applier.Apply(rec.Payload.Key, rec.Payload.Value)
		s.queue.Remove(rec)
		delivered = true
		if s.log != nil {
			s.log.Debugf("delivered remote causal record %s at %v", rec.UID, rec.Vector)
		}
	}
	return delivered
}
