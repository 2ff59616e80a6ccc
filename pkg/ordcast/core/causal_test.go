package core

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
)

func newTestCausalScheduler(nodeID, n int, applier Applier, broadcast BroadcastWriteFunc) (*CausalScheduler, *WaitGroupInvoker) {
	inv := NewWaitGroupInvoker()
	return NewCausalSchedulerWithInvoker(nodeID, n, applier, broadcast, nil, inv), inv
}

func TestCausalLocalWriteAppliesImmediatelyAndBroadcasts(t *testing.T) {
	defer goleak.VerifyNone(t)

	applier := newRecordingApplier()
	var broadcastVector clock.Vector
	gotBroadcast := make(chan struct{}, 1)

	s, inv := newTestCausalScheduler(0, 2, applier, func(v clock.Vector, payload Payload) {
		broadcastVector = v
		gotBroadcast <- struct{}{}
	})
	defer func() {
		s.Close()
		inv.Wait()
	}()

	rec := NewCausalRecord(0, clock.NewVector(2), Payload{Key: "x", Value: "a"})
	s.AddTask(rec)

	applier.expectDelivered(t, Payload{Key: "x", Value: "a"})

	select {
	case <-gotBroadcast:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast-write launch")
	}
	if broadcastVector[0] != 1 || broadcastVector[1] != 0 {
		t.Fatalf("expected stamped vector [1,0], got %v", broadcastVector)
	}
	if got := s.LocalVector(); got[0] != 1 || got[1] != 0 {
		t.Fatalf("expected local vector [1,0] after local issue, got %v", got)
	}
}

func TestCausalBasicCrossNodeDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Mirrors spec.md §8 scenario 4, driven directly against the
	// schedulers rather than over a transport.
	applierA := newRecordingApplier()
	applierB := newRecordingApplier()

	var nodeB *CausalScheduler
	var nodeA *CausalScheduler

	a, invA := newTestCausalScheduler(0, 2, applierA, func(v clock.Vector, payload Payload) {
		rec := NewCausalRecord(0, v, payload)
		nodeB.AddTask(rec)
	})
	b, invB := newTestCausalScheduler(1, 2, applierB, func(v clock.Vector, payload Payload) {
		rec := NewCausalRecord(1, v, payload)
		nodeA.AddTask(rec)
	})
	nodeA, nodeB = a, b
	defer func() {
		nodeA.Close()
		nodeB.Close()
		invA.Wait()
		invB.Wait()
	}()

	nodeA.AddTask(NewCausalRecord(0, clock.NewVector(2), Payload{Key: "x", Value: "a"}))
	applierA.expectDelivered(t, Payload{Key: "x", Value: "a"})
	applierB.expectDelivered(t, Payload{Key: "x", Value: "a"})

	nodeB.AddTask(NewCausalRecord(1, clock.NewVector(2), Payload{Key: "y", Value: "b"}))
	applierB.expectDelivered(t, Payload{Key: "y", Value: "b"})
	applierA.expectDelivered(t, Payload{Key: "y", Value: "b"})
}

func TestCausalReorderHold(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Spec.md §8 scenario 5: the second write from node 0 arrives at
	// node 1 before the first; node 1 must hold it until the first is
	// delivered.
	applier := newRecordingApplier()
	s, inv := newTestCausalScheduler(1, 2, applier, nil)
	defer func() {
		s.Close()
		inv.Wait()
	}()

	second := NewCausalRecord(0, clock.Vector{2, 0}, Payload{Key: "x", Value: "2"})
	s.AddTask(second)
	applier.expectNoDelivery(t)

	first := NewCausalRecord(0, clock.Vector{1, 0}, Payload{Key: "x", Value: "1"})
	s.AddTask(first)

	applier.expectDelivered(t, Payload{Key: "x", Value: "1"})
	applier.expectDelivered(t, Payload{Key: "x", Value: "2"})

	if got := s.LocalVector(); got[0] != 2 {
		t.Fatalf("expected local vector component 0 to reach 2, got %v", got)
	}
}

func TestCausalDropsStaleAndSelfOriginatedRemoteRecords(t *testing.T) {
	defer goleak.VerifyNone(t)

	applier := newRecordingApplier()
	s, inv := newTestCausalScheduler(0, 2, applier, func(clock.Vector, Payload) {})
	defer func() {
		s.Close()
		inv.Wait()
	}()

	// Local issue bumps local vector to [1,0] and applies synchronously.
	s.AddTask(NewCausalRecord(0, clock.NewVector(2), Payload{Key: "x", Value: "1"}))
	applier.expectDelivered(t, Payload{Key: "x", Value: "1"})

	// A stale replay of an already-seen stamp from node 1 must be
	// dropped silently rather than stall the queue.
	stale := NewCausalRecord(1, clock.Vector{0, 0}, Payload{Key: "y", Value: "stale"})
	s.AddTask(stale)

	// This node's own write returning to itself over the wire must be
	// discarded rather than re-applied.
	selfReturn := NewCausalRecord(0, clock.Vector{1, 0}, Payload{Key: "x", Value: "1"})
	s.AddTask(selfReturn)

	applier.expectNoDelivery(t)
	if s.queue.Len() != 0 {
		t.Fatalf("expected both dropped records to never reach the queue, got len %d", s.queue.Len())
	}
}
