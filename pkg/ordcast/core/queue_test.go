package core

import (
	"testing"

	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
)

func TestSequentialQueueOrdersByScalarThenNode(t *testing.T) {
	q := newSequentialQueue()

	r1 := NewSequentialRecord(1, clock.Scalar{Counter: 3, NodeID: 1}, Payload{Key: "a"}, nil)
	r0 := NewSequentialRecord(0, clock.Scalar{Counter: 3, NodeID: 0}, Payload{Key: "b"}, nil)
	r2 := NewSequentialRecord(0, clock.Scalar{Counter: 1, NodeID: 0}, Payload{Key: "c"}, nil)

	q.Insert(r1)
	q.Insert(r0)
	q.Insert(r2)

	if head := q.Head(); head != r2 {
		t.Fatalf("expected lowest counter (1.0) at head, got %+v", head.Scalar)
	}
	if !q.PopIfHead(r2) {
		t.Fatal("expected to pop the current head")
	}

	if head := q.Head(); head != r0 {
		t.Fatalf("expected tie broken by node id (3.0 before 3.1), got %+v", head.Scalar)
	}
}

func TestSequentialQueuePopIfHeadRejectsStaleIdentity(t *testing.T) {
	q := newSequentialQueue()
	r0 := NewSequentialRecord(0, clock.Scalar{Counter: 1, NodeID: 0}, Payload{}, nil)
	r1 := NewSequentialRecord(1, clock.Scalar{Counter: 2, NodeID: 0}, Payload{}, nil)

	q.Insert(r0)
	q.Insert(r1)

	if q.PopIfHead(r1) {
		t.Fatal("expected PopIfHead to reject a record that is not the current head")
	}
	if q.Len() != 2 {
		t.Fatalf("expected queue untouched after a rejected pop, got len %d", q.Len())
	}
}

func TestCausalQueueSnapshotIsIndependentCopy(t *testing.T) {
	q := newCausalQueue()
	r := NewCausalRecord(0, clock.Vector{1, 0}, Payload{Key: "x"})
	q.Insert(r)

	snap := q.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected snapshot of length 1, got %d", len(snap))
	}

	q.Remove(r)
	if len(snap) != 1 || snap[0] != r {
		t.Fatal("expected earlier snapshot to be unaffected by a later Remove")
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue empty after Remove, got len %d", q.Len())
	}
}
