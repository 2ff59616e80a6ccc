package clock

import "testing"

func TestScalarClock_IncrementStrictlyIncreases(t *testing.T) {
	c := NewScalarClock(0)
	var last uint64
	for i := 0; i < 100; i++ {
		ts := c.IncrementAndGetTimestamp()
		if ts.Counter <= last {
			t.Fatalf("counter did not strictly increase: %d after %d", ts.Counter, last)
		}
		last = ts.Counter
	}
}

func TestScalarClock_UpdateAndIncrementRespectsSender(t *testing.T) {
	c := NewScalarClock(0)
	ts := c.UpdateAndIncrementTimestamp(5)
	if ts.Counter < 6 {
		t.Fatalf("expected counter >= sender+1, got %d", ts.Counter)
	}

	// A lower sender counter must not roll the clock backwards.
	before := c.Snapshot().Counter
	ts2 := c.UpdateAndIncrementTimestamp(1)
	if ts2.Counter <= before {
		t.Fatalf("clock went backwards: before=%d after=%d", before, ts2.Counter)
	}
}

func TestScalar_LessTieBreaksOnNode(t *testing.T) {
	a := Scalar{Counter: 3, NodeID: 0}
	b := Scalar{Counter: 3, NodeID: 1}
	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if b.Less(a) {
		t.Fatalf("expected %v to not be < %v", b, a)
	}
}

func TestScalar_LessByCounter(t *testing.T) {
	a := Scalar{Counter: 3, NodeID: 1}
	b := Scalar{Counter: 4, NodeID: 0}
	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
}
