// Package clock implements the two logical-timestamp disciplines used
// by the scheduler: a scalar Lamport clock for the sequential total
// order, and a vector clock for the causal partial order. Both share
// the increment/merge/compare shape described as a single capability
// set in the design notes, but are kept as distinct concrete types
// since their comparison semantics differ (total vs. partial order).
package clock

import "sync"

// Scalar is a Lamport timestamp: a monotonically increasing counter
// paired with the id of the node that produced it. Ties between equal
// counters are broken by NodeID.
type Scalar struct {
	Counter uint64
	NodeID  int
}

// Less reports whether s sorts before other under the scheduler's
// comparator: counter ascending, ties broken by node id ascending.
func (s Scalar) Less(other Scalar) bool {
	if s.Counter != other.Counter {
		return s.Counter < other.Counter
	}
	return s.NodeID < other.NodeID
}

// Equal reports whether s and other identify the same message.
func (s Scalar) Equal(other Scalar) bool {
	return s.Counter == other.Counter && s.NodeID == other.NodeID
}

// ScalarClock is the mutable local clock of a node running the
// sequential discipline. All mutation happens under a single lock
// covering read-modify-write, matching the concurrency model in
// spec.md §5.
type ScalarClock struct {
	mu      sync.Mutex
	counter uint64
	nodeID  int
}

// NewScalarClock creates a clock for the given node id, starting at
// counter zero.
func NewScalarClock(nodeID int) *ScalarClock {
	return &ScalarClock{nodeID: nodeID}
}

// IncrementAndGetTimestamp increments the local counter and returns a
// snapshot. Used when a client write is issued locally, before the
// broadcast-write fan-out.
func (c *ScalarClock) IncrementAndGetTimestamp() Scalar {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return Scalar{Counter: c.counter, NodeID: c.nodeID}
}

// UpdateAndIncrementTimestamp sets the local counter to
// max(local, senderCounter) + 1. Used whenever a broadcast-write or
// ack is received.
func (c *ScalarClock) UpdateAndIncrementTimestamp(senderCounter uint64) Scalar {
	c.mu.Lock()
	defer c.mu.Unlock()
	if senderCounter > c.counter {
		c.counter = senderCounter
	}
	c.counter++
	return Scalar{Counter: c.counter, NodeID: c.nodeID}
}

// Snapshot returns the current timestamp without mutating the clock.
func (c *ScalarClock) Snapshot() Scalar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Scalar{Counter: c.counter, NodeID: c.nodeID}
}

// NodeID returns the id this clock was created for.
func (c *ScalarClock) NodeID() int {
	return c.nodeID
}
