package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
)

// RecordState is the explicit state tag for a sequential pending-write
// record's lifecycle, replacing the teacher's pair of mutable flags
// (bcastAckTask handle + bcastCount) with a single local value so the
// "fire acks exactly once" invariant is testable in isolation, per the
// design notes in spec.md §9.
type RecordState int32

const (
	// StateEnqueued: bitmap absent or incomplete, acks not yet requested.
	StateEnqueued RecordState = iota
	// StateAcksRequested: the broadcast-ack task fired exactly once.
	StateAcksRequested
	// StateReady: the ack bitmap is complete; deliverable once at head.
	StateReady
	// StateDelivered: terminal.
	StateDelivered
)

// Payload is the key/value pair carried by a write.
type Payload struct {
	Key   string
	Value string
}

// Record is a pending-write record: the message, its originator
// timestamp, and ordering metadata. It is created by the bcast-write
// handler and destroyed (in the sense of being dequeued) once
// delivered. While enqueued it is exclusively owned by its scheduler,
// but its fields are still mutated concurrently by RPC handlers
// (onAck, onBroadcastWrite) and read by the delivery loop, so every
// access to mutable state goes through the mutex.
type Record struct {
	mu sync.Mutex

	// UID is only used for logging/tracing; it plays no role in
	// ordering.
	UID string

	Originator int
	Payload    Payload

	// Sequential stamp.
	Scalar clock.Scalar
	state  RecordState

	// Causal stamp.
	Vector clock.Vector

	// ackTask fires the broadcast-ack fan-out exactly once, the
	// instant the record is first inspected at the queue head.
	ackTask func()
}

// NewSequentialRecord builds a pending record for the sequential
// discipline. ackTask may be nil for a record that should never
// request acks (used only in tests).
func NewSequentialRecord(originator int, ts clock.Scalar, payload Payload, ackTask func()) *Record {
	return &Record{
		UID:        uuid.NewString(),
		Originator: originator,
		Payload:    payload,
		Scalar:     ts,
		state:      StateEnqueued,
		ackTask:    ackTask,
	}
}

// NewCausalRecord builds a pending record for the causal discipline.
func NewCausalRecord(originator int, v clock.Vector, payload Payload) *Record {
	return &Record{
		UID:        uuid.NewString(),
		Originator: originator,
		Payload:    payload,
		Vector:     v,
	}
}

// MessageID returns the sequential ack-table key "<counter>.<nodeId>"
// described in spec.md §3/§6.
func (r *Record) MessageID() string {
	return MessageID(r.Scalar)
}

// MessageID formats the ack-table identity string for a scalar stamp.
func MessageID(ts clock.Scalar) string {
	return fmt.Sprintf("%d.%d", ts.Counter, ts.NodeID)
}

// State returns the current lifecycle state under lock.
func (r *Record) State() RecordState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// requestAcksOnce fires ackTask the first time it is called and
// reports whether this call was the one that fired it. Subsequent
// calls are no-ops. This is the "bcastCount" gate from spec.md §4.2,
// now expressed as a single state transition instead of a counter.
func (r *Record) requestAcksOnce() bool {
	r.mu.Lock()
	if r.state != StateEnqueued {
		r.mu.Unlock()
		return false
	}
	r.state = StateAcksRequested
	task := r.ackTask
	r.mu.Unlock()

	if task != nil {
		task()
	}
	return true
}

// markReady transitions the record to StateReady once its ack bitmap
// has completed. Valid from any prior state except StateDelivered.
func (r *Record) markReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateDelivered {
		r.state = StateReady
	}
}

// markDelivered transitions the record to the terminal state.
func (r *Record) markDelivered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateDelivered
}
