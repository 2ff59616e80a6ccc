package core

import (
	"sync"
)

// Applier is the store's write side, as seen by the delivery loop.
// The data store itself is an external collaborator (spec.md §1); this
// is the narrow seam the scheduler uses to apply a delivered write.
type Applier interface {
	Apply(key, value string)
}

// Scheduler owns a priority queue of pending deliveries and a single
// background delivery loop, per spec.md §4.1. AddTask never blocks on
// delivery and is safe under concurrent callers; the delivery loop
// runs on its own goroutine for the lifetime of the scheduler.
type Scheduler interface {
	// AddTask atomically inserts rec into the queue in priority order.
	AddTask(rec *Record)

	// Close stops the delivery loop and waits for it to exit.
	Close()
}

// loopControl is the wake/stop plumbing shared by both scheduler
// variants: a single delivery goroutine that wakes on every enqueue
// and ack update, and drains cleanly on Close. Mirrors the teacher's
// Peer.poll select-loop shape (core/peer.go), generalized so both
// schedulers can reuse it instead of duplicating the control flow.
type loopControl struct {
	wake      chan struct{}
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newLoopControl() *loopControl {
	return &loopControl{
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// signal wakes the delivery loop if it is sleeping. Non-blocking: a
// loop that is already awake and about to re-scan will simply observe
// the condition that caused this call.
func (l *loopControl) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Close requests the delivery loop to stop and blocks until it has.
func (l *loopControl) Close() {
	l.closeOnce.Do(func() {
		close(l.stop)
	})
	<-l.stopped
}

func (l *loopControl) markStopped() {
	close(l.stopped)
}
