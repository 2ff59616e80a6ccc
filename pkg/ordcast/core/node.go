package core

import (
	"context"

	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
)

// Node wires together the two scheduler variants, the outbound
// broadcaster, and the RPC-facing handlers described in spec.md §4.6.
// One Node exists per worker process; it is the glue a transport
// package calls into.
type Node struct {
	ID int
	N  int

	seq    *SequentialScheduler
	causal *CausalScheduler
	bcast  *Broadcaster
	log    logging.Logger
}

// NewNode builds a Node for a cluster of size n running as id,
// applying delivered writes to applier and reaching peers through
// client. Both schedulers start their background delivery loops
// immediately.
func NewNode(id, n int, applier Applier, client PeerClient, log logging.Logger) *Node {
	node := &Node{ID: id, N: n, log: log}
	node.bcast = NewBroadcaster(id, n, client, log)
	node.seq = NewSequentialScheduler(id, n, applier, log)
	node.causal = NewCausalScheduler(id, n, applier, func(v clock.Vector, payload Payload) {
		node.bcast.BroadcastWrite(context.Background(), Causal, 0, v, payload.Key, payload.Value, false)
	}, log)
	return node
}

// Close stops both schedulers' delivery loops.
func (n *Node) Close() {
	n.seq.Close()
	n.causal.Close()
}

// OnClientWrite handles an inbound client write (spec.md §4.6). It
// never awaits delivery: the response always reports receipt only.
func (n *Node) OnClientWrite(ctx context.Context, mode Mode, key, value string) WriteResponse {
	switch mode {
	case Sequential:
		ts := n.seq.IncrementAndGetTimestamp()
		n.bcast.BroadcastWrite(ctx, Sequential, ts.Counter, nil, key, value, true)
	case Causal:
		rec := NewCausalRecord(n.ID, clock.NewVector(n.N), Payload{Key: key, Value: value})
		n.causal.AddTask(rec)
	}
	return WriteResponse{Receiver: n.ID, Status: 0}
}

// OnBroadcastWrite handles an inbound broadcast-write from a peer
// (spec.md §4.6), including the uniform self-addressed copy sequential
// mode sends itself.
func (n *Node) OnBroadcastWrite(ctx context.Context, msg WriteBroadcast) BroadcastResponse {
	switch msg.Mode {
	case Sequential:
		n.seq.UpdateAndIncrementTimestamp(msg.SenderClock)
		ts := clock.Scalar{Counter: msg.SenderClock, NodeID: msg.Sender}
		writer := msg.Sender
		rec := NewSequentialRecord(writer, ts, Payload{Key: msg.Key, Value: msg.Value}, func() {
			own := n.seq.Snapshot()
			n.bcast.BroadcastAck(context.Background(), writer, ts, own.Counter)
		})
		n.seq.AddTask(rec)
	case Causal:
		v := clock.Vector(append([]uint64(nil), msg.VTS...))
		rec := NewCausalRecord(msg.Sender, v, Payload{Key: msg.Key, Value: msg.Value})
		n.causal.AddTask(rec)
	}
	return BroadcastResponse{Receiver: n.ID, Status: 0}
}

// OnAck handles an inbound acknowledgement (spec.md §4.6). Sequential
// only: update-and-increment the local clock, mark the ack bitmap
// slot, and let UpdateAck wake the delivery loop.
func (n *Node) OnAck(msg AckRequest) AckResponse {
	n.seq.UpdateAndIncrementTimestamp(msg.SenderClock)
	ts := clock.Scalar{Counter: msg.Clock, NodeID: msg.ID}
	n.seq.UpdateAck(ts, msg.Sender)
	return AckResponse{Receiver: n.ID, Status: 0}
}
