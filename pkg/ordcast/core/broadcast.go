package core

import (
	"context"

	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/clock"
	"github.com/ygrebnov/workers"
)

// PeerClient is the outbound RPC seam the broadcast fan-out tasks use
// to reach every other node in the cluster (spec.md §4.4/§4.5). The
// transport package supplies the concrete implementation; core stays
// transport-agnostic.
type PeerClient interface {
	SendBroadcastWrite(ctx context.Context, peer int, msg WriteBroadcast) error
	SendAck(ctx context.Context, peer int, msg AckRequest) error
}

// Broadcaster dispatches the two fan-out tasks named in spec.md §4.4
// and §4.5, one independent unit of work per peer so a single slow
// peer cannot serialize the others — grounded on workers.ForEach,
// which already runs each item on its own goroutine via the Workers
// engine.
type Broadcaster struct {
	nodeID int
	peers  []int
	client PeerClient
	log    logging.Logger
}

// NewBroadcaster builds a broadcaster for a cluster of size n.
func NewBroadcaster(nodeID, n int, client PeerClient, log logging.Logger) *Broadcaster {
	peers := make([]int, n)
	for i := range peers {
		peers[i] = i
	}
	return &Broadcaster{nodeID: nodeID, peers: peers, client: client, log: log}
}

// targets returns the peer list to fan out to. Sequential mode sends
// the broadcast-write and the ack to itself too, so the local record
// and the local ack traverse the same wire code path as a remote
// peer's (spec.md §7's "self-broadcast" note); causal mode excludes
// self, since a locally-issued write is already applied synchronously.
func (b *Broadcaster) targets(includeSelf bool) []int {
	if includeSelf {
		return b.peers
	}
	out := make([]int, 0, len(b.peers)-1)
	for _, p := range b.peers {
		if p != b.nodeID {
			out = append(out, p)
		}
	}
	return out
}

// BroadcastWrite fans the write out to every target peer (spec.md
// §4.4). vts is non-nil only for causal mode. Individual RPC failures
// are logged and ignored; the call never awaits quorum.
func (b *Broadcaster) BroadcastWrite(ctx context.Context, mode Mode, senderClock uint64, vts clock.Vector, key, value string, includeSelf bool) {
	msg := WriteBroadcast{
		Mode:        mode,
		Sender:      b.nodeID,
		SenderClock: senderClock,
		VTS:         []uint64(vts),
		Key:         key,
		Value:       value,
	}
	_ = workers.ForEach(ctx, b.targets(includeSelf), func(c context.Context, peer int) error {
		if err := b.client.SendBroadcastWrite(c, peer, msg); err != nil && b.log != nil {
			b.log.Warnf("broadcast-write to peer %d failed: %v", peer, err)
		}
		return nil
	})
}

// BroadcastAck fans an acknowledgement of (writerNode, ts) out to
// every peer including self (spec.md §4.5), fired exactly once per
// record by the sequential scheduler's ifAllowDeliver gate.
func (b *Broadcaster) BroadcastAck(ctx context.Context, writerNode int, ts clock.Scalar, senderClock uint64) {
	msg := AckRequest{
		Mode:        Sequential,
		Sender:      b.nodeID,
		SenderClock: senderClock,
		Clock:       ts.Counter,
		ID:          writerNode,
	}
	_ = workers.ForEach(ctx, b.targets(true), func(c context.Context, peer int) error {
		if err := b.client.SendAck(c, peer, msg); err != nil && b.log != nil {
			b.log.Warnf("broadcast-ack to peer %d failed: %v", peer, err)
		}
		return nil
	})
}
