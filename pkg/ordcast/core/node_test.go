package core

import (
	"context"
	"testing"
	"time"

	"github.com/kvlabs/ordcast/pkg/ordcast/store"
)

// loopbackClient routes peer RPCs directly to in-process Nodes,
// standing in for an httptransport.PeerClient in tests that exercise
// the full Node wiring (spec.md §8 scenario 1) without a real network.
type loopbackClient struct {
	nodes []*Node
}

func (c *loopbackClient) SendBroadcastWrite(ctx context.Context, peer int, msg WriteBroadcast) error {
	c.nodes[peer].OnBroadcastWrite(ctx, msg)
	return nil
}

func (c *loopbackClient) SendAck(ctx context.Context, peer int, msg AckRequest) error {
	c.nodes[peer].OnAck(msg)
	return nil
}

func waitForValue(t *testing.T, st *store.Store, key, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := st.Get(key); ok && v == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for store key %q to become %q", key, want)
}

func TestTwoNodeSequentialTotalOrderEndToEnd(t *testing.T) {
	client := &loopbackClient{}
	storeA := store.New()
	storeB := store.New()

	nodeA := NewNode(0, 2, storeA, client, nil)
	nodeB := NewNode(1, 2, storeB, client, nil)
	client.nodes = []*Node{nodeA, nodeB}
	defer nodeA.Close()
	defer nodeB.Close()

	ctx := context.Background()
	nodeA.OnClientWrite(ctx, Sequential, "x", "1")
	nodeB.OnClientWrite(ctx, Sequential, "y", "2")

	waitForValue(t, storeA, "x", "1")
	waitForValue(t, storeA, "y", "2")
	waitForValue(t, storeB, "x", "1")
	waitForValue(t, storeB, "y", "2")
}

func TestTwoNodeCausalEndToEnd(t *testing.T) {
	client := &loopbackClient{}
	storeA := store.New()
	storeB := store.New()

	nodeA := NewNode(0, 2, storeA, client, nil)
	nodeB := NewNode(1, 2, storeB, client, nil)
	client.nodes = []*Node{nodeA, nodeB}
	defer nodeA.Close()
	defer nodeB.Close()

	ctx := context.Background()
	nodeA.OnClientWrite(ctx, Causal, "x", "a")
	waitForValue(t, storeB, "x", "a")

	nodeB.OnClientWrite(ctx, Causal, "y", "b")
	waitForValue(t, storeA, "y", "b")
}
