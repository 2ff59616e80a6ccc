// Package httptransport implements the wire messages of spec.md §6 as
// JSON over HTTP, using gin on the server side, grounded on
// ppriyankuu-godkv's internal/api package. The teacher's own RPC
// transport (pkg/mcast/core/transport.go, backed by the unfetchable
// github.com/jabolina/relt) is rebuilt here on gin + net/http instead.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	plog "github.com/prometheus/common/log"

	"github.com/kvlabs/ordcast/pkg/ordcast/core"
)

// PeerClient implements core.PeerClient over JSON HTTP. addrs[i] is
// the base URL ("http://host:port") of the peer with node id i,
// including this node's own address for sequential's self-broadcast.
type PeerClient struct {
	addrs []string
	hc    *http.Client
}

// NewPeerClient builds a client addressing the given peer base URLs.
func NewPeerClient(addrs []string) *PeerClient {
	return &PeerClient{
		addrs: addrs,
		hc:    &http.Client{Timeout: 5 * time.Second},
	}
}

// SendBroadcastWrite implements core.PeerClient.
func (c *PeerClient) SendBroadcastWrite(ctx context.Context, peer int, msg core.WriteBroadcast) error {
	var out core.BroadcastResponse
	return c.post(ctx, peer, "/internal/broadcast-write", msg, &out)
}

// SendAck implements core.PeerClient.
func (c *PeerClient) SendAck(ctx context.Context, peer int, msg core.AckRequest) error {
	var out core.AckResponse
	return c.post(ctx, peer, "/internal/ack", msg, &out)
}

// ForwardClientWrite relays a client write to the chosen worker's
// public /write endpoint. Used by the coordinator's dispatch policy,
// not by the scheduler's own broadcast fan-out.
func (c *PeerClient) ForwardClientWrite(ctx context.Context, worker int, req core.WriteRequest) (core.WriteResponse, error) {
	var out core.WriteResponse
	err := c.post(ctx, worker, "/write", req, &out)
	return out, err
}

func (c *PeerClient) post(ctx context.Context, peer int, path string, body, out interface{}) error {
	if peer < 0 || peer >= len(c.addrs) {
		return fmt.Errorf("httptransport: unknown peer %d", peer)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		plog.Errorf("failed marshalling request to peer %d: %v", peer, err)
		return err
	}

	url := c.addrs[peer] + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		plog.Errorf("failed sending request to peer %d at %s: %v", peer, url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httptransport: peer %d returned status %d", peer, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
