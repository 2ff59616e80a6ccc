// Package coordinator implements the request-dispatch policy spec.md
// §1 names as an external collaborator: routing each client write to a
// uniformly randomly chosen worker. It carries no ordering logic of
// its own.
package coordinator

import (
	"context"
	"math/rand"

	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/core"
)

// Forwarder is the narrow seam the coordinator uses to relay a write
// to a chosen worker, implemented by httptransport.PeerClient.
type Forwarder interface {
	ForwardClientWrite(ctx context.Context, worker int, req core.WriteRequest) (core.WriteResponse, error)
}

// Dispatcher picks a worker uniformly at random for each incoming
// client write and forwards it.
type Dispatcher struct {
	n         int
	forwarder Forwarder
	log       logging.Logger
}

// NewDispatcher builds a Dispatcher over a cluster of n workers.
func NewDispatcher(n int, forwarder Forwarder, log logging.Logger) *Dispatcher {
	return &Dispatcher{n: n, forwarder: forwarder, log: log}
}

// Dispatch forwards req to a uniformly randomly chosen worker and
// returns its response.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.WriteRequest) (core.WriteResponse, error) {
	worker := rand.Intn(d.n)
	if d.log != nil {
		d.log.Debugf("dispatching %s write for key %q to worker %d", req.Mode, req.Key, worker)
	}
	return d.forwarder.ForwardClientWrite(ctx, worker, req)
}
