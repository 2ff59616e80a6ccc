package coordinator

import (
	"context"
	"testing"

	"github.com/kvlabs/ordcast/pkg/ordcast/core"
)

type fakeForwarder struct {
	seen []int
}

func (f *fakeForwarder) ForwardClientWrite(_ context.Context, worker int, req core.WriteRequest) (core.WriteResponse, error) {
	f.seen = append(f.seen, worker)
	return core.WriteResponse{Receiver: worker, Status: 0}, nil
}

func TestDispatchPicksWorkerWithinRange(t *testing.T) {
	forwarder := &fakeForwarder{}
	d := NewDispatcher(4, forwarder, nil)

	for i := 0; i < 50; i++ {
		resp, err := d.Dispatch(context.Background(), core.WriteRequest{Mode: core.Sequential, Key: "x", Value: "1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Receiver < 0 || resp.Receiver >= 4 {
			t.Fatalf("expected receiver in [0,4), got %d", resp.Receiver)
		}
	}

	for _, w := range forwarder.seen {
		if w < 0 || w >= 4 {
			t.Fatalf("expected forwarded worker in [0,4), got %d", w)
		}
	}
}
