// cmd/worker is the entrypoint for a single ordcast worker: it hosts
// one scheduler pair (sequential + causal) and the store behind them,
// and speaks the wire protocol of spec.md §6 to its peers and to the
// coordinator. Configuration is entirely via flags, following
// ppriyankuu-godkv/cmd/server/main.go.
//
// Example — 3-node cluster, node 0:
//
//	./worker --id 0 --addr :9000 \
//	         --peers http://localhost:9000,http://localhost:9001,http://localhost:9002
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvlabs/ordcast/internal/config"
	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/internal/transport/httptransport"
	"github.com/kvlabs/ordcast/pkg/ordcast/core"
	"github.com/kvlabs/ordcast/pkg/ordcast/store"
)

func main() {
	cfg, err := config.ParseWorkerConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(fmt.Sprintf("worker-%d", cfg.ID))

	st := store.New()
	client := httptransport.NewPeerClient(cfg.Peers)
	node := core.NewNode(cfg.ID, cfg.N(), st, client, log)
	defer node.Close()

	srv := httptransport.NewServer(node, st, log)
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("worker %d listening on %s (N=%d)", cfg.ID, cfg.Addr, cfg.N())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("shutting down worker %d", cfg.ID)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown error: %v", err)
	}
}
