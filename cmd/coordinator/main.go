// cmd/coordinator is the entrypoint for the coordinator process: it
// accepts client writes and forwards each to a uniformly randomly
// chosen worker (spec.md §1's "external collaborator" dispatch
// policy). It holds no ordering state of its own.
//
// Example:
//
//	./coordinator --addr :8080 \
//	              --workers http://localhost:9000,http://localhost:9001,http://localhost:9002
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
	"github.com/kvlabs/ordcast/internal/coordinator"
	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/internal/transport/httptransport"
)

func main() {
	cfg, err := config.ParseCoordinatorConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New("coordinator")

	client := httptransport.NewPeerClient(cfg.Workers)
	dispatcher := coordinator.NewDispatcher(len(cfg.Workers), client, log)
	srv := httptransport.NewCoordinatorServer(dispatcher, log)

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("coordinator listening on %s (workers=%d)", cfg.Addr, len(cfg.Workers))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("shutting down coordinator")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown error: %v", err)
	}
}
