// Package config loads cluster configuration once at process startup,
// following ppriyankuu-godkv/cmd/server/main.go's flag-based bootstrap
// (the teacher has no config loader of its own beyond its
// BaseConfiguration/ClusterConfiguration literals). The worker list is
// fixed for the lifetime of the process: spec.md carries no membership
// changes.
package config

import (
	"flag"
	"fmt"
	"strings"
)

// WorkerConfig is the configuration a worker process needs: its own
// index in the ordered peer list, its listen address, and the full,
// ordered list of peer base URLs (peer i is reached at Peers[i]; this
// node's own entry, Peers[ID], is included so sequential's
// self-broadcast dials itself over the same code path).
type WorkerConfig struct {
	ID    int
	Addr  string
	Peers []string
}

// N reports the cluster size.
func (c *WorkerConfig) N() int {
	return len(c.Peers)
}

// CoordinatorConfig is the configuration the coordinator process
// needs: its own listen address, and the ordered list of worker base
// URLs it dispatches client writes to.
type CoordinatorConfig struct {
	Addr    string
	Workers []string
}

// ParseWorkerConfig parses args (typically os.Args[1:]) into a
// WorkerConfig.
//
// Flags:
//
//	--id        this node's index in --peers (required)
//	--addr      listen address, e.g. ":9000" (required)
//	--peers     comma-separated, ordered base URLs of every worker,
//	            including this one, e.g.
//	            "http://localhost:9000,http://localhost:9001"
func ParseWorkerConfig(args []string) (*WorkerConfig, error) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	id := fs.Int("id", -1, "this node's index in --peers")
	addr := fs.String("addr", "", "listen address, e.g. :9000")
	peers := fs.String("peers", "", "comma-separated ordered worker base URLs, including this one")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *addr == "" {
		return nil, fmt.Errorf("config: --addr is required")
	}
	peerList := splitNonEmpty(*peers)
	if len(peerList) == 0 {
		return nil, fmt.Errorf("config: --peers must name at least one worker")
	}
	if *id < 0 || *id >= len(peerList) {
		return nil, fmt.Errorf("config: --id %d out of range for %d peers", *id, len(peerList))
	}

	return &WorkerConfig{ID: *id, Addr: *addr, Peers: peerList}, nil
}

// ParseCoordinatorConfig parses args into a CoordinatorConfig.
//
// Flags:
//
//	--addr      listen address, e.g. ":8080" (required)
//	--workers   comma-separated, ordered base URLs of every worker
func ParseCoordinatorConfig(args []string) (*CoordinatorConfig, error) {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address, e.g. :8080")
	workers := fs.String("workers", "", "comma-separated ordered worker base URLs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *addr == "" {
		return nil, fmt.Errorf("config: --addr is required")
	}
	workerList := splitNonEmpty(*workers)
	if len(workerList) == 0 {
		return nil, fmt.Errorf("config: --workers must name at least one worker")
	}

	return &CoordinatorConfig{Addr: *addr, Workers: workerList}, nil
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
