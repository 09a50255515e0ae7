package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gatherfs/gather/internal/event"
	"github.com/gatherfs/gather/internal/stats"
)

// Config describes a consolidation run.
type Config struct {
	Dest          string
	Sources       []string
	DryRun        bool
	PreserveTimes bool
	Events        chan<- event.Event
	Stats         *stats.Collector
}

func (c Config) emit(e event.Event) {
	if c.Events == nil {
		return
	}
	select {
	case c.Events <- e:
	default:
	}
}

// Result is the outcome of a run.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Run merges every source root into the destination, blocking until
// complete. Per-entry failures are counted and emitted, never fatal; the
// returned error is set only for misconfiguration or cancellation.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Dest == "" {
		return Result{Err: errors.New("no destination configured")}
	}
	if len(cfg.Sources) == 0 {
		return Result{Err: errors.New("no sources configured")}
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	// The destination root is created once and reused across all source
	// roots; it is never subject to conflict renaming.
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.Dest, 0755); err != nil {
			return Result{Err: fmt.Errorf("create destination: %w", err)}
		}
	}

	m := &merger{cfg: cfg}
	for _, src := range cfg.Sources {
		if err := m.mergeRoot(ctx, src); err != nil {
			return Result{Stats: cfg.Stats.Snapshot(), Err: err}
		}
	}
	return Result{Stats: cfg.Stats.Snapshot()}
}
