package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gatherfs/gather/internal/event"
	"github.com/gatherfs/gather/internal/stats"
)

// PruneConfig controls an empty-directory pruning pass.
type PruneConfig struct {
	Root        string
	IncludeRoot bool
	DryRun      bool
	Events      chan<- event.Event
	Stats       *stats.Collector
}

func (c PruneConfig) emit(e event.Event) {
	if c.Events == nil {
		return
	}
	select {
	case c.Events <- e:
	default:
	}
}

type pruneCandidate struct {
	path  string
	depth int
}

// Prune deletes every directory under cfg.Root whose subtree contains no
// regular files; a directory holding only empty directories is itself
// empty. Candidates are processed in strictly decreasing path depth, so a
// removed child makes its parent removable in the same pass. Removing an
// empty directory never changes whether an ancestor contains a file, so
// emptiness is computed once up front. Returns the number of directories
// pruned.
func Prune(ctx context.Context, cfg PruneConfig) (int, error) {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		cfg.Stats.AddErrors(1)
		werr := opErr("stat", cfg.Root, err)
		cfg.emit(event.Event{Type: event.OpFailed, Path: cfg.Root, Err: werr})
		return 0, werr
	}
	if !info.IsDir() {
		cfg.Stats.AddErrors(1)
		werr := &OpError{Op: "stat", Path: cfg.Root, Kind: KindIO, Err: errors.New("not a directory")}
		cfg.emit(event.Event{Type: event.OpFailed, Path: cfg.Root, Err: werr})
		return 0, werr
	}

	candidates := collectDirs(cfg)

	// Deepest first. Ties break on reverse-lexicographic path so children
	// always precede their parent.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].depth != candidates[j].depth {
			return candidates[i].depth > candidates[j].depth
		}
		return candidates[i].path > candidates[j].path
	})

	pruned := 0
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}

		empty, err := subtreeEmpty(cand.path)
		if err != nil {
			cfg.Stats.AddErrors(1)
			cfg.emit(event.Event{Type: event.OpFailed, Path: cand.path, Err: err})
			continue
		}
		if !empty {
			continue
		}

		if !cfg.DryRun {
			// May fail if something landed in the directory since the scan;
			// tolerated, counted, never retried.
			if err := os.Remove(cand.path); err != nil {
				cfg.Stats.AddErrors(1)
				cfg.emit(event.Event{Type: event.OpFailed, Path: cand.path, Err: opErr("rmdir", cand.path, err)})
				continue
			}
		}
		cfg.Stats.AddDirsPruned(1)
		cfg.emit(event.Event{Type: event.DirPruned, Path: cand.path})
		pruned++
	}
	return pruned, nil
}

// collectDirs enumerates every directory below the root (the root itself
// only when IncludeRoot is set), with depth measured in path segments.
// Unreadable subtrees are counted and skipped.
func collectDirs(cfg PruneConfig) []pruneCandidate {
	var candidates []pruneCandidate

	root := filepath.Clean(cfg.Root)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			cfg.Stats.AddErrors(1)
			cfg.emit(event.Event{Type: event.OpFailed, Path: path, Err: opErr("walk", path, err)})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == root && !cfg.IncludeRoot {
			return nil
		}
		candidates = append(candidates, pruneCandidate{path: path, depth: pathDepth(path)})
		return nil
	})
	return candidates
}

// subtreeEmpty reports whether the directory's subtree contains no regular
// files anywhere.
func subtreeEmpty(dir string) (bool, error) {
	empty := true
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return opErr("walk", path, err)
		}
		if d.Type().IsRegular() {
			empty = false
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return empty, nil
}

func pathDepth(path string) int {
	return strings.Count(filepath.ToSlash(filepath.Clean(path)), "/")
}
