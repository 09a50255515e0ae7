package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/gatherfs/gather/internal/event"
)

type merger struct {
	cfg Config
}

// workItem is a pending (source directory, destination directory) pair.
// The walk uses an explicit stack rather than recursion so adversarially
// deep trees cannot exhaust the call stack.
type workItem struct {
	srcDir string
	dstDir string
}

// mergeRoot merges the children of one source root into the destination
// root. A missing or unreadable root is counted and skipped; only context
// cancellation propagates.
func (m *merger) mergeRoot(ctx context.Context, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		m.fail(src, opErr("stat", src, err))
		return nil
	}
	if !info.IsDir() {
		m.fail(src, &OpError{Op: "stat", Path: src, Kind: KindIO, Err: errors.New("not a directory")})
		return nil
	}

	stack := []workItem{{srcDir: src, dstDir: m.cfg.Dest}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := os.ReadDir(item.srcDir)
		if err != nil {
			m.fail(item.srcDir, opErr("readdir", item.srcDir, err))
			continue
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			srcPath := filepath.Join(item.srcDir, entry.Name())
			dstPath := filepath.Join(item.dstDir, entry.Name())

			switch {
			case entry.IsDir():
				if dstDir, ok := m.enterDir(dstPath); ok {
					stack = append(stack, workItem{srcDir: srcPath, dstDir: dstDir})
				}
			case entry.Type().IsRegular():
				m.mergeFile(srcPath, dstPath)
			default:
				// Symlinks, sockets and devices are not consolidated.
			}
		}
	}
	return nil
}

// enterDir resolves the destination directory for an incoming source
// directory and creates it. An existing directory at dst means a name
// collision with an entry from another root or a prior item: the whole
// incoming directory moves to the first free sibling name, its contents
// are never interleaved into the existing one.
func (m *merger) enterDir(dst string) (string, bool) {
	free, err := pathFree(dst)
	if err != nil {
		m.fail(dst, err)
		return "", false
	}

	if free {
		m.cfg.Stats.AddDirsCreated(1)
		m.cfg.emit(event.Event{Type: event.DirCreated, Path: dst, Detail: true})
	} else {
		renamed, err := AvailableName(dst, true)
		if err != nil {
			m.fail(dst, err)
			return "", false
		}
		m.cfg.Stats.AddDirsRenamed(1)
		m.cfg.emit(event.Event{Type: event.DirRenamed, Path: dst, NewPath: renamed})
		dst = renamed
	}

	if !m.cfg.DryRun {
		if err := os.MkdirAll(dst, 0755); err != nil {
			m.fail(dst, opErr("mkdir", dst, err))
			return "", false
		}
	}
	return dst, true
}

// mergeFile applies the file rule for source file src destined for dst:
// copy when dst is missing, skip when dst holds identical bytes, otherwise
// copy to the first free sibling name.
func (m *merger) mergeFile(src, dst string) {
	free, err := pathFree(dst)
	if err != nil {
		m.fail(dst, err)
		return
	}

	if free {
		if !m.cfg.DryRun {
			if err := copyFile(src, dst, m.cfg.PreserveTimes); err != nil {
				m.fail(dst, err)
				return
			}
		}
		m.cfg.Stats.AddFilesCopied(1)
		m.cfg.emit(event.Event{Type: event.FileCopied, Path: dst, Detail: true})
		return
	}

	same, err := SameContent(src, dst)
	if err != nil {
		// Unverifiable pair: logged, then treated as not identical so the
		// rename branch below preserves the data instead of skipping it.
		m.cfg.emit(event.Event{Type: event.OpFailed, Path: dst, Err: err, Detail: true})
	}
	if same {
		m.cfg.Stats.AddFilesSkipped(1)
		m.cfg.emit(event.Event{Type: event.FileSkipped, Path: dst, Detail: true})
		return
	}

	renamed, err := AvailableName(dst, false)
	if err != nil {
		m.fail(dst, err)
		return
	}
	if !m.cfg.DryRun {
		if err := copyFile(src, renamed, m.cfg.PreserveTimes); err != nil {
			m.fail(renamed, err)
			return
		}
	}
	m.cfg.Stats.AddFilesRenamed(1)
	m.cfg.emit(event.Event{Type: event.FileRenamed, Path: dst, NewPath: renamed})
}

func (m *merger) fail(path string, err error) {
	m.cfg.Stats.AddErrors(1)
	m.cfg.emit(event.Event{Type: event.OpFailed, Path: path, Err: err})
}
