package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AvailableName returns path if nothing exists there, otherwise the first
// unused sibling formed by appending _2, _3, … to the name. For files the
// suffix goes before the extension; directory names get it at the end.
// The returned path did not exist at the time it was probed; the check is
// against the live filesystem, not a cache.
func AvailableName(path string, isDir bool) (string, error) {
	if free, err := pathFree(path); err != nil {
		return "", err
	} else if free {
		return path, nil
	}

	dir := filepath.Dir(path)
	stem := filepath.Base(path)
	ext := ""
	if !isDir {
		ext = filepath.Ext(stem)
		if ext == stem {
			ext = "" // dotfile, not an extension
		}
		stem = strings.TrimSuffix(stem, ext)
	}

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		free, err := pathFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
}

func pathFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, opErr("stat", path, err)
}
