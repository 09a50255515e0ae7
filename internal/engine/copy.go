package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// copyFile copies src to dst byte-for-byte. Data is written to a uniquely
// named tmp file in the destination directory and renamed into place, so a
// failed copy never leaves a truncated file at dst. dst must not exist.
func copyFile(src, dst string, preserveTimes bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return opErr("stat", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return opErr("open", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return opErr("mkdir", dir, err)
	}

	tmpName := fmt.Sprintf(".%s.%s.gather-tmp", filepath.Base(dst), uuid.New().String()[:8])
	tmpPath := filepath.Join(dir, tmpName)

	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return opErr("create", tmpPath, err)
	}
	defer func() {
		_ = os.Remove(tmpPath) // no-op if the rename succeeded
	}()

	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		return opErr("copy", src, err)
	}

	if preserveTimes {
		if err := setFileTimes(out, info); err != nil {
			out.Close()
			return opErr("utimes", dst, err)
		}
	}

	if err := out.Close(); err != nil {
		return opErr("close", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return opErr("rename", dst, err)
	}
	return nil
}

func setFileTimes(fd *os.File, info os.FileInfo) error {
	atime := info.ModTime()
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		atime = atimeFromStat(stat)
	}

	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(info.ModTime().UnixNano()),
	}
	rawFd := int(fd.Fd())
	if err := unix.UtimesNanoAt(rawFd, "", times, unix.AT_EMPTY_PATH); err != nil {
		// Fallback: some systems don't support AT_EMPTY_PATH.
		if err2 := unix.UtimesNanoAt(unix.AT_FDCWD, fd.Name(), times, 0); err2 != nil {
			return fmt.Errorf("utimensat: %w", err)
		}
	}
	return nil
}
