package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks run statistics using atomic counters. A Collector is
// owned by a single engine run and read as a Snapshot when the run ends.
type Collector struct {
	dirsCreated  atomic.Int64
	dirsRenamed  atomic.Int64
	filesCopied  atomic.Int64
	filesRenamed atomic.Int64
	filesSkipped atomic.Int64
	dirsPruned   atomic.Int64
	errors       atomic.Int64
	startTime    time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddDirsCreated(n int64)  { c.dirsCreated.Add(n) }
func (c *Collector) AddDirsRenamed(n int64)  { c.dirsRenamed.Add(n) }
func (c *Collector) AddFilesCopied(n int64)  { c.filesCopied.Add(n) }
func (c *Collector) AddFilesRenamed(n int64) { c.filesRenamed.Add(n) }
func (c *Collector) AddFilesSkipped(n int64) { c.filesSkipped.Add(n) }
func (c *Collector) AddDirsPruned(n int64)   { c.dirsPruned.Add(n) }
func (c *Collector) AddErrors(n int64)       { c.errors.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	DirsCreated  int64
	DirsRenamed  int64
	FilesCopied  int64
	FilesRenamed int64
	FilesSkipped int64
	DirsPruned   int64
	Errors       int64
	Elapsed      time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		DirsCreated:  c.dirsCreated.Load(),
		DirsRenamed:  c.dirsRenamed.Load(),
		FilesCopied:  c.filesCopied.Load(),
		FilesRenamed: c.filesRenamed.Load(),
		FilesSkipped: c.filesSkipped.Load(),
		DirsPruned:   c.dirsPruned.Load(),
		Errors:       c.errors.Load(),
		Elapsed:      c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"dirs=%d dirs_renamed=%d copied=%d renamed=%d skipped=%d pruned=%d errors=%d",
		s.DirsCreated, s.DirsRenamed, s.FilesCopied, s.FilesRenamed,
		s.FilesSkipped, s.DirsPruned, s.Errors,
	)
}
