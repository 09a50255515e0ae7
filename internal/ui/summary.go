package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gatherfs/gather/internal/stats"
)

// Summary renders the end-of-run statistics block.
func Summary(s stats.Snapshot) string {
	var b strings.Builder
	b.WriteString("statistics:\n")
	fmt.Fprintf(&b, "  dirs created:   %s\n", FormatCount(s.DirsCreated))
	fmt.Fprintf(&b, "  dirs renamed:   %s\n", FormatCount(s.DirsRenamed))
	fmt.Fprintf(&b, "  files copied:   %s\n", FormatCount(s.FilesCopied))
	fmt.Fprintf(&b, "  files renamed:  %s\n", FormatCount(s.FilesRenamed))
	fmt.Fprintf(&b, "  files skipped:  %s\n", FormatCount(s.FilesSkipped))
	fmt.Fprintf(&b, "  dirs pruned:    %s\n", FormatCount(s.DirsPruned))
	fmt.Fprintf(&b, "  errors:         %s\n", FormatCount(s.Errors))
	fmt.Fprintf(&b, "  elapsed:        %s", FormatElapsed(s.Elapsed))
	return b.String()
}

// PruneSummary renders the statistics block for a standalone prune run.
func PruneSummary(s stats.Snapshot) string {
	var b strings.Builder
	b.WriteString("statistics:\n")
	fmt.Fprintf(&b, "  dirs pruned:  %s\n", FormatCount(s.DirsPruned))
	fmt.Fprintf(&b, "  errors:       %s\n", FormatCount(s.Errors))
	fmt.Fprintf(&b, "  elapsed:      %s", FormatElapsed(s.Elapsed))
	return b.String()
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		b.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatElapsed formats a duration with sensible precision for a summary line.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
