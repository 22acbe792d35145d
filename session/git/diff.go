package git

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StatusClean       = "clean"
	StatusUnavailable = "N/A"
)

// DiffStats holds the line counts of a worktree's unstaged changes.
type DiffStats struct {
	Added   int
	Removed int
}

func (d DiffStats) IsEmpty() bool {
	return d.Added == 0 && d.Removed == 0
}

// parseNumstat sums git diff --numstat output. Binary files ("-") count as zero.
func parseNumstat(out string) DiffStats {
	var stats DiffStats
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			continue
		}
		if n, err := strconv.Atoi(parts[0]); err == nil {
			stats.Added += n
		}
		if n, err := strconv.Atoi(parts[1]); err == nil {
			stats.Removed += n
		}
	}
	return stats
}

func countUntracked(porcelain string) int {
	n := 0
	for _, line := range strings.Split(porcelain, "\n") {
		if strings.HasPrefix(line, "??") {
			n++
		}
	}
	return n
}

func countLines(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// Status returns the one-line summary shown next to a worktree: "clean", "N/A"
// when the worktree is missing, or "added/-removed" followed by "U:n" for untracked
// files and "↑n" for commits not yet upstream.
func (r *Runner) Status(worktreePath string) string {
	if _, err := os.Stat(worktreePath); err != nil {
		return StatusUnavailable
	}

	stats := parseNumstat(r.outputOf(worktreePath, "diff", "--numstat"))
	indicators := []string{fmt.Sprintf("%d/-%d", stats.Added, stats.Removed)}

	if n := countUntracked(r.outputOf(worktreePath, "status", "--porcelain=v1")); n > 0 {
		indicators = append(indicators, fmt.Sprintf("U:%d", n))
	}
	if n := countLines(r.outputOf(worktreePath, "cherry", "-v")); n > 0 {
		indicators = append(indicators, fmt.Sprintf("↑%d", n))
	}

	if len(indicators) == 1 && stats.IsEmpty() {
		return StatusClean
	}
	return strings.Join(indicators, " ")
}
