// Package collector pulls diagnostic artifacts off the guest after a run.
// Collection is best-effort: a pattern that matches nothing, or a guest
// that went away, must never turn a test outcome into an error. The driver
// invokes it on every exit path, whichever way the run ended.
package collector

import (
	"os"

	"go.uber.org/zap"
)

// Transfer is the slice of the remote client the collector needs.
type Transfer interface {
	DownloadGlob(pattern, destDir string) ([]string, error)
}

// DefaultPatterns are the guest artifacts worth grabbing after any run,
// relative to the remote working directory. The *.log glob already covers
// TestExecution.log and summary.log.
var DefaultPatterns = []string{
	"state.txt",
	"*.log",
}

// Collect downloads every file matching patterns into destDir. It returns
// the number of distinct files fetched; a file matched by more than one
// pattern counts once, and failures are logged and skipped.
func Collect(t Transfer, patterns []string, destDir string) int {
	log := zap.S().Named("collector")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		log.Warnw("cannot create log destination", "dir", destDir, "error", err)
		return 0
	}

	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := t.DownloadGlob(pattern, destDir)
		if err != nil {
			log.Warnw("log collection failed for pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	log.Infow("logs collected", "dir", destDir, "files", len(seen))
	return len(seen)
}
