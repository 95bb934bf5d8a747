package downloader

import (
	"os"
	"path/filepath"

	"github.com/helm-tools/helmdd/internal/models"
)

// Partition splits the manifest into runs already complete on disk and runs
// still pending.
//
// A run is complete iff its directory outputDir/PathSafeID exists and every
// required file exists as a regular file directly inside it. Presence is the
// sole completeness signal; contents are never inspected. The filesystem is
// the durable completion record, so this is recomputed on every invocation.
func Partition(manifest []models.RunInfo, outputDir string, requiredFiles []string) (map[string]struct{}, []models.RunInfo) {
	complete := make(map[string]struct{})
	var pending []models.RunInfo

	for _, run := range manifest {
		if isComplete(filepath.Join(outputDir, run.PathSafeID()), requiredFiles) {
			complete[run.ID] = struct{}{}
		} else {
			pending = append(pending, run)
		}
	}
	return complete, pending
}

func isComplete(runDir string, requiredFiles []string) bool {
	if info, err := os.Stat(runDir); err != nil || !info.IsDir() {
		return false
	}
	for _, name := range requiredFiles {
		info, err := os.Stat(filepath.Join(runDir, name))
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}
