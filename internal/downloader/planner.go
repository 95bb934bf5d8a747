package downloader

import (
	"sort"

	"github.com/helm-tools/helmdd/internal/models"
)

// Plan produces the final download queue.
//
// With redownload set the queue is the full manifest regardless of on-disk
// state; otherwise it is the manifest minus the complete set. The queue is
// sorted by raw run id ascending before any maxRuns truncation, so a capped
// invocation always picks the same k lexicographically-smallest runs and
// repeated capped invocations make forward progress through the release.
func Plan(manifest []models.RunInfo, complete map[string]struct{}, redownload bool, maxRuns int) []models.RunInfo {
	plan := make([]models.RunInfo, 0, len(manifest))
	for _, run := range manifest {
		if !redownload {
			if _, done := complete[run.ID]; done {
				continue
			}
		}
		plan = append(plan, run)
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].ID < plan[j].ID })

	if maxRuns > 0 && len(plan) > maxRuns {
		plan = plan[:maxRuns]
	}
	return plan
}
