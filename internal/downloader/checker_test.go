package downloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/helm-tools/helmdd/internal/models"
)

func writeRunFiles(t *testing.T, outputDir string, run models.RunInfo, files ...string) {
	t.Helper()
	runDir := filepath.Join(outputDir, run.PathSafeID())
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(runDir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPartition(t *testing.T) {
	outputDir := t.TempDir()
	required := []string{"a.json", "b.json"}

	complete := models.RunInfo{ID: "done:x=1,model=m", Suite: "v1"}
	partial := models.RunInfo{ID: "partial:x=2,model=m", Suite: "v1"}
	missing := models.RunInfo{ID: "missing:x=3,model=m", Suite: "v1"}
	emptyDir := models.RunInfo{ID: "emptydir:x=4,model=m", Suite: "v1"}

	writeRunFiles(t, outputDir, complete, "a.json", "b.json")
	writeRunFiles(t, outputDir, partial, "a.json")
	writeRunFiles(t, outputDir, emptyDir)

	manifest := []models.RunInfo{complete, partial, missing, emptyDir}
	completeSet, pending := Partition(manifest, outputDir, required)

	if _, ok := completeSet[complete.ID]; !ok {
		t.Errorf("run with all required files not classified complete")
	}
	if len(completeSet) != 1 {
		t.Errorf("complete set = %v, want exactly one entry", completeSet)
	}

	wantPending := []string{partial.ID, missing.ID, emptyDir.ID}
	if len(pending) != len(wantPending) {
		t.Fatalf("pending = %d runs, want %d", len(pending), len(wantPending))
	}
	for i, id := range wantPending {
		if pending[i].ID != id {
			t.Errorf("pending[%d] = %q, want %q", i, pending[i].ID, id)
		}
	}
}

func TestPartitionExtraFilesDoNotCount(t *testing.T) {
	outputDir := t.TempDir()
	run := models.RunInfo{ID: "r:x=1", Suite: "v1"}

	// An error file from a previous failed attempt must not mark the run complete.
	writeRunFiles(t, outputDir, run, "a.json", "b.json.error")

	completeSet, pending := Partition([]models.RunInfo{run}, outputDir, []string{"a.json", "b.json"})
	if len(completeSet) != 0 {
		t.Errorf("run with only an error file for b.json classified complete")
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d runs, want 1", len(pending))
	}
}

func TestPartitionRequiredFileIsDirectory(t *testing.T) {
	outputDir := t.TempDir()
	run := models.RunInfo{ID: "r:x=1", Suite: "v1"}
	runDir := filepath.Join(outputDir, run.PathSafeID())
	if err := os.MkdirAll(filepath.Join(runDir, "a.json"), 0755); err != nil {
		t.Fatal(err)
	}

	completeSet, _ := Partition([]models.RunInfo{run}, outputDir, []string{"a.json"})
	if len(completeSet) != 0 {
		t.Errorf("directory named like a required file classified complete")
	}
}

func TestPartitionUsesPathSafeDirectories(t *testing.T) {
	outputDir := t.TempDir()
	run := models.RunInfo{ID: "scenario:k=v,model=m", Suite: "v1"}

	// A directory under the raw id must not satisfy the check (and could not
	// even exist on some filesystems).
	writeRunFiles(t, outputDir, run, "a.json")

	completeSet, _ := Partition([]models.RunInfo{run}, outputDir, []string{"a.json"})
	if _, ok := completeSet[run.ID]; !ok {
		t.Errorf("run stored under its path-safe id not classified complete")
	}
}
