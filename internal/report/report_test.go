package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/briandconnelly/seeds/internal/model"
)

func sampleRecords(runID string) []model.EpochRecord {
	records := make([]model.EpochRecord, 0, 2)
	for epoch := 1; epoch <= 2; epoch++ {
		records = append(records, model.EpochRecord{
			RunID: runID,
			Epoch: epoch,
			Censuses: []model.Census{{
				RunID:      runID,
				Population: "main",
				Epoch:      epoch,
				TypeCount:  []int{50, 30, 20},
			}},
			Transitions: []model.Transitions{{
				RunID:      runID,
				Population: "main",
				Epoch:      epoch,
				Types:      3,
				Counts:     []int{40, 6, 4, 3, 25, 2, 1, 2, 17},
			}},
			Resources: []model.ResourceStats{{
				RunID:    runID,
				Resource: "glucose",
				Epoch:    epoch,
				Mean:     0.5,
				Min:      0.1,
				Max:      0.9,
			}},
		})
	}
	return records
}

func TestWriteRunReports(t *testing.T) {
	baseDir := t.TempDir()
	run := model.Run{ID: "run-1", ConfigPath: "kerr07.yml", Seed: 42, Epochs: 2}

	runDir, err := WriteRunReports(baseDir, run, sampleRecords("run-1"))
	if err != nil {
		t.Fatalf("write reports: %v", err)
	}
	for _, file := range []string{"run.json", "census.csv", "transitions.csv", "resources.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected report file %s: %v", file, err)
		}
	}

	rows, ok, err := ReadCensusSeries(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read census series: %v", err)
	}
	if !ok {
		t.Fatal("expected census series")
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 census rows, got %d", len(rows))
	}
	if rows[0].Epoch != 1 || rows[0].Population != "main" || rows[0].Type != 0 || rows[0].Count != 50 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[5].Epoch != 2 || rows[5].Type != 2 || rows[5].Count != 20 {
		t.Fatalf("unexpected last row: %+v", rows[5])
	}
}

func TestWriteRunReportsRequiresRunID(t *testing.T) {
	if _, err := WriteRunReports(t.TempDir(), model.Run{}, nil); err == nil {
		t.Fatal("expected run id validation error")
	}
}

func TestReadCensusSeriesMissingRun(t *testing.T) {
	_, ok, err := ReadCensusSeries(t.TempDir(), "missing")
	if err != nil {
		t.Fatalf("read census series: %v", err)
	}
	if ok {
		t.Fatal("expected missing census series")
	}
}

func TestRunIndexOrderingAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	first := RunIndexEntry{RunID: "run-1", Seed: 1, Epochs: 10, CreatedAtUTC: "2026-08-25T10:00:00Z"}
	second := RunIndexEntry{RunID: "run-2", Seed: 2, Epochs: 20, CreatedAtUTC: "2026-08-25T11:00:00Z"}
	if err := AppendRunIndex(baseDir, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := AppendRunIndex(baseDir, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" {
		t.Fatalf("expected newest run first, got %s", entries[0].RunID)
	}

	first.Epochs = 15
	if err := AppendRunIndex(baseDir, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index after upsert: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected upsert not to grow index, got %d entries", len(entries))
	}
	for _, entry := range entries {
		if entry.RunID == "run-1" && entry.Epochs != 15 {
			t.Fatalf("expected upserted epochs 15, got %+v", entry)
		}
	}
}

func TestListRunIndexMissingIsEmpty(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(entries))
	}
}
